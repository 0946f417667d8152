// Package session реализует жизненный цикл сессии пользователя:
// регистрацию с подтверждением почты, вход с блокировкой после серии
// неудачных попыток, обновление access-токена по refresh-токену,
// сброс и смену пароля.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/lib/jwt"
	"github.com/magabrotheeeer/tour-booking/internal/lib/lockout"
	"github.com/magabrotheeeer/tour-booking/internal/lib/password"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/lib/token"
	"github.com/magabrotheeeer/tour-booking/internal/metrics"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	FindActiveUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindAnyUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindActiveUserByUID(ctx context.Context, uid string) (*models.User, error)
	FindUserByEmailConfirmToken(ctx context.Context, digest string, now time.Time) (*models.User, error)
	FindUserByPasswordResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error)
	UpdateEmailConfirmToken(ctx context.Context, uid string, digest *string, expires *time.Time) error
	ActivateUser(ctx context.Context, uid string) error
	UpdatePasswordResetToken(ctx context.Context, uid string, digest *string, expires *time.Time) error
	UpdateUserPassword(ctx context.Context, uid, passwordHash string, changedAt time.Time) error
	UpdateLockState(ctx context.Context, uid string, attempts int, lockExpires *time.Time) error
}

// Mailer описывает контракт отправки писем жизненного цикла сессии.
type Mailer interface {
	SendWelcome(name, to string) error
	SendEmailConfirm(name, to, plainToken string) error
	SendPasswordReset(name, to, plainToken string) error
}

// Result — результат операции, выдающей новую пару токенов.
type Result struct {
	Token        string
	RefreshToken string
	User         *models.User
}

// Service отвечает за жизненный цикл сессии пользователя.
type Service struct {
	users  UserRepository
	mailer Mailer
	log    *slog.Logger

	accessMaker  jwt.Maker
	refreshMaker jwt.Maker

	maxLoginAttempts int
	confirmTokenTTL  time.Duration
	resetTokenTTL    time.Duration

	// now подменяется в тестах для управления часами.
	now func() time.Time
}

// New создает новый экземпляр Service.
func New(users UserRepository, mailer Mailer, accessMaker, refreshMaker jwt.Maker,
	maxLoginAttempts int, confirmTokenTTL, resetTokenTTL time.Duration, log *slog.Logger) *Service {
	return &Service{
		users:            users,
		mailer:           mailer,
		log:              log,
		accessMaker:      accessMaker,
		refreshMaker:     refreshMaker,
		maxLoginAttempts: maxLoginAttempts,
		confirmTokenTTL:  confirmTokenTTL,
		resetTokenTTL:    resetTokenTTL,
		now:              time.Now,
	}
}

// Signup создает неактивного пользователя с токеном подтверждения почты
// и ставит в очередь письмо со ссылкой подтверждения. Роль при регистрации
// всегда "user": повышение роли выполняет администратор напрямую.
func (s *Service) Signup(ctx context.Context, name, email, rawPassword string) (*models.User, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}

	plain, digest, err := token.New()
	if err != nil {
		return nil, errs.Internal("failed to generate confirm token", err)
	}
	expires := s.now().UTC().Add(s.confirmTokenTTL)

	user := models.User{
		Name:               name,
		Email:              email,
		Photo:              "default.jpg",
		Role:               models.RoleUser,
		PasswordHash:       hashed,
		EmailConfirmToken:  &digest,
		EmailConfirmExpire: &expires,
		Active:             false,
	}
	uid, err := s.users.CreateUser(ctx, user)
	if err != nil {
		return nil, err
	}
	user.UID = uid

	if err := s.mailer.SendEmailConfirm(name, email, plain); err != nil {
		// В базе не должно оставаться токена, которого нет ни в одном письме.
		// Пользователь уже создан: при следующем входе ему выдадут новую ссылку.
		if clearErr := s.users.UpdateEmailConfirmToken(ctx, uid, nil, nil); clearErr != nil {
			s.log.Error("failed to clear confirm token", sl.Err(clearErr))
		}
		return nil, err
	}

	s.log.Info("user signed up", slog.String("uid", uid))
	return &user, nil
}

// ConfirmEmail активирует пользователя по токену из письма и выдает
// пару токенов: подтвердивший почту сразу входит в систему.
func (s *Service) ConfirmEmail(ctx context.Context, plainToken string) (*Result, error) {
	user, err := s.users.FindUserByEmailConfirmToken(ctx, token.Digest(plainToken), s.now().UTC())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.New(errs.KindBadRequest, "token is invalid or has expired")
	}

	if err := s.users.ActivateUser(ctx, user.UID); err != nil {
		return nil, err
	}
	user.Active = true
	user.EmailConfirmToken = nil
	user.EmailConfirmExpire = nil

	if err := s.mailer.SendWelcome(user.Name, user.Email); err != nil {
		// Вход не должен срываться из-за приветственного письма.
		s.log.Error("failed to send welcome email", sl.Err(err))
	}

	s.log.Info("email confirmed", slog.String("uid", user.UID))
	return s.issueTokens(user)
}

// Login проверяет учетные данные и выдает пару токенов.
//
// Неактивному пользователю выдается новая ссылка подтверждения почты.
// После серии неудачных попыток вход блокируется: даже правильный пароль
// отклоняется, пока блокировка не истечет.
func (s *Service) Login(ctx context.Context, email, rawPassword string) (*Result, error) {
	now := s.now().UTC()

	user, err := s.users.FindAnyUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		metrics.LoginFailures.Inc()
		return nil, errs.New(errs.KindUnauthorized, "incorrect email or password")
	}

	if !user.Active {
		if err := s.resendEmailConfirm(ctx, user, now); err != nil {
			return nil, err
		}
		return nil, errs.New(errs.KindUnauthorized,
			"please confirm your email first, a new confirmation link has been sent")
	}

	state := lockout.State{Attempts: user.LoginAttempts, LockExpires: user.LockExpires}
	if state.IsLocked(now) {
		return nil, errs.New(errs.KindTooManyAttempts,
			"too many failed login attempts, please try again later")
	}

	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		next := state.OnFailure(now, s.maxLoginAttempts)
		if err := s.users.UpdateLockState(ctx, user.UID, next.Attempts, next.LockExpires); err != nil {
			return nil, err
		}
		metrics.LoginFailures.Inc()
		if next.IsLocked(now) {
			metrics.LoginLockouts.Inc()
			s.log.Warn("account locked after failed login attempts", slog.String("uid", user.UID))
			return nil, errs.New(errs.KindTooManyAttempts,
				"too many failed login attempts, please try again later")
		}
		return nil, errs.New(errs.KindUnauthorized, "incorrect email or password")
	}

	if user.LoginAttempts > 0 || user.LockExpires != nil {
		next := state.OnSuccess()
		if err := s.users.UpdateLockState(ctx, user.UID, next.Attempts, next.LockExpires); err != nil {
			return nil, err
		}
	}

	s.log.Info("user logged in", slog.String("uid", user.UID))
	return s.issueTokens(user)
}

// RefreshAccessToken выпускает новый access-токен по действующему
// refresh-токену. Пользователь в базе не проверяется: refresh-токен
// короткоживущий, а смена пароля отсекается проверкой iat в Access Guard.
func (s *Service) RefreshAccessToken(_ context.Context, refreshToken string) (string, error) {
	claims, err := s.refreshMaker.Parse(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", errs.Wrap(errs.KindUnauthorized, "refresh token has expired, please log in again", err)
		}
		return "", errs.Wrap(errs.KindUnauthorized, "invalid refresh token", err)
	}
	accessToken, err := s.accessMaker.Issue(claims.UserUID)
	if err != nil {
		return "", errs.Internal("failed to issue access token", err)
	}
	return accessToken, nil
}

// ForgotPassword выдает активному пользователю токен сброса пароля и ставит
// в очередь письмо со ссылкой. Если письмо не удалось поставить в очередь,
// токен очищается: в базе не должно оставаться токена, которого нет ни в одном письме.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return errs.New(errs.KindNotFound, "there is no user with this email address")
	}

	plain, digest, err := token.New()
	if err != nil {
		return errs.Internal("failed to generate reset token", err)
	}
	expires := s.now().UTC().Add(s.resetTokenTTL)
	if err := s.users.UpdatePasswordResetToken(ctx, user.UID, &digest, &expires); err != nil {
		return err
	}

	if err := s.mailer.SendPasswordReset(user.Name, user.Email, plain); err != nil {
		if clearErr := s.users.UpdatePasswordResetToken(ctx, user.UID, nil, nil); clearErr != nil {
			s.log.Error("failed to clear reset token", sl.Err(clearErr))
		}
		return err
	}

	s.log.Info("password reset token issued", slog.String("uid", user.UID))
	return nil
}

// ResetPassword устанавливает новый пароль по токену из письма и выдает
// пару токенов. PasswordChangedAt выставляется на секунду назад, чтобы
// токены, выпущенные в ту же секунду, не считались выданными до смены пароля.
func (s *Service) ResetPassword(ctx context.Context, plainToken, newPassword string) (*Result, error) {
	user, err := s.users.FindUserByPasswordResetToken(ctx, token.Digest(plainToken), s.now().UTC())
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.New(errs.KindBadRequest, "token is invalid or has expired")
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}

	changedAt := s.now().UTC().Add(-time.Second)
	if err := s.users.UpdateUserPassword(ctx, user.UID, hashed, changedAt); err != nil {
		return nil, err
	}
	user.PasswordHash = hashed
	user.PasswordChangedAt = &changedAt

	s.log.Info("password reset", slog.String("uid", user.UID))
	return s.issueTokens(user)
}

// UpdatePassword меняет пароль аутентифицированного пользователя после
// проверки текущего и выдает пару токенов.
func (s *Service) UpdatePassword(ctx context.Context, userUID, currentPassword, newPassword string) (*Result, error) {
	user, err := s.users.FindActiveUserByUID(ctx, userUID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.New(errs.KindNotFound, "user not found")
	}

	if err := password.CompareHash(user.PasswordHash, currentPassword); err != nil {
		return nil, errs.New(errs.KindBadRequest, "your current password is wrong")
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return nil, errs.Internal("failed to hash password", err)
	}

	changedAt := s.now().UTC().Add(-time.Second)
	if err := s.users.UpdateUserPassword(ctx, user.UID, hashed, changedAt); err != nil {
		return nil, err
	}
	user.PasswordHash = hashed
	user.PasswordChangedAt = &changedAt

	s.log.Info("password updated", slog.String("uid", user.UID))
	return s.issueTokens(user)
}

// resendEmailConfirm выдает неактивному пользователю новую ссылку
// подтверждения почты взамен прежней.
func (s *Service) resendEmailConfirm(ctx context.Context, user *models.User, now time.Time) error {
	plain, digest, err := token.New()
	if err != nil {
		return errs.Internal("failed to generate confirm token", err)
	}
	expires := now.Add(s.confirmTokenTTL)
	if err := s.users.UpdateEmailConfirmToken(ctx, user.UID, &digest, &expires); err != nil {
		return err
	}
	return s.mailer.SendEmailConfirm(user.Name, user.Email, plain)
}

func (s *Service) issueTokens(user *models.User) (*Result, error) {
	accessToken, err := s.accessMaker.Issue(user.UID)
	if err != nil {
		return nil, errs.Internal("failed to issue access token", err)
	}
	refreshToken, err := s.refreshMaker.Issue(user.UID)
	if err != nil {
		return nil, errs.Internal("failed to issue refresh token", err)
	}
	return &Result{Token: accessToken, RefreshToken: refreshToken, User: user}, nil
}
