package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

const userColumns = `uid, name, email, photo, role, password_hash, password_changed_at,
	password_reset_token, password_reset_expires, email_confirm_token, email_confirm_expires,
	login_attempts, lock_expires, active`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	u := &models.User{}
	var (
		passwordChangedAt  sql.NullTime
		resetToken         sql.NullString
		resetExpires       sql.NullTime
		confirmToken       sql.NullString
		confirmExpires     sql.NullTime
		lockExpires        sql.NullTime
	)
	if err := row.Scan(&u.UID, &u.Name, &u.Email, &u.Photo, &u.Role, &u.PasswordHash,
		&passwordChangedAt, &resetToken, &resetExpires, &confirmToken, &confirmExpires,
		&u.LoginAttempts, &lockExpires, &u.Active); err != nil {
		return nil, err
	}
	if passwordChangedAt.Valid {
		u.PasswordChangedAt = &passwordChangedAt.Time
	}
	if resetToken.Valid {
		u.PasswordResetToken = &resetToken.String
	}
	if resetExpires.Valid {
		u.PasswordResetExpire = &resetExpires.Time
	}
	if confirmToken.Valid {
		u.EmailConfirmToken = &confirmToken.String
	}
	if confirmExpires.Valid {
		u.EmailConfirmExpire = &confirmExpires.Time
	}
	if lockExpires.Valid {
		u.LockExpires = &lockExpires.Time
	}
	return u, nil
}

// CreateUser сохраняет нового пользователя и возвращает его UID.
// Email приводится к нижнему регистру; нарушение уникальности email
// возвращается как доменный Conflict.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var newUID string
	query := `INSERT INTO users (name, email, photo, role, password_hash,
			      email_confirm_token, email_confirm_expires, active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			  RETURNING uid;`
	if err := s.DB.QueryRowContext(ctx, query,
		user.Name, strings.ToLower(user.Email), user.Photo, user.Role, user.PasswordHash,
		user.EmailConfirmToken, user.EmailConfirmExpire, user.Active).Scan(&newUID); err != nil {
		if isUniqueViolation(err) {
			return "", errs.Wrap(errs.KindConflict, "user with this email already exists", err)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newUID, nil
}

func (s *Storage) findUser(ctx context.Context, op, where string, includeInactive bool, args ...any) (*models.User, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	if !includeInactive {
		query += ` AND active = TRUE`
	}
	u, err := scanUser(s.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// FindActiveUserByEmail возвращает активного пользователя по email
// или nil, если такого нет.
func (s *Storage) FindActiveUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "storage.FindActiveUserByEmail", "email = $1", false, strings.ToLower(email))
}

// FindAnyUserByEmail возвращает пользователя по email независимо от
// признака active. Нужен входу и подтверждению почты: они должны видеть
// неактивные учётные записи.
func (s *Storage) FindAnyUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, "storage.FindAnyUserByEmail", "email = $1", true, strings.ToLower(email))
}

// FindActiveUserByUID возвращает активного пользователя по UID или nil.
func (s *Storage) FindActiveUserByUID(ctx context.Context, uid string) (*models.User, error) {
	return s.findUser(ctx, "storage.FindActiveUserByUID", "uid = $1", false, uid)
}

// FindAnyUserByUID возвращает пользователя по UID независимо от признака active.
func (s *Storage) FindAnyUserByUID(ctx context.Context, uid string) (*models.User, error) {
	return s.findUser(ctx, "storage.FindAnyUserByUID", "uid = $1", true, uid)
}

// FindUserByEmailConfirmToken ищет пользователя по дайджесту токена
// подтверждения почты с неистёкшим сроком. Неактивные включаются:
// подтверждение и существует для того, чтобы активировать учётную запись.
func (s *Storage) FindUserByEmailConfirmToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	return s.findUser(ctx, "storage.FindUserByEmailConfirmToken",
		"email_confirm_token = $1 AND email_confirm_expires > $2", true, digest, now)
}

// FindUserByPasswordResetToken ищет активного пользователя по дайджесту
// токена сброса пароля с неистёкшим сроком.
func (s *Storage) FindUserByPasswordResetToken(ctx context.Context, digest string, now time.Time) (*models.User, error) {
	return s.findUser(ctx, "storage.FindUserByPasswordResetToken",
		"password_reset_token = $1 AND password_reset_expires > $2", false, digest, now)
}

// UpdateEmailConfirmToken записывает (или очищает, при nil) токен
// подтверждения почты и его срок.
func (s *Storage) UpdateEmailConfirmToken(ctx context.Context, uid string, digest *string, expires *time.Time) error {
	const op = "storage.UpdateEmailConfirmToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET email_confirm_token = $1, email_confirm_expires = $2
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, digest, expires, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ActivateUser помечает пользователя активным и очищает токен подтверждения.
func (s *Storage) ActivateUser(ctx context.Context, uid string) error {
	const op = "storage.ActivateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET active = TRUE, email_confirm_token = NULL, email_confirm_expires = NULL
			  WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdatePasswordResetToken записывает (или очищает, при nil) токен
// сброса пароля и его срок.
func (s *Storage) UpdatePasswordResetToken(ctx context.Context, uid string, digest *string, expires *time.Time) error {
	const op = "storage.UpdatePasswordResetToken"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_reset_token = $1, password_reset_expires = $2
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, digest, expires, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserPassword сохраняет новый хэш пароля, выставляет
// password_changed_at и очищает токен сброса.
func (s *Storage) UpdateUserPassword(ctx context.Context, uid, passwordHash string, changedAt time.Time) error {
	const op = "storage.UpdateUserPassword"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET password_hash = $1, password_changed_at = $2,
			      password_reset_token = NULL, password_reset_expires = NULL
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, passwordHash, changedAt, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateLockState записывает счётчик неудачных попыток входа и срок блокировки.
//
// Запись выполняется по схеме read-modify-write: гонка конкурентных
// неудачных входов допустима, блокировка — мягкое ограничение.
func (s *Storage) UpdateLockState(ctx context.Context, uid string, attempts int, lockExpires *time.Time) error {
	const op = "storage.UpdateLockState"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users
			  SET login_attempts = $1, lock_expires = $2
			  WHERE uid = $3`
	if _, err := s.DB.ExecContext(ctx, query, attempts, lockExpires, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateUserProfile обновляет имя, email и фото пользователя.
// Поля с nil не затрагиваются.
func (s *Storage) UpdateUserProfile(ctx context.Context, uid string, name, email, photo *string) error {
	const op = "storage.UpdateUserProfile"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	var lowered *string
	if email != nil {
		v := strings.ToLower(*email)
		lowered = &v
	}
	query := `UPDATE users
			  SET name = COALESCE($1, name),
			      email = COALESCE($2, email),
			      photo = COALESCE($3, photo)
			  WHERE uid = $4`
	if _, err := s.DB.ExecContext(ctx, query, name, lowered, photo, uid); err != nil {
		if isUniqueViolation(err) {
			return errs.Wrap(errs.KindConflict, "user with this email already exists", err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeactivateUser помечает учётную запись неактивной (мягкое удаление).
func (s *Storage) DeactivateUser(ctx context.Context, uid string) error {
	const op = "storage.DeactivateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE users SET active = FALSE WHERE uid = $1`
	if _, err := s.DB.ExecContext(ctx, query, uid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
