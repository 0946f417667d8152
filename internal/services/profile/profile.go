// Package profile реализует работу с профилем текущего пользователя:
// обновление имени, email и аватара, мягкое удаление учетной записи.
// Смена пароля к профилю не относится и живет в session.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/lib/images"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// UserRepository описывает контракт для работы с профилем в базе данных.
type UserRepository interface {
	FindActiveUserByUID(ctx context.Context, uid string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, uid string, name, email, photo *string) error
	DeactivateUser(ctx context.Context, uid string) error
}

// Service отвечает за профиль пользователя.
type Service struct {
	users     UserRepository
	uploadDir string
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(users UserRepository, uploadDir string, log *slog.Logger) *Service {
	return &Service{
		users:     users,
		uploadDir: uploadDir,
		log:       log,
	}
}

// Me возвращает профиль текущего пользователя.
func (s *Service) Me(ctx context.Context, uid string) (*models.User, error) {
	user, err := s.users.FindActiveUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.New(errs.KindNotFound, "user not found")
	}
	return user, nil
}

// UpdateMe обновляет имя, email и аватар текущего пользователя.
// Аватар приводится к квадрату и сохраняется в каталог загрузок;
// в профиль записывается имя файла.
func (s *Service) UpdateMe(ctx context.Context, uid string, name, email *string, avatar []byte) (*models.User, error) {
	var photo *string
	if len(avatar) > 0 {
		resized, err := images.ResizeAvatar(avatar)
		if err != nil {
			return nil, errs.Wrap(errs.KindBadRequest, "uploaded file is not a valid image", err)
		}
		filename := fmt.Sprintf("user-%s-%d.jpeg", uid, time.Now().Unix())
		if err := os.WriteFile(filepath.Join(s.uploadDir, filename), resized, 0o644); err != nil {
			return nil, errs.Internal("failed to store avatar", err)
		}
		photo = &filename
	}

	if err := s.users.UpdateUserProfile(ctx, uid, name, email, photo); err != nil {
		return nil, err
	}

	user, err := s.users.FindActiveUserByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errs.New(errs.KindNotFound, "user not found")
	}

	s.log.Info("profile updated", slog.String("uid", uid))
	return user, nil
}

// DeleteMe помечает учетную запись неактивной. Данные не удаляются:
// пользователь исчезает из всех выборок активных.
func (s *Service) DeleteMe(ctx context.Context, uid string) error {
	if err := s.users.DeactivateUser(ctx, uid); err != nil {
		return err
	}
	s.log.Info("account deactivated", slog.String("uid", uid))
	return nil
}
