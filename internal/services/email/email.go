// Package email ставит исходящие письма в очередь RabbitMQ.
// Само письмо собирает и отправляет воркер email-sender; здесь только
// формирование ссылок и публикация сообщения.
package email

import (
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/metrics"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/rabbitmq"
)

// Publisher описывает контракт публикации сообщения в очередь.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Service публикует письма в очередь исходящих.
type Service struct {
	publisher Publisher
	baseURL   string
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(publisher Publisher, baseURL string, log *slog.Logger) *Service {
	return &Service{
		publisher: publisher,
		baseURL:   baseURL,
		log:       log,
	}
}

// SendWelcome ставит в очередь приветственное письмо.
func (s *Service) SendWelcome(name, to string) error {
	return s.publish(models.EmailMessage{
		Template: models.EmailTemplateWelcome,
		To:       to,
		Name:     name,
		URL:      s.baseURL + "/me",
	})
}

// SendEmailConfirm ставит в очередь письмо со ссылкой подтверждения почты.
// В ссылку уходит сам токен, не его дайджест.
func (s *Service) SendEmailConfirm(name, to, plainToken string) error {
	return s.publish(models.EmailMessage{
		Template: models.EmailTemplateEmailConfirm,
		To:       to,
		Name:     name,
		URL:      fmt.Sprintf("%s/api/v1/users/confirm-email/%s", s.baseURL, plainToken),
	})
}

// SendPasswordReset ставит в очередь письмо со ссылкой сброса пароля.
func (s *Service) SendPasswordReset(name, to, plainToken string) error {
	return s.publish(models.EmailMessage{
		Template: models.EmailTemplatePasswordReset,
		To:       to,
		Name:     name,
		URL:      fmt.Sprintf("%s/api/v1/users/reset-password/%s", s.baseURL, plainToken),
	})
}

func (s *Service) publish(msg models.EmailMessage) error {
	if err := s.publisher.Publish(rabbitmq.EmailExchange, rabbitmq.EmailRoutingKey, msg); err != nil {
		s.log.Error("failed to publish email message",
			slog.String("template", msg.Template), sl.Err(err))
		return errs.Wrap(errs.KindRetryable, "there was an error sending the email, try again later", err)
	}
	metrics.EmailsPublished.WithLabelValues(msg.Template).Inc()
	s.log.Info("email message published", slog.String("template", msg.Template))
	return nil
}
