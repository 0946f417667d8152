// Package sender реализует воркер отправки писем: потребляет сообщения
// очереди исходящих, собирает письмо по шаблону и отправляет через SMTP.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/tour-booking/internal/lib/sl"
	"github.com/magabrotheeeer/tour-booking/internal/lib/smtp"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

// Service отправляет письма из очереди исходящих.
type Service struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.TransportInterface, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// HandleMessage разбирает сообщение очереди и отправляет письмо.
// Используется как обработчик потребителя RabbitMQ.
func (s *Service) HandleMessage(body []byte) error {
	var message models.EmailMessage
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal email message", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject, bodyText, err := Compose(message)
	if err != nil {
		s.log.Error("failed to compose email", sl.Err(err),
			slog.String("template", message.Template))
		return err
	}

	return s.sendEmail([]string{message.To}, subject, bodyText)
}

// Compose собирает тему и текст письма по шаблону сообщения.
func Compose(message models.EmailMessage) (subject, bodyText string, err error) {
	switch message.Template {
	case models.EmailTemplateWelcome:
		subject = "Welcome to the Tour Booking family!"
		bodyText = fmt.Sprintf("Hi %s,\n\nWelcome aboard! We are glad to have you.\n\nExplore your account here: %s",
			message.Name, message.URL)
	case models.EmailTemplateEmailConfirm:
		subject = "Confirm your email address (valid for 10 days)"
		bodyText = fmt.Sprintf("Hi %s,\n\nPlease confirm your email address by following the link:\n%s\n\nIf you didn't sign up, please ignore this email.",
			message.Name, message.URL)
	case models.EmailTemplatePasswordReset:
		subject = "Your password reset token (valid for 10 minutes)"
		bodyText = fmt.Sprintf("Hi %s,\n\nForgot your password? Follow the link to set a new one:\n%s\n\nIf you didn't request a reset, please ignore this email.",
			message.Name, message.URL)
	default:
		return "", "", fmt.Errorf("unknown email template: %s", message.Template)
	}
	return subject, bodyText, nil
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetFrom(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer client.Close()

	if err := client.Mail(s.transport.GetFrom()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent", slog.String("to", strings.Join(to, ";")))
	return nil
}
