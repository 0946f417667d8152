package models

// Шаблоны исходящих писем.
const (
	EmailTemplateWelcome       = "welcome"
	EmailTemplatePasswordReset = "password-reset"
	EmailTemplateEmailConfirm  = "email-confirm"
)

// EmailMessage — сообщение очереди исходящих писем.
// Публикуется HTTP-приложением, потребляется воркером email-sender.
type EmailMessage struct {
	Template string `json:"template"`
	To       string `json:"to"`
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
}
