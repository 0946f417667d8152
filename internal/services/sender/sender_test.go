package sender

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tour-booking/internal/lib/smtp"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

type fakeClient struct {
	from     string
	rcpts    []string
	body     bytes.Buffer
	quitDone bool
}

func (c *fakeClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeClient) Rcpt(to string) error   { c.rcpts = append(c.rcpts, to); return nil }
func (c *fakeClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&c.body}, nil
}
func (c *fakeClient) Quit() error  { c.quitDone = true; return nil }
func (c *fakeClient) Close() error { return nil }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type fakeTransport struct {
	client *fakeClient
}

func (t *fakeTransport) Connect() (smtp.Client, error) { return t.client, nil }
func (t *fakeTransport) GetFrom() string               { return "noreply@tourbooking.example.com" }

func NewNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestCompose(t *testing.T) {
	tests := []struct {
		name        string
		message     models.EmailMessage
		wantSubject string
		wantInBody  string
		wantErr     bool
	}{
		{
			name: "welcome template",
			message: models.EmailMessage{
				Template: models.EmailTemplateWelcome,
				Name:     "Alice",
				URL:      "http://localhost:8080/me",
			},
			wantSubject: "Welcome to the Tour Booking family!",
			wantInBody:  "Hi Alice",
		},
		{
			name: "confirm template carries link",
			message: models.EmailMessage{
				Template: models.EmailTemplateEmailConfirm,
				Name:     "Bob",
				URL:      "http://localhost:8080/api/v1/users/confirm-email/abc123",
			},
			wantSubject: "Confirm your email address (valid for 10 days)",
			wantInBody:  "confirm-email/abc123",
		},
		{
			name: "reset template carries link",
			message: models.EmailMessage{
				Template: models.EmailTemplatePasswordReset,
				Name:     "Carol",
				URL:      "http://localhost:8080/api/v1/users/reset-password/def456",
			},
			wantSubject: "Your password reset token (valid for 10 minutes)",
			wantInBody:  "reset-password/def456",
		},
		{
			name:    "unknown template",
			message: models.EmailMessage{Template: "bogus"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, body, err := Compose(tt.message)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSubject, subject)
			assert.Contains(t, body, tt.wantInBody)
		})
	}
}

func TestService_HandleMessage(t *testing.T) {
	client := &fakeClient{}
	svc := New(&fakeTransport{client: client}, NewNoopLogger())

	body, err := json.Marshal(models.EmailMessage{
		Template: models.EmailTemplateEmailConfirm,
		To:       "user@example.com",
		Name:     "User",
		URL:      "http://localhost:8080/api/v1/users/confirm-email/token",
	})
	require.NoError(t, err)

	require.NoError(t, svc.HandleMessage(body))

	assert.Equal(t, "noreply@tourbooking.example.com", client.from)
	assert.Equal(t, []string{"user@example.com"}, client.rcpts)
	assert.Contains(t, client.body.String(), "Subject: Confirm your email address")
	assert.Contains(t, client.body.String(), "confirm-email/token")
	assert.True(t, client.quitDone)
}

func TestService_HandleMessage_BadPayload(t *testing.T) {
	svc := New(&fakeTransport{client: &fakeClient{}}, NewNoopLogger())
	require.Error(t, svc.HandleMessage([]byte("{not json")))
}
