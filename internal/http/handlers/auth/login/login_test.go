package login

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/models"
	"github.com/magabrotheeeer/tour-booking/internal/services/session"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*session.Result, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(*session.Result)
	return res, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock, 15*time.Minute, 24*time.Hour)

	user := &models.User{UID: "uid-1", Name: "Lena", Email: "lena@example.com", Role: "user"}

	tests := []struct {
		name           string
		requestBody    interface{}
		mockResult     *session.Result
		mockErr        error
		wantStatusCode int
		wantToken      string
		wantError      string
		wantStatus     string
	}{
		{
			name:        "valid login",
			requestBody: Request{Email: "lena@example.com", Password: "password123"},
			mockResult: &session.Result{
				Token:        "tok",
				RefreshToken: "ref",
				User:         user,
			},
			wantStatusCode: http.StatusOK,
			wantToken:      "tok",
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "lena@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "wrong credentials",
			requestBody:    Request{Email: "lena@example.com", Password: "wrongpass"},
			mockErr:        errs.New(errs.KindUnauthorized, "incorrect email or password"),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "incorrect email or password",
			wantStatus:     "Error",
		},
		{
			name:           "account locked",
			requestBody:    Request{Email: "lena@example.com", Password: "password123"},
			mockErr:        errs.New(errs.KindTooManyAttempts, "too many failed login attempts, please try again later"),
			wantStatusCode: http.StatusTooManyRequests,
			wantError:      "too many failed login attempts, please try again later",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockResult != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Login", mock.Anything, req.Email, req.Password).
					Return(tt.mockResult, tt.mockErr).Once()
			}

			var bodyBytes []byte
			var err error
			switch v := tt.requestBody.(type) {
			case string:
				bodyBytes = []byte(v)
			default:
				bodyBytes, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatal(err)
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/users/login", bytes.NewReader(bodyBytes))
			req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))

			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err = json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			} else {
				assert.Nil(t, got["error"])
			}

			if tt.wantToken != "" {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, tt.wantToken, data["token"])

				cookiesByName := map[string]*http.Cookie{}
				for _, c := range rec.Result().Cookies() {
					cookiesByName[c.Name] = c
				}
				assert.Equal(t, "tok", cookiesByName["jwt"].Value)
				assert.Equal(t, "ref", cookiesByName["refresh"].Value)
				assert.True(t, cookiesByName["jwt"].HttpOnly)
			} else {
				assert.Nil(t, got["data"])
			}

			if tt.mockResult != nil || tt.mockErr != nil {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
