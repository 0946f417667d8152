package create

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/tour-booking/internal/errs"
	"github.com/magabrotheeeer/tour-booking/internal/http/middlewarectx"
	"github.com/magabrotheeeer/tour-booking/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Create(ctx context.Context, actor *models.User, tourUID, text string, rating float64) (*models.Review, error) {
	args := m.Called(ctx, actor, tourUID, text, rating)
	review, _ := args.Get(0).(*models.Review)
	return review, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func newRequest(t *testing.T, body interface{}, user *models.User, tourUID string) *http.Request {
	t.Helper()

	var bodyBytes []byte
	var err error
	switch v := body.(type) {
	case string:
		bodyBytes = []byte(v)
	default:
		bodyBytes, err = json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/tours/"+tourUID+"/reviews", bytes.NewReader(bodyBytes))

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("tourUID", tourUID)

	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	ctx = context.WithValue(ctx, middleware.RequestIDKey, "reqid123")
	if user != nil {
		ctx = context.WithValue(ctx, middlewarectx.UserKey, user)
	}
	return req.WithContext(ctx)
}

func TestCreateHandler_ServeHTTP(t *testing.T) {
	serviceMock := new(ServiceMock)
	logger := newNoopLogger()

	handler := New(logger, serviceMock)

	user := &models.User{UID: "user-1", Role: "user"}

	tests := []struct {
		name           string
		requestBody    interface{}
		user           *models.User
		mockReview     *models.Review
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid review",
			requestBody:    Request{Text: "great tour", Rating: 5},
			user:           user,
			mockReview:     &models.Review{UID: "review-1", TourUID: "tour-1", UserUID: "user-1", Rating: 5},
			wantStatusCode: http.StatusCreated,
			wantStatus:     "OK",
		},
		{
			name:           "no user in context",
			requestBody:    Request{Text: "great tour", Rating: 5},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "you are not logged in",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - rating above maximum",
			requestBody:    Request{Text: "great tour", Rating: 6},
			user:           user,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Rating is above the allowed maximum",
			wantStatus:     "Error",
		},
		{
			name:           "tour not booked",
			requestBody:    Request{Text: "great tour", Rating: 5},
			user:           user,
			mockErr:        errs.New(errs.KindUnauthorized, "you can only review tours you have booked"),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "you can only review tours you have booked",
			wantStatus:     "Error",
		},
		{
			name:           "duplicate review",
			requestBody:    Request{Text: "great tour", Rating: 5},
			user:           user,
			mockErr:        errs.New(errs.KindConflict, "you have already reviewed this tour"),
			wantStatusCode: http.StatusConflict,
			wantError:      "you have already reviewed this tour",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock.ExpectedCalls = nil
			serviceMock.Calls = nil

			if tt.mockReview != nil || tt.mockErr != nil {
				req := tt.requestBody.(Request)
				serviceMock.On("Create", mock.Anything, tt.user, "tour-1", req.Text, req.Rating).
					Return(tt.mockReview, tt.mockErr).Once()
			}

			req := newRequest(t, tt.requestBody, tt.user, "tour-1")
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			err := json.NewDecoder(rec.Body).Decode(&got)
			assert.NoError(t, err)

			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				errStr, ok := got["error"].(string)
				assert.True(t, ok)
				assert.Equal(t, tt.wantError, errStr)
			}

			if tt.mockReview != nil {
				data, ok := got["data"].(map[string]any)
				assert.True(t, ok)
				assert.Equal(t, "review-1", data["id"])
			}

			if tt.mockReview != nil || tt.mockErr != nil {
				serviceMock.AssertExpectations(t)
			}
		})
	}
}
