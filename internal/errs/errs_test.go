package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"bad request", New(KindBadRequest, "please provide email and password"), http.StatusBadRequest},
		{"unauthorized", New(KindUnauthorized, "email or password not correct"), http.StatusUnauthorized},
		{"forbidden", New(KindForbidden, "no permission"), http.StatusForbidden},
		{"not found", New(KindNotFound, "user not found"), http.StatusNotFound},
		{"conflict", New(KindConflict, "duplicate review"), http.StatusConflict},
		{"too many attempts", New(KindTooManyAttempts, "locked"), http.StatusTooManyRequests},
		{"retryable", New(KindRetryable, "email dispatch failed"), http.StatusServiceUnavailable},
		{"internal", Internal("query failed", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestMessage(t *testing.T) {
	opErr := New(KindConflict, "you have already reviewed this tour")
	assert.Equal(t, "you have already reviewed this tour", Message(opErr))

	internal := Internal("query failed", errors.New("connection reset"))
	assert.Equal(t, "internal server error", Message(internal))

	assert.Equal(t, "internal server error", Message(errors.New("boom")))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("services.session.Login: %w", New(KindTooManyAttempts, "locked"))
	assert.Equal(t, KindTooManyAttempts, KindOf(err))
	assert.True(t, IsOperational(err))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("smtp: connection refused")
	err := Wrap(KindRetryable, "failed to dispatch email", cause)
	assert.ErrorIs(t, err, cause)
}
