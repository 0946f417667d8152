package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUser_ChangedPasswordAfter(t *testing.T) {
	changedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		changedAt *time.Time
		issuedAt  time.Time
		want      bool
	}{
		{
			name:      "password never changed",
			changedAt: nil,
			issuedAt:  changedAt.Add(-time.Hour),
			want:      false,
		},
		{
			name:      "token issued before change",
			changedAt: &changedAt,
			issuedAt:  changedAt.Add(-time.Second),
			want:      true,
		},
		{
			name:      "token issued after change",
			changedAt: &changedAt,
			issuedAt:  changedAt.Add(time.Second),
			want:      false,
		},
		{
			name:      "equal timestamps",
			changedAt: &changedAt,
			issuedAt:  changedAt,
			want:      false,
		},
		{
			name:      "sub-second difference collapses to equal",
			changedAt: &changedAt,
			issuedAt:  changedAt.Add(500 * time.Millisecond),
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{PasswordChangedAt: tt.changedAt}
			assert.Equal(t, tt.want, u.ChangedPasswordAfter(tt.issuedAt))
		})
	}
}
