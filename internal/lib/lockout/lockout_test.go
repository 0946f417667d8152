package lockout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxAttempts = 5

func TestState_IsLocked(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(30 * time.Second)
	past := now.Add(-30 * time.Second)

	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{"no lock", State{Attempts: 2}, false},
		{"active lock", State{Attempts: 5, LockExpires: &future}, true},
		{"expired lock", State{Attempts: 5, LockExpires: &past}, false},
		{"lock expires exactly now", State{Attempts: 5, LockExpires: &now}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.IsLocked(now))
		})
	}
}

func TestState_OnFailure_LocksAfterMaxAttempts(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := State{}
	for i := 1; i < maxAttempts; i++ {
		s = s.OnFailure(now, maxAttempts)
		assert.Equal(t, i, s.Attempts)
		assert.False(t, s.IsLocked(now), "should not lock before attempt %d", maxAttempts)
	}

	s = s.OnFailure(now, maxAttempts)
	require.NotNil(t, s.LockExpires)
	assert.Equal(t, now.Add(LockWindow), *s.LockExpires)
	assert.True(t, s.IsLocked(now))

	// блокировка действует в пределах окна даже при верном пароле:
	// проверка IsLocked выполняется до сверки пароля
	assert.True(t, s.IsLocked(now.Add(LockWindow)))
	assert.False(t, s.IsLocked(now.Add(LockWindow+time.Second)))
}

func TestState_OnFailure_ResetsExpiredLockFirst(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Second)

	s := State{Attempts: maxAttempts, LockExpires: &expired}
	s = s.OnFailure(now, maxAttempts)

	assert.Equal(t, 1, s.Attempts)
	assert.Nil(t, s.LockExpires)
}

func TestState_OnSuccess_ResetsEverything(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	s := State{}
	for range 3 {
		s = s.OnFailure(now, maxAttempts)
	}
	assert.Equal(t, 3, s.Attempts)

	s = s.OnSuccess()
	assert.Equal(t, 0, s.Attempts)
	assert.Nil(t, s.LockExpires)
	assert.False(t, s.IsLocked(now))
}
