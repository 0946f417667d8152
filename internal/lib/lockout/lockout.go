// Package lockout реализует политику блокировки входа после серии неудачных
// попыток. Политика — чистая логика над счётчиком попыток и меткой окончания
// блокировки; запись состояния в хранилище выполняет вызывающий код.
//
// Окно блокировки намеренно короткое: это мягкое ограничение перебора,
// а не жёсткая граница безопасности.
package lockout

import "time"

// LockWindow — интервал, на который блокируется вход после превышения
// допустимого числа неудачных попыток.
const LockWindow = time.Minute

// State — состояние блокировки пользователя.
type State struct {
	Attempts    int
	LockExpires *time.Time
}

// IsLocked сообщает, действует ли блокировка на момент now.
func (s State) IsLocked(now time.Time) bool {
	return s.LockExpires != nil && !s.LockExpires.Before(now)
}

// OnFailure возвращает состояние после неудачной попытки входа.
//
// Если предыдущая блокировка уже истекла, счётчик сначала сбрасывается.
// Затем счётчик увеличивается; при достижении maxAttempts выставляется
// новая блокировка до now + LockWindow.
func (s State) OnFailure(now time.Time, maxAttempts int) State {
	next := s
	if next.LockExpires != nil && next.LockExpires.Before(now) {
		next.Attempts = 0
		next.LockExpires = nil
	}

	next.Attempts++
	if next.Attempts >= maxAttempts {
		expires := now.Add(LockWindow)
		next.LockExpires = &expires
	}
	return next
}

// OnSuccess возвращает состояние после успешного входа:
// счётчик сброшен, блокировка снята.
func (s State) OnSuccess() State {
	return State{}
}
