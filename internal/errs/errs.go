// Package errs определяет доменную классификацию ошибок сервиса.
//
// Каждая ошибка несёт вид (Kind), сообщение и признак Operational:
// операционные ошибки безопасно показывать клиенту, остальные
// логируются и отдаются как общий текст.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind определяет вид доменной ошибки.
type Kind int

const (
	// KindInternal — непредвиденная ошибка (инфраструктура, баг).
	KindInternal Kind = iota
	// KindBadRequest — отсутствующие или некорректные входные данные.
	KindBadRequest
	// KindUnauthorized — неверные учётные данные, протухший или невалидный токен.
	KindUnauthorized
	// KindForbidden — роль пользователя не допускает операцию.
	KindForbidden
	// KindNotFound — ресурс или пользователь не найден.
	KindNotFound
	// KindConflict — нарушение уникальности, например повторный отзыв.
	KindConflict
	// KindTooManyAttempts — учётная запись заблокирована после неудачных попыток входа.
	KindTooManyAttempts
	// KindRetryable — сбой внешней системы (почта, платёжный провайдер), можно повторить.
	KindRetryable
)

// Error — доменная ошибка с видом и признаком операционности.
type Error struct {
	Kind        Kind
	Msg         string
	Operational bool
	Err         error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New создает операционную ошибку указанного вида.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg, Operational: true}
}

// Wrap оборачивает причину в операционную ошибку указанного вида.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Operational: true, Err: err}
}

// Internal создает неоперационную ошибку: текст причины не показывается клиенту.
func Internal(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Msg: msg, Err: err}
}

// KindOf возвращает вид ошибки: KindInternal, если err не является *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsOperational сообщает, безопасно ли показывать текст ошибки клиенту.
func IsOperational(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Operational
	}
	return false
}

// HTTPStatus переводит вид ошибки в HTTP статус.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTooManyAttempts:
		return http.StatusTooManyRequests
	case KindRetryable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Message возвращает текст для клиента: для неоперационных ошибок — общий текст.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Operational {
		return e.Msg
	}
	return "internal server error"
}
