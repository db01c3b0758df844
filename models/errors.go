package models

import (
	"github.com/pkg/errors"
)

// ErrCode - стабильный код ошибки рабочего процесса оценки,
// транспортный слой транслирует его в HTTP статус.
type ErrCode string

const (
	ErrCodeInvalidInput               ErrCode = "INVALID_INPUT"
	ErrCodeNotFound                   ErrCode = "NOT_FOUND"
	ErrCodeVersionConflict            ErrCode = "VERSION_CONFLICT"
	ErrCodeMissingAssignmentData      ErrCode = "MISSING_ASSIGNMENT_DATA"
	ErrCodeInvalidAssignmentData      ErrCode = "INVALID_ASSIGNMENT_DATA"
	ErrCodeInvalidAssignmentResources ErrCode = "INVALID_ASSIGNMENT_RESOURCES"
	ErrCodeInvalidPortalURL           ErrCode = "INVALID_PORTAL_URL"
	ErrCodeMailerUnavailable          ErrCode = "MAILER_UNAVAILABLE"
	ErrCodeAccessDenied               ErrCode = "ACCESS_DENIED"
	ErrCodeFormAlreadySubmitted       ErrCode = "FORM_ALREADY_SUBMITTED"
	ErrCodeFormsPending               ErrCode = "FORMS_PENDING"
)

type EvalError struct {
	Code    ErrCode
	Message string
}

func (e *EvalError) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func NewEvalError(code ErrCode, message string) error {
	return &EvalError{
		Code:    code,
		Message: message,
	}
}

func NewEvalErrorf(code ErrCode, format string, args ...interface{}) error {
	return &EvalError{
		Code:    code,
		Message: errors.Errorf(format, args...).Error(),
	}
}

// CodeOf возвращает код ошибки, если она относится к процессу оценки.
func CodeOf(err error) (ErrCode, bool) {
	var evalErr *EvalError
	if errors.As(err, &evalErr) {
		return evalErr.Code, true
	}
	return "", false
}

func IsEvalError(err error, code ErrCode) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
