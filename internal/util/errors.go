package util

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("resource not found")
	ErrValidation         = errors.New("validation failed")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrEmailRegistered    = errors.New("该邮箱已被注册")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionFinished    = errors.New("quiz session is no longer in progress")
	ErrSubmitFailed       = errors.New("quiz submission could not be saved")
)

// ValidationError 表单字段校验失败，errors.Is(err, ErrValidation) 为 true
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Unavailable 将底层存储/网络错误包装为 ErrBackendUnavailable
func Unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %v", op, ErrBackendUnavailable, err)
}
