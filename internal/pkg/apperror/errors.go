package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound         ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest       ErrorCode = "BAD_REQUEST"
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeAlreadyProcessed ErrorCode = "ALREADY_PROCESSED"
	ErrCodeVersionConflict  ErrorCode = "VERSION_CONFLICT"
	ErrCodeConflict         ErrorCode = "CONFLICT"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
	ErrCodeDatabaseError    ErrorCode = "DATABASE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT"
	ErrCodeCanceled         ErrorCode = "REQUEST_CANCELED"
)

// StatusClientClosedRequest - нестандартный код nginx для запроса, брошенного клиентом.
const StatusClientClosedRequest = 499

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

// Validation - сокращение для самой частой ошибки валидации.
func Validation(format string, args ...any) *AppError {
	return New(ErrCodeValidation, fmt.Sprintf(format, args...))
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest, ErrCodeValidation, ErrCodeAlreadyProcessed:
		return http.StatusBadRequest
	case ErrCodeVersionConflict, ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// CodeOf возвращает код ошибки приложения или пустую строку.
func CodeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

func IsForbidden(err error) bool {
	return CodeOf(err) == ErrCodeForbidden
}

func IsValidation(err error) bool {
	return CodeOf(err) == ErrCodeValidation
}

func IsAlreadyProcessed(err error) bool {
	return CodeOf(err) == ErrCodeAlreadyProcessed
}

func IsVersionConflict(err error) bool {
	return CodeOf(err) == ErrCodeVersionConflict
}

// Canceled оборачивает отмену запроса клиентом; такая ошибка не считается сбоем сервера.
func Canceled(err error) *AppError {
	return Wrap(err, ErrCodeCanceled, "запрос отменён клиентом")
}

var (
	ErrVerificationNotFound = New(ErrCodeNotFound, "заявка на верификацию не найдена")
	ErrReportNotFound       = New(ErrCodeNotFound, "жалоба не найдена")
	ErrAccountNotFound      = New(ErrCodeNotFound, "аккаунт не найден")
	ErrVerificationExists   = New(ErrCodeConflict, "заявка на верификацию уже существует")
	ErrUnauthorized         = New(ErrCodeUnauthorized, "требуется авторизация")
	ErrForbidden            = New(ErrCodeForbidden, "недостаточно прав")
	ErrAdminOnly            = New(ErrCodeForbidden, "действие доступно только администратору")
	ErrBreederOnly          = New(ErrCodeForbidden, "действие доступно только заводчику")
	ErrVersionConflict      = New(ErrCodeVersionConflict, "запись уже изменена другим администратором, обновите данные и повторите")
	ErrInvalidID            = New(ErrCodeValidation, "некорректный формат идентификатора")
	ErrMessageRequired      = New(ErrCodeValidation, "сообщение администратора обязательно")
)

// AlreadyProcessed сообщает о попытке изменить запись в финальном статусе.
func AlreadyProcessed(entity, status string) *AppError {
	return New(ErrCodeAlreadyProcessed, fmt.Sprintf("%s уже обработана (статус %s)", entity, status))
}

// DownstreamSyncError описывает сбой побочного эффекта после успешной модерации.
// Наружу не возвращается: только логируется и журналируется.
type DownstreamSyncError struct {
	Effect     string
	EntityKind string
	EntityID   string
	Cause      error
}

func (e *DownstreamSyncError) Error() string {
	return fmt.Sprintf("downstream sync %s for %s %s: %v", e.Effect, e.EntityKind, e.EntityID, e.Cause)
}

func (e *DownstreamSyncError) Unwrap() error {
	return e.Cause
}
