// Package response содержит типы и функции для формирования унифицированных
// JSON-ответов API. Успех — {"success":true,"data":...}, ошибка —
// {"success":false,"error":{"code":...,"message":...}}.
package response

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"
)

// Коды ошибок, различимые клиентом.
const (
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeTokenExpired    = "TOKEN_EXPIRED"
	CodeInvalidToken    = "INVALID_TOKEN"
	CodeAuthError       = "AUTH_ERROR"
	CodeInvalidSign     = "INVALID_SIGNATURE"
	CodeConfigError     = "CONFIG_ERROR"
	CodeInvalidPayload  = "INVALID_PAYLOAD"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
)

// ErrorBody — машинно-читаемый код и человеко-читаемое сообщение ошибки.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Response описывает стандартную структуру JSON-ответа сервера.
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

// OK возвращает успешный Response с переданными данными.
func OK(data any) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

// Error возвращает Response с ошибкой, кодом и сообщением.
func Error(code, msg string) Response {
	return Response{
		Success: false,
		Error: &ErrorBody{
			Code:    code,
			Message: msg,
		},
	}
}

// ValidationError формирует ответ с кодом INVALID_PAYLOAD на основе ошибок
// валидации. Каждое нарушение превращается в читаемый текст, тексты
// объединяются через запятую.
func ValidationError(errs validator.ValidationErrors) Response {
	var errsMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is a required field", err.Field()))
		case "email":
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s must be a valid email", err.Field()))
		default:
			errsMsgs = append(errsMsgs, fmt.Sprintf("field %s is not valid", err.Field()))
		}
	}
	return Error(CodeInvalidPayload, strings.Join(errsMsgs, ", "))
}
