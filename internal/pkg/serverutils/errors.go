package serverutils

import "github.com/gofiber/fiber/v2"

// ApiError is the typed error services return so the error middleware can map
// it to a status code and a named reason. Validation and not-found failures
// reject synchronously; nothing has been mutated when one of these surfaces.
type ApiError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(status int, message string) *ApiError {
	return &ApiError{Status: status, Message: message}
}

func NewValidationError(message string) *ApiError {
	return NewApiError(fiber.StatusBadRequest, message)
}

func NewNotFoundError(message string) *ApiError {
	return NewApiError(fiber.StatusNotFound, message)
}

func NewForbiddenError(message string) *ApiError {
	return NewApiError(fiber.StatusForbidden, message)
}
