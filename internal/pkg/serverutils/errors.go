package serverutils

import "github.com/gofiber/fiber/v2"

// ApiError is a client-facing error with a stable machine-readable code.
// Services return domain sentinels; the error handler maps them here.
type ApiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *ApiError) Error() string {
	return e.Message
}

func NewApiError(status int, code, message string) *ApiError {
	return &ApiError{
		Status:  status,
		Code:    code,
		Message: message,
	}
}

func NewSessionNotFoundError() *ApiError {
	return NewApiError(fiber.StatusNotFound, "SESSION_NOT_FOUND", "Chat session does not exist or has expired")
}

func NewScopeNotReadyError() *ApiError {
	return NewApiError(fiber.StatusConflict, "SCOPE_NOT_READY", "Scoped document is not indexed yet")
}

func NewDocumentNotFoundError() *ApiError {
	return NewApiError(fiber.StatusNotFound, "DOCUMENT_NOT_FOUND", "Document does not exist")
}

func NewInvalidTransitionError() *ApiError {
	return NewApiError(fiber.StatusConflict, "INVALID_TRANSITION", "Document status transition not allowed")
}

func NewChainIntegrityError() *ApiError {
	return NewApiError(fiber.StatusConflict, "CHAIN_INTEGRITY_VIOLATION", "Audit chain verification failed")
}

func NewValidationError(message string) *ApiError {
	return NewApiError(fiber.StatusBadRequest, "VALIDATION_ERROR", message)
}

func NewInternalError() *ApiError {
	return NewApiError(fiber.StatusInternalServerError, "INTERNAL_ERROR", "Something went wrong")
}
