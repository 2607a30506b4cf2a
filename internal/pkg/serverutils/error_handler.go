package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"casechat-be/internal/pkg/logger"
	"casechat-be/pkg/audit"
	"casechat-be/pkg/rag/search"
	"casechat-be/pkg/rag/session"
)

// NewErrorHandler builds the fiber app-level error handler. Domain sentinels
// are mapped to stable codes; anything unrecognized becomes INTERNAL_ERROR
// and is logged with its real cause.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var apiErr *ApiError
		if errors.As(err, &apiErr) {
			return ctx.Status(apiErr.Status).JSON(ErrorResponse(apiErr.Code, apiErr.Message))
		}

		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			apiErr = NewSessionNotFoundError()
		case errors.Is(err, search.ErrScopeNotReady):
			apiErr = NewScopeNotReadyError()
		case errors.Is(err, audit.ErrChainIntegrityViolation):
			apiErr = NewChainIntegrityError()
		}
		if apiErr != nil {
			return ctx.Status(apiErr.Status).JSON(ErrorResponse(apiErr.Code, apiErr.Message))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse("HTTP_ERROR", fiberErr.Message))
		}

		log.Error("http", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		internal := NewInternalError()
		return ctx.Status(internal.Status).JSON(ErrorResponse(internal.Code, internal.Message))
	}
}
