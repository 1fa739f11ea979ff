package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/observability"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

// RegisterMiddlewares installs the chain every support desk request passes
// through. The order matters: the request id must exist before anything logs,
// and panics are turned into errors below the access log so it records a 500.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestID())
	if timeout > 0 {
		app.Use(deadline(timeout))
	}
	app.Use(errorEnvelope(logger, metrics))
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(recoverPanics(logger))
}

func deadline(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func recoverPanics(logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.String("request_id", observability.RequestIDFromContext(c)),
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
		}()
		return c.Next()
	}
}

// errorEnvelope renders any error returned down the chain as the JSON error
// body, counts it by code and logs server-side failures.
func errorEnvelope(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err == nil {
			return nil
		}

		domainErr := apperrors.ToDomainError(err)
		requestID := observability.RequestIDFromContext(c)
		route := c.Route().Path
		metrics.RecordError(route, c.Method(), domainErr.Code)

		if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("request_id", requestID),
				zap.String("method", c.Method()),
				zap.String("route", route),
				zap.String("code", domainErr.Code),
				zap.Error(domainErr),
			)
		}
		return c.Status(domainErr.HTTPStatus).JSON(dto.NewErrorResponse(domainErr, requestID))
	}
}
