package http

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/support-desk/internal/api/dto"
	"github.com/spec-kit/support-desk/internal/observability"
	apperrors "github.com/spec-kit/support-desk/pkg/util/errorutil"
)

func newMiddlewareApp(t *testing.T, timeout time.Duration) (*fiber.App, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	app := fiber.New()
	RegisterMiddlewares(app, zap.New(core), observability.NewMetrics("supportdesk"), timeout)
	return app, logs
}

func doEnvelope(t *testing.T, app *fiber.App, path, requestID string) (int, string, dto.ErrorResponse) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodGet, path, nil)
	if requestID != "" {
		req.Header.Set(observability.RequestIDHeader, requestID)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body dto.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, resp.Header.Get(observability.RequestIDHeader), body
}

func TestErrorEnvelope_CarriesRequestID(t *testing.T) {
	app, logs := newMiddlewareApp(t, 0)
	app.Get("/tickets/:id", func(c *fiber.Ctx) error {
		return apperrors.NewNotFound("ticket", nil)
	})

	status, header, body := doEnvelope(t, app, "/tickets/missing", "req-42")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "req-42", header)
	assert.Equal(t, apperrors.CodeNotFound, body.Error.Code)
	assert.Equal(t, "ticket not found", body.Error.Message)
	assert.Equal(t, "req-42", body.Error.RequestID)

	assert.Zero(t, logs.FilterMessage("request failed").Len())
	access := logs.FilterMessage("request").All()
	require.Len(t, access, 1)
	assert.Equal(t, "req-42", access[0].ContextMap()["request_id"])
	assert.EqualValues(t, fiber.StatusNotFound, access[0].ContextMap()["status"])
}

func TestErrorEnvelope_MintsRequestIDForUnknownRoutes(t *testing.T) {
	app, _ := newMiddlewareApp(t, 0)

	status, header, body := doEnvelope(t, app, "/nowhere", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	require.NotEmpty(t, header)
	assert.Equal(t, header, body.Error.RequestID)
}

func TestErrorEnvelope_RecoversPanics(t *testing.T) {
	app, logs := newMiddlewareApp(t, 0)
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("nil ticket thread")
	})

	status, _, body := doEnvelope(t, app, "/boom", "req-panic")
	assert.Equal(t, fiber.StatusInternalServerError, status)
	assert.Equal(t, apperrors.CodeInternal, body.Error.Code)
	assert.Equal(t, "internal server error", body.Error.Message)
	assert.Equal(t, "req-panic", body.Error.RequestID)

	panics := logs.FilterMessage("panic recovered").All()
	require.Len(t, panics, 1)
	assert.Equal(t, "req-panic", panics[0].ContextMap()["request_id"])

	failures := logs.FilterMessage("request failed").All()
	require.Len(t, failures, 1)
	fields := failures[0].ContextMap()
	assert.Equal(t, "req-panic", fields["request_id"])
	assert.Equal(t, "/boom", fields["route"])
	assert.Equal(t, apperrors.CodeInternal, fields["code"])

	access := logs.FilterMessage("request").All()
	require.Len(t, access, 1)
	assert.EqualValues(t, fiber.StatusInternalServerError, access[0].ContextMap()["status"])
}

func TestDeadline_SetsContextTimeout(t *testing.T) {
	app, _ := newMiddlewareApp(t, 2*time.Second)
	app.Get("/slow", func(c *fiber.Ctx) error {
		deadline, ok := c.UserContext().Deadline()
		if !ok || time.Until(deadline) > 2*time.Second {
			return apperrors.NewInternalError(nil)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/slow", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}
