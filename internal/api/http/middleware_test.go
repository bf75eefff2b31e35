package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/storefront-auth/internal/api/http"
	"github.com/spec-kit/storefront-auth/internal/observability"
	apperrors "github.com/spec-kit/storefront-auth/pkg/util"
)

func TestErroredRequestsRecordTranslatedStatus(t *testing.T) {
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/privileged", func(c *fiber.Ctx) error {
		return apperrors.NewUnauthorized(nil)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/privileged", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	require.EqualValues(t, 1, metrics.RequestCount("/privileged", http.MethodGet, http.StatusUnauthorized))
	require.EqualValues(t, 0, metrics.RequestCount("/privileged", http.MethodGet, http.StatusOK))
}

func TestSuccessfulRequestsRecordTheirStatus(t *testing.T) {
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, zap.NewNop(), metrics, 0)
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, metrics.RequestCount("/ok", http.MethodGet, http.StatusOK))
}
