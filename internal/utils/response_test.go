package utils_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/capstone-dashboard-api/internal/utils"
)

func respond(t *testing.T, handler fiber.Handler) (int, map[string]json.RawMessage) {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestOKCarriesListMeta(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return utils.OK(c, []string{"tiger@ualberta.ca"}, "", fiber.Map{"count": 1, "sprint": 2})
	})

	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `true`, string(body["success"]))
	require.JSONEq(t, `"success"`, string(body["message"]))
	require.JSONEq(t, `["tiger@ualberta.ca"]`, string(body["data"]))
	require.JSONEq(t, `{"count":1,"sprint":2}`, string(body["meta"]))
	require.NotContains(t, body, "details")
}

func TestSendSuccessWithStatusDefaultsToOK(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return utils.SendSuccessWithStatus(c, 0, "upload ingested", fiber.Map{"records": 3})
	})

	require.Equal(t, fiber.StatusOK, status)
	require.JSONEq(t, `"upload ingested"`, string(body["message"]))
	require.NotContains(t, body, "meta")
}

func TestFailCarriesRowAndColumn(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return utils.Fail(c, fiber.StatusBadRequest, "", fiber.Map{"row": 4, "column": "Email Address"})
	})

	require.Equal(t, fiber.StatusBadRequest, status)
	require.JSONEq(t, `false`, string(body["success"]))
	require.JSONEq(t, `"error"`, string(body["message"]))
	require.JSONEq(t, `{"row":4,"column":"Email Address"}`, string(body["details"]))
	require.NotContains(t, body, "data")
}

func TestSendErrorOmitsDetails(t *testing.T) {
	status, body := respond(t, func(c *fiber.Ctx) error {
		return utils.SendError(c, fiber.StatusNotFound, "course not found")
	})

	require.Equal(t, fiber.StatusNotFound, status)
	require.JSONEq(t, `"course not found"`, string(body["message"]))
	require.NotContains(t, body, "details")
}
