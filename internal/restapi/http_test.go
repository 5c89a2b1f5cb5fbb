package restapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"railnet.dev/railnet/internal/app"
	"railnet.dev/railnet/internal/appconf"
	"railnet.dev/railnet/internal/logging"
	"railnet.dev/railnet/internal/models"
)

// createTestApi builds an application over the fixture network with a rate
// limit high enough not to interfere.
func createTestApi(t *testing.T) *RestAPI {
	return createTestApiWithRateLimit(t, 1000)
}

func createTestApiWithRateLimit(t *testing.T, rateLimit int) *RestAPI {
	t.Helper()
	cfg := appconf.Default()
	cfg.Env = "test"
	cfg.Server.RateLimit = rateLimit
	cfg.Dataset.Dir = models.GetFixturePath(t, "network")
	cfg.Dataset.KeyStations = []string{"London Waterloo", "Clapham Junction"}

	application, err := app.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(application.Shutdown)

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

// serveAndRetrieveEndpoint sets up a test server, makes a request to the specified endpoint, and returns the response
// and decoded model.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	return resp, decodeResponse(t, resp)
}

func serveApiAndDo(t *testing.T, api *RestAPI, method, endpoint string, body io.Reader) (*http.Response, []byte) {
	t.Helper()
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	req, err := http.NewRequest(method, server.URL+endpoint, body)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeResponse(t *testing.T, resp *http.Response) models.ResponseModel {
	t.Helper()
	defer logging.SafeCloseWithLogging(resp.Body,
		slog.Default().With(slog.String("component", "test")),
		"http_response_body")

	var response models.ResponseModel
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return response
}

func dataMap(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "data should be an object, got %T", model.Data)
	return data
}

func entryOf(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	entry, ok := dataMap(t, model)["entry"].(map[string]interface{})
	require.True(t, ok, "entry should be an object")
	return entry
}

func listOf(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	list, ok := dataMap(t, model)["list"].([]interface{})
	require.True(t, ok, "list should be an array")
	return list
}

func fieldErrorsOf(t *testing.T, body []byte) map[string][]string {
	t.Helper()
	var payload struct {
		FieldErrors map[string][]string `json:"fieldErrors"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload.FieldErrors
}
