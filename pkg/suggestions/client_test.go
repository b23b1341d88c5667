package suggestions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tadweer/tadweer-site/config"
	"github.com/tadweer/tadweer-site/handlers"
	"github.com/tadweer/tadweer-site/router"
	"github.com/tadweer/tadweer-site/services"
	"github.com/tadweer/tadweer-site/store"
	"github.com/tadweer/tadweer-site/types"
)

const testAdminKey = "client-test-admin-key"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{Server: config.ServerConfig{AdminKey: testAdminKey}}
	reg := prometheus.NewRegistry()
	mem := store.NewMemoryStore()
	svc := services.NewSuggestionService(mem, testAdminKey, nil, reg)

	srv := httptest.NewServer(router.SetupRouter(router.Dependencies{
		Config:            cfg,
		SuggestionHandler: handlers.NewSuggestionHandler(svc),
		HealthHandler:     handlers.NewHealthHandler(services.NewHealthService(mem, "test")),
		MetricsHandler:    http.NotFoundHandler(),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)
	client := NewClient(srv.URL+"/api/suggestions/", testAdminKey)

	created, err := client.Submit(ctx, types.SuggestionCreate{Category: "events", Suggestion: "Post the event calendar earlier"})
	require.NoError(t, err)
	assert.True(t, created.Success)
	assert.Equal(t, "memory", created.Storage)

	tracked, err := client.Track(ctx, created.TrackingID)
	require.NoError(t, err)
	require.Len(t, tracked, 1)
	assert.Equal(t, "events", tracked[0].Category)
	assert.Equal(t, types.SuggestionStatusNew, tracked[0].Status)

	all, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.NoError(t, client.UpdateStatus(ctx, all[0].ID, types.SuggestionStatusImplemented))

	tracked, err = client.Track(ctx, created.TrackingID)
	require.NoError(t, err)
	assert.Equal(t, types.SuggestionStatusImplemented, tracked[0].Status)

	missing, err := client.Track(ctx, "TDW-ZZZZZZ")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestClient_APIErrors(t *testing.T) {
	ctx := context.Background()
	srv := newTestServer(t)

	_, err := NewClient(srv.URL+"/suggestions", testAdminKey).Submit(ctx, types.SuggestionCreate{Suggestion: "short"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Suggestion too short", apiErr.Message)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Type)
	assert.True(t, IsClientError(err))

	_, err = NewClient(srv.URL+"/suggestions", "wrong").List(ctx)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Message)

	err = NewClient(srv.URL+"/suggestions", testAdminKey).UpdateStatus(ctx, "missing", types.SuggestionStatusDeclined)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestClient_NetworkErrorIsNotClientError(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	_, err := NewClient(url+"/suggestions", "").Track(context.Background(), "TDW-AAAAAA")
	require.Error(t, err)
	assert.False(t, IsClientError(err))
}
