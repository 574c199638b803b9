package proxy

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForwardsRequestAndResponse(t *testing.T) {
	var gotPath, gotQuery, gotBody, gotINM, gotCT string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotINM = r.Header.Get("If-None-Match")
		gotCT = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"project_id":"p1"}`))
	}))
	defer upstream.Close()

	app := fiber.New()
	app.All("/api/*", New(upstream.URL+"/").Handler())

	req := httptest.NewRequest(http.MethodPost, "/api/projects?x=1", strings.NewReader(`{"title":"t"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-None-Match", `"old"`)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, `{"project_id":"p1"}`, string(body))
	assert.Equal(t, `"abc"`, resp.Header.Get("ETag"))
	assert.Equal(t, "/api/projects", gotPath)
	assert.Equal(t, "x=1", gotQuery)
	assert.Equal(t, `{"title":"t"}`, gotBody)
	assert.Equal(t, `"old"`, gotINM)
	assert.Equal(t, "application/json", gotCT)
}

func TestUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	base := upstream.URL
	upstream.Close()

	app := fiber.New()
	app.All("/api/*", New(base).Handler())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/projects/p1", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	assert.Error(t, New(base).Ping(context.Background()))
}

func TestPing(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health/live" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"status":"alive"}`))
	}))
	defer upstream.Close()

	assert.NoError(t, New(upstream.URL).Ping(context.Background()))

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer failing.Close()

	err := New(failing.URL).Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
