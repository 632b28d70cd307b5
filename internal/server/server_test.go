// Package server provides HTTP server for the application.
// This file contains unit tests for the server package.
package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veridex/veridex/internal/client"
	"github.com/veridex/veridex/internal/config"
	"github.com/veridex/veridex/internal/pipeline"
	"github.com/veridex/veridex/pkg/logger"
)

func init() {
	// Initialize logger for tests
	logger.Init(logger.Config{
		Level:  "error",
		Format: "text",
	})
}

func testServerConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host: "localhost",
			Port: 8080,
		},
	}
}

func testServer(cfg *config.Config) *Server {
	similarity := client.NewSimilarity(config.EndpointConfig{URL: "http://unused.invalid", Timeout: 5})
	p := pipeline.New(nil, nil, nil, nil, nil, cfg.Review)
	return New(cfg, p, similarity, nil)
}

// TestServer_New tests creating a new server instance
func TestServer_New(t *testing.T) {
	cfg := testServerConfig()
	srv := testServer(cfg)
	require.NotNil(t, srv)
	assert.Equal(t, cfg, srv.cfg)
	assert.NotNil(t, srv.router)
	// trailing slash redirects are disabled
	assert.False(t, srv.router.RedirectTrailingSlash)
	assert.False(t, srv.router.RedirectFixedPath)
}

// TestServer_SetupRoutes tests that routes are mounted on the router
func TestServer_SetupRoutes(t *testing.T) {
	srv := testServer(testServerConfig())
	srv.SetupRoutes()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

// TestServer_StopWithoutStart tests stopping a server that never started
func TestServer_StopWithoutStart(t *testing.T) {
	srv := testServer(testServerConfig())
	assert.NoError(t, srv.Stop())
}

// TestServer_StartAndStop tests the server lifecycle
func TestServer_StartAndStop(t *testing.T) {
	cfg := testServerConfig()
	cfg.Server.Port = 0 // let the OS pick a free port
	srv := testServer(cfg)
	srv.SetupRoutes()

	require.NoError(t, srv.Start())
	assert.NoError(t, srv.Stop())
}
