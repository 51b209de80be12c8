package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeticulousHome/meticulous-go/config"
	"github.com/MeticulousHome/meticulous-go/errors"
	"github.com/MeticulousHome/meticulous-go/metric"
	"github.com/MeticulousHome/meticulous-go/types"
)

// newTestClient points a client at an httptest machine.
func newTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.Host = server.URL

	client, err := New(cfg, opts...)
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew_NilConfig(t *testing.T) {
	client, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultHost, client.BaseURL())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := &config.Config{Host: "ftp://machine.local"}

	_, err := New(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestExecuteAction(t *testing.T) {
	var gotPath, gotAccept string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAccept = r.Header.Get("Accept")
		writeJSON(t, w, types.ActionResponse{Status: "ok", Action: "start"})
	}))

	resp, err := client.ExecuteAction(context.Background(), types.ActionStart)
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/action/start", gotPath)
	assert.Equal(t, "application/json", gotAccept)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "start", resp.Action)
}

func TestExecuteAction_UnknownAction(t *testing.T) {
	requests := 0
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))

	_, err := client.ExecuteAction(context.Background(), types.ActionType("grind"))
	require.Error(t, err)

	// Rejected before any request reaches the machine
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "grind")
	assert.Equal(t, 0, requests)
}

func TestExecuteAction_MachineError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		writeJSON(t, w, types.APIError{Error: "machine busy", Status: "error"})
	}))

	_, err := client.ExecuteAction(context.Background(), types.ActionStart)
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrRequestFailed)
	assert.True(t, errors.IsInvalid(err))
	assert.Contains(t, err.Error(), "HTTP 409")
	assert.Contains(t, err.Error(), "machine busy")
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rebooting", http.StatusServiceUnavailable)
	}))

	_, err := client.ExecuteAction(context.Background(), types.ActionStart)
	require.Error(t, err)

	assert.ErrorIs(t, err, errors.ErrRequestFailed)
	assert.True(t, errors.IsTransient(err))
	assert.Contains(t, err.Error(), "HTTP 503")
}

func TestClient_ContextCancelled(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.ExecuteAction(ctx, types.ActionStart)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrRequestFailed)
	assert.True(t, errors.IsTransient(err))
}

func TestClient_RecordsMetrics(t *testing.T) {
	registry := metric.NewMetricsRegistry()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, types.ActionResponse{Status: "ok", Action: "tare"})
	}), WithMetrics(registry))

	_, err := client.ExecuteAction(context.Background(), types.ActionTare)
	require.NoError(t, err)

	families, err := registry.PrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}

	assert.True(t, names["meticulous_api_requests_total"])
	assert.True(t, names["meticulous_api_request_duration_seconds"])
	assert.True(t, names["meticulous_actions_sent_total"])
}

func TestOSUpdateStatus(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/machine/OS_update_status", r.URL.Path)
		writeJSON(t, w, types.OSStatusResponse{Progress: 42, Status: "DOWNLOADING", Info: "pulling image"})
	}))

	status, err := client.OSUpdateStatus(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 42, status.Progress)
	assert.Equal(t, "DOWNLOADING", status.Status)
	assert.Equal(t, "pulling image", status.Info)
}
