package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/chart"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
	"github.com/njchilds90/gocalc/internal/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupTestServer(t *testing.T, mutate func(*config.ServerConfig)) (*Server, *metrics.Metrics) {
	t.Helper()
	cfg := config.Default().Server
	cfg.RateLimit = 0
	if mutate != nil {
		mutate(&cfg)
	}
	calc := gocalc.New(gocalc.Options{Chart: chart.Config{Width: 400, Height: 300}, Logger: logging.Discard()})
	m := metrics.New()
	return New(calc, cfg, logging.Discard(), m), m
}

func postTool(s *Server, body string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/tool", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) gocalc.ToolResponse {
	t.Helper()
	var resp gocalc.ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHandleTool_Success(t *testing.T) {
	s, m := setupTestServer(t, nil)
	w := postTool(s, `{"tool":"solve","params":{"equations":"x**2 - 4","variables":"x"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "[-2, 2]", resp.String)
	assert.Equal(t, []interface{}{"-2", "2"}, resp.Result)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
	n, err := testutil.GatherAndCount(m.Gatherer(), "gocalc_tool_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestHandleTool_RequestIDEchoed(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	w := postTool(s, `{"tool":"evaluate","params":{"expr":"1+1"}}`, requestIDHeader, "abc-123")
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
	assert.Equal(t, "2", decodeResponse(t, w).String)
}

func TestHandleTool_CalculationFailureIs200(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	w := postTool(s, `{"tool":"evaluate","params":{"expr":"1/0"}}`)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Contains(t, resp.Error, "division by zero")
	assert.True(t, strings.HasPrefix(resp.Message, gocalc.FailureMark))
}

func TestHandleTool_BadRequests(t *testing.T) {
	s, _ := setupTestServer(t, nil)
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"tool":`},
		{"unknown field", `{"tool":"evaluate","extra":1}`},
		{"trailing data", `{"tool":"evaluate","params":{"expr":"1"}} {}`},
		{"missing tool", `{"params":{}}`},
		{"unknown tool", `{"tool":"nope"}`},
		{"missing param", `{"tool":"solve","params":{"equations":"x"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postTool(s, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.NotEmpty(t, decodeResponse(t, w).Error)
		})
	}
}

func TestHandleTool_BodyLimit(t *testing.T) {
	s, _ := setupTestServer(t, func(c *config.ServerConfig) { c.MaxBodyBytes = 64 })
	body := `{"tool":"evaluate","params":{"expr":"` + strings.Repeat("1+", 100) + `1"}}`
	w := postTool(s, body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestHandleTool_RateLimit(t *testing.T) {
	s, m := setupTestServer(t, func(c *config.ServerConfig) {
		c.RateLimit = 0.001
		c.Burst = 1
	})
	body := `{"tool":"evaluate","params":{"expr":"2"}}`
	assert.Equal(t, http.StatusOK, postTool(s, body).Code)
	assert.Equal(t, http.StatusTooManyRequests, postTool(s, body).Code)
	n, err := testutil.GatherAndCount(m.Gatherer(), "gocalc_http_rejected_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSchemaHealthMetrics(t *testing.T) {
	s, _ := setupTestServer(t, nil)

	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()))
	assert.Contains(t, w.Body.String(), `"tool_spec"`)

	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])

	postTool(s, `{"tool":"evaluate","params":{"expr":"2"}}`)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `gocalc_tool_calls_total{outcome="ok",tool="evaluate"} 1`)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	s, _ := setupTestServer(t, func(c *config.ServerConfig) { c.Addr = addr })
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	var resp *http.Response
	for deadline := time.Now().Add(2 * time.Second); ; time.Sleep(20 * time.Millisecond) {
		resp, err = http.Post("http://"+addr+"/tool", "application/json",
			bytes.NewBufferString(`{"tool":"evaluate","params":{"expr":"6*7"}}`))
		if err == nil || time.Now().After(deadline) {
			break
		}
	}
	require.NoError(t, err)
	var body gocalc.ToolResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "42", body.String)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
