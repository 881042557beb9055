// cmd/mcp-server/main.go: Standalone HTTP tool server for gocalc
//
// Exposes gocalc tools as an HTTP endpoint for AI agent frameworks.
//
// Usage:
//
//	go run ./cmd/mcp-server -port 8080 -config gocalc.yaml
//
// Tool call endpoint: POST /tool
// Schema endpoint:    GET  /schema
// Health endpoint:    GET  /health
// Metrics endpoint:   GET  /metrics
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
	"github.com/njchilds90/gocalc/internal/metrics"
	"github.com/njchilds90/gocalc/internal/server"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Int("port", 0, "Port to listen on, overrides server.addr")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *port > 0 {
		cfg.Server.Addr = fmt.Sprintf(":%d", *port)
	}

	gin.SetMode(gin.ReleaseMode)
	log := logging.New(cfg.Log.Logging("mcp-server"))
	calc := gocalc.New(gocalc.Options{Timeout: cfg.Engine.Timeout, Chart: cfg.Chart, Logger: log})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("routes", "tool", "POST /tool", "schema", "GET /schema", "health", "GET /health", "metrics", "GET /metrics")
	if err := server.New(calc, cfg.Server, log, metrics.New()).Run(ctx); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
