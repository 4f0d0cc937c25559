package api

import (
	"context"
	"testing"
	"time"

	"github.com/concave-dev/orderpace/internal/engine"
	"github.com/concave-dev/orderpace/internal/export"
	"github.com/concave-dev/orderpace/internal/metrics"
	"github.com/concave-dev/orderpace/internal/shopify"
	"github.com/concave-dev/orderpace/internal/tasks"
	"github.com/gin-gonic/gin"
)

// newTestConfig builds a valid config backed by a real engine writing to a
// temporary directory.
func newTestConfig(t *testing.T) *Config {
	t.Helper()
	gin.SetMode(gin.TestMode)

	exporter, err := export.New(t.TempDir())
	if err != nil {
		t.Fatalf("export.New() error = %v", err)
	}

	eng, err := engine.New(engine.DefaultConfig(), tasks.NewRegistry(), exporter, metrics.New())
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = eng.Shutdown(ctx)
	})

	cfg := DefaultConfig()
	cfg.BindPort = 8080
	cfg.Engine = eng
	cfg.Resolver = shopify.NewVariantResolver(time.Second)
	return cfg
}
