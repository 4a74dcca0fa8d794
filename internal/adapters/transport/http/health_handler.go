package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	deps map[string]Pinger
	log  *zap.Logger
}

func NewHealthHandler(log *zap.Logger, deps map[string]Pinger) *HealthHandler {
	return &HealthHandler{deps: deps, log: log}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}

	var g errgroup.Group
	pinged := make([]error, len(names))
	for i, name := range names {
		g.Go(func() error {
			pinged[i] = h.deps[name].Ping(ctx)
			return nil
		})
	}
	_ = g.Wait()

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for i, name := range names {
		if err := pinged[i]; err != nil {
			h.log.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			results[name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "up"
	}

	state := "ok"
	if status != http.StatusOK {
		state = "unavailable"
	}
	c.JSON(status, gin.H{"status": state, "checks": results, "time": time.Now().Unix()})
}
