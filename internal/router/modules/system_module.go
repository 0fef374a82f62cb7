package modules

import (
	"context"
	"expvar"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/account-service/internal/interface/middleware"
	"github.com/oksasatya/account-service/pkg/response"
)

const healthTimeout = 2 * time.Second

// SystemModule serves /health and, when enabled, expvar at /debug/vars,
// both rate-limited per client IP.
type SystemModule struct {
	Checks    map[string]func(context.Context) error
	DebugVars bool
	Redis     *redis.Client
	Limit     int
	Window    time.Duration
}

func NewSystemModule(checks map[string]func(context.Context) error, debugVars bool, rdb *redis.Client, limit int, window time.Duration) *SystemModule {
	return &SystemModule{Checks: checks, DebugVars: debugVars, Redis: rdb, Limit: limit, Window: window}
}

func (m *SystemModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, m.Limit, m.Window, middleware.KeyByIP(), nil)
	rg.GET("/health", rl, m.health)
	if m.DebugVars {
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}

func (m *SystemModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	names := make([]string, 0, len(m.Checks))
	for name := range m.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make(map[string]string, len(names))
	healthy := true
	for _, name := range names {
		if err := m.Checks[name](ctx); err != nil {
			results[name] = err.Error()
			healthy = false
			continue
		}
		results[name] = "ok"
	}

	if !healthy {
		response.Error[any](c, http.StatusServiceUnavailable, "unhealthy", results)
		return
	}
	response.Success(c, http.StatusOK, results, "ok", nil)
}
