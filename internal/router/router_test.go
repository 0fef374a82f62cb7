package router

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/account-service/config"
	"github.com/oksasatya/account-service/internal/container"
	"github.com/oksasatya/account-service/internal/router/modules"
	"github.com/oksasatya/account-service/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type recordingModule struct{ registered bool }

func (m *recordingModule) Register(rg *gin.RouterGroup) {
	m.registered = true
	rg.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("mw")) })
}

func TestRegistry_AppliesMiddlewareUnderAPI(t *testing.T) {
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Use(func(c *gin.Context) { c.Set("mw", "seen"); c.Next() })
	mod := &recordingModule{}
	reg.Add(mod)
	reg.RegisterAll()

	assert.True(t, mod.registered)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "seen", w.Body.String())
}

func newTestEngine(t *testing.T, debugVars bool) *gin.Engine {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})
	cfg := &config.Config{DirectoryDriver: "memory", BcryptCost: 4, RateLimitPerMinute: 120, DebugMetricsEnabled: debugVars}

	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg, container.New(cfg, logger))
	reg.RegisterAll()
	return engine
}

func call(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestInitModules_AccountRoutes(t *testing.T) {
	engine := newTestEngine(t, true)

	w := call(engine, http.MethodPost, "/api/users", `{"name":"Alice","email":"alice@example.com","password":"s3cret-pass","confirm_password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(engine, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "alice@example.com")
	assert.NotContains(t, w.Body.String(), "s3cret-pass")

	w = call(engine, http.MethodGet, "/api/users/search?q=alice", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(engine, http.MethodPost, "/api/users/export", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = call(engine, http.MethodGet, "/api/debug/vars", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "account_ops")
}

func TestInitModules_DebugVarsToggle(t *testing.T) {
	engine := newTestEngine(t, false)
	assert.Equal(t, http.StatusNotFound, call(engine, http.MethodGet, "/api/debug/vars", "").Code)
	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/api/health", "").Code)
}

func TestSystemModule_HealthReportsFailures(t *testing.T) {
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Add(modules.NewSystemModule(map[string]func(context.Context) error{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}, false, nil, 0, 0))
	reg.RegisterAll()

	w := call(engine, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"redis":"connection refused"`)
	assert.Contains(t, w.Body.String(), `"postgres":"ok"`)
}

func TestAccountModule_RegistersWithoutRedis(t *testing.T) {
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Add(modules.NewAccountModule(BuildAccountDeps(container.New(&config.Config{DirectoryDriver: "memory", BcryptCost: 4}, logrus.New())).Handler, nil, 1, time.Minute))
	reg.RegisterAll()

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/api/users", "").Code)
	}
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestAccountModule_ExportHasTighterLimit(t *testing.T) {
	rdb := newTestRedis(t)
	engine := gin.New()
	reg := NewRegistry(engine)
	deps := BuildAccountDeps(container.New(&config.Config{DirectoryDriver: "memory", BcryptCost: 4}, logrus.New()))
	reg.Add(modules.NewAccountModule(deps.Handler, rdb, 40, time.Minute))
	reg.RegisterAll()

	// 40/20 = 2 exports per window; export is unconfigured so allowed calls answer 422.
	assert.Equal(t, http.StatusUnprocessableEntity, call(engine, http.MethodPost, "/api/users/export", "").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, call(engine, http.MethodPost, "/api/users/export", "").Code)
	w := call(engine, http.MethodPost, "/api/users/export", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))

	w = call(engine, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "40", w.Header().Get("X-RateLimit-Limit"))
}

func TestAccountModule_ForwardedLoopbackDoesNotBypass(t *testing.T) {
	rdb := newTestRedis(t)
	engine := gin.New()
	reg := NewRegistry(engine)
	InitModules(reg, &container.Container{
		Config: &config.Config{DirectoryDriver: "memory", BcryptCost: 4, RateLimitPerMinute: 2},
		Logger: logrus.New(),
		Redis:  rdb,
	})
	reg.RegisterAll()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
		req.Header.Set("X-Forwarded-For", "127.0.0.1")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestSystemModule_HealthLimitedPerIP(t *testing.T) {
	rdb := newTestRedis(t)
	engine := gin.New()
	reg := NewRegistry(engine)
	reg.Add(modules.NewSystemModule(nil, false, rdb, 1, time.Minute))
	reg.RegisterAll()

	assert.Equal(t, http.StatusOK, call(engine, http.MethodGet, "/api/health", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, call(engine, http.MethodGet, "/api/health", "").Code)
}
