package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/account-service/internal/interface/http"
	"github.com/oksasatya/account-service/internal/interface/middleware"
)

// AccountModule registers the /users routes.
// Reads and writes are limited separately per client IP; export gets a
// tighter per-path limit.
type AccountModule struct {
	Handler *handlers.AccountHandler
	Redis   *redis.Client
	Limit   int
	Window  time.Duration
}

func NewAccountModule(h *handlers.AccountHandler, rdb *redis.Client, limit int, window time.Duration) *AccountModule {
	return &AccountModule{Handler: h, Redis: rdb, Limit: limit, Window: window}
}

func (m *AccountModule) Register(rg *gin.RouterGroup) {
	allow := middleware.AllowPrivateIP()
	exportLimit := m.Limit / 20
	if exportLimit < 1 {
		exportLimit = 1
	}
	exportLimiter := middleware.RateLimit(m.Redis, exportLimit, m.Window, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	users.Use(middleware.RateLimit(m.Redis, m.Limit, m.Window, middleware.KeyByIPAndMethod(), allow))
	{
		users.GET("", m.Handler.ListUsers)
		users.POST("", m.Handler.CreateUser)
		users.GET("/search", m.Handler.Search)
		users.POST("/export", exportLimiter, m.Handler.Export)
		users.GET("/:id", m.Handler.GetUser)
		users.PUT("/:id", m.Handler.UpdateUser)
		users.PUT("/:id/password", m.Handler.ChangePassword)
		users.DELETE("/:id", m.Handler.DeleteUser)
	}
}
