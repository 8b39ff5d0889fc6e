package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psims/scholar-portal/internal/container"
	handlers "github.com/psims/scholar-portal/internal/interface/http"
	"github.com/psims/scholar-portal/internal/interface/middleware"
	"github.com/psims/scholar-portal/pkg/helpers"
)

// AuthModule wires the account lifecycle endpoints: activation via
// initialization code, login/refresh/logout and the password reset flow.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public endpoints with IP-based rate limits
	initializeLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	forgotLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	resetLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/initialize", initializeLimiter, m.Handler.Initialize)
	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/refresh", refreshLimiter, m.Handler.Refresh)
	rg.POST("/forgot-password", forgotLimiter, m.Handler.ForgotPassword)
	rg.GET("/reset-password/:token", resetLimiter, m.Handler.ResolveReset)
	rg.POST("/reset-password/:token", resetLimiter, m.Handler.CompleteReset)

	// Protected
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
	}
}
