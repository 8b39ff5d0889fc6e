package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psims/scholar-portal/internal/container"
	handlers "github.com/psims/scholar-portal/internal/interface/http"
	"github.com/psims/scholar-portal/internal/interface/middleware"
	"github.com/psims/scholar-portal/pkg/helpers"
)

// ScholarModule wires the authenticated scholar surface: profile, payroll
// overview and requests, and account settings.
// Protected: GET /api/profile, GET /api/payroll, POST /api/payroll/request,
// PUT /api/settings/contact, PUT /api/settings/password

type ScholarModule struct {
	Handler *handlers.ScholarHandler
	JWT     *helpers.JWTManager
}

func NewScholarModule(h *handlers.ScholarHandler, jwt *helpers.JWTManager) *ScholarModule {
	return &ScholarModule{Handler: h, JWT: jwt}
}

func (m *ScholarModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	// Apply a softer per-IP limiter to all protected routes. Clients on
	// private ranges (health probes, reverse proxies) skip the blanket IP
	// limit; the per-scholar limit still applies to them.
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByScholarID(), nil),
	)
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.GET("/payroll", m.Handler.GetPayroll)
		auth.POST("/payroll/request", m.Handler.RequestPayroll)
		auth.PUT("/settings/contact", m.Handler.UpdateContact)
		auth.PUT("/settings/password", m.Handler.ChangePassword)
	}
}
