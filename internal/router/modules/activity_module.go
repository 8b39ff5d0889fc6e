package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/psims/scholar-portal/internal/container"
	handlers "github.com/psims/scholar-portal/internal/interface/http"
	"github.com/psims/scholar-portal/internal/interface/middleware"
	"github.com/psims/scholar-portal/pkg/helpers"
)

// ActivityModule wires program submissions and event photo uploads.
// Protected: GET/POST /api/activities, GET /api/events,
// GET /api/events/:id, POST /api/events/:id/upload

type ActivityModule struct {
	Handler *handlers.ActivityHandler
	JWT     *helpers.JWTManager
}

func NewActivityModule(h *handlers.ActivityHandler, jwt *helpers.JWTManager) *ActivityModule {
	return &ActivityModule{Handler: h, JWT: jwt}
}

func (m *ActivityModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	// Uploads carry multipart bodies, keep the per-scholar limit tighter
	uploadLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByScholarID(), nil)
	{
		auth.GET("/activities", m.Handler.ListPrograms)
		auth.POST("/activities", uploadLimiter, m.Handler.SubmitProgram)
		auth.GET("/events", m.Handler.ListEvents)
		auth.GET("/events/:id", m.Handler.GetEvent)
		auth.POST("/events/:id/upload", uploadLimiter, m.Handler.UploadEventPhoto)
	}
}
