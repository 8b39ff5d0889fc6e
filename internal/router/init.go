package router

import (
	"github.com/psims/scholar-portal/internal/application"
	"github.com/psims/scholar-portal/internal/container"
	pginfra "github.com/psims/scholar-portal/internal/infrastructure/postgres"
	handlers "github.com/psims/scholar-portal/internal/interface/http"
	"github.com/psims/scholar-portal/internal/router/modules"
)

func buildScholarService() *application.ScholarService {
	cfg := container.GetConfig()
	repo := pginfra.NewScholarRepository(container.GetPGPool())

	// Keep the enqueuer interface nil when no broker is connected so the
	// service can tell "no transport" apart from a typed nil pointer.
	var mail application.EmailEnqueuer
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	return application.NewScholarService(
		repo,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		mail,
		cfg.MailSendEnabled,
		cfg.ResetPasswordURL,
		cfg.ResetTokenTTL,
	)
}

func buildActivityService() *application.ActivityService {
	repo := pginfra.NewActivityRepository(container.GetPGPool())
	return application.NewActivityService(repo, container.GetLogger())
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	scholarSvc := buildScholarService()
	activitySvc := buildActivityService()

	authHandler := handlers.NewAuthHandler(scholarSvc, container.GetLogger(), cfg.CookieDomain, cfg.CookieSecure)
	scholarHandler := handlers.NewScholarHandler(scholarSvc, container.GetLogger())
	activityHandler := handlers.NewActivityHandler(activitySvc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, container.GetJWT()))
	r.Add(modules.NewScholarModule(scholarHandler, container.GetJWT()))
	r.Add(modules.NewActivityModule(activityHandler, container.GetJWT()))
}
