package router

import (
	"github.com/oksasatya/authmify/internal/application"
	"github.com/oksasatya/authmify/internal/container"
	"github.com/oksasatya/authmify/internal/infrastructure/redislock"
	handlers "github.com/oksasatya/authmify/internal/interface/http"
	"github.com/oksasatya/authmify/internal/router/modules"
	"github.com/oksasatya/authmify/pkg/helpers"
)

type AuthModuleDeps struct {
	Service *application.AuthService
	Handler *handlers.AuthHandler
}

func buildAuthDeps() AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	service := application.NewAuthService(
		container.GetUserRepo(),
		container.GetPasswordHasher(),
		container.GetJWT(),
		logger,
	)
	if rdb := container.GetRedis(); rdb != nil {
		service.Locker = redislock.New(rdb, cfg.LockTTL, cfg.LockWait)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		service.Events = pub
	}

	handler := handlers.NewAuthHandler(service, logger)
	if cfg.CookieEnabled {
		handler.WithCookies(helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure), container.GetJWT().TTL())
	}

	return AuthModuleDeps{Service: service, Handler: handler}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	authDeps := buildAuthDeps()
	r.Add(modules.NewAuthModule(authDeps.Handler, authDeps.Service))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
