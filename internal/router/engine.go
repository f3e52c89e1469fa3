package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/authmify/internal/container"
	"github.com/oksasatya/authmify/internal/interface/middleware"
	"github.com/oksasatya/authmify/pkg/validation"
)

// NewEngine builds the gin engine with global middleware and every module
// wired from the container. The container must be populated first.
func NewEngine() *gin.Engine {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	validation.Init()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	// CORS
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
			ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Registry: auto-register modules using container
	reg := NewRegistry(r)
	if cfg.HTTPLogEnabled && logger != nil {
		reg.Use(middleware.AccessLog(logger))
	}
	InitModules(reg)
	reg.RegisterAll()
	return r
}
