package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/authmify/internal/interface/http"
	"github.com/oksasatya/authmify/internal/interface/middleware"
)

type AuthModule struct {
	Handler  *handlers.AuthHandler
	Verifier middleware.Verifier
}

func NewAuthModule(h *handlers.AuthHandler, v middleware.Verifier) *AuthModule {
	return &AuthModule{Handler: h, Verifier: v}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/biometric/login", middleware.BiometricGuard(m.Verifier), m.Handler.BiometricLogin)

	session := rg.Group("/auth")
	session.Use(middleware.SessionGuard(m.Verifier))
	{
		session.POST("/biometric/setup", m.Handler.SetupBiometric)
		session.GET("/me", m.Handler.Me)
	}
}
