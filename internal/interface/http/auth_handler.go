package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/authmify/internal/application"
	"github.com/oksasatya/authmify/internal/interface/middleware"
	"github.com/oksasatya/authmify/pkg/helpers"
	"github.com/oksasatya/authmify/pkg/response"
	"github.com/oksasatya/authmify/pkg/validation"
)

type AuthHandler struct {
	Service *application.AuthService
	Logger  *logrus.Logger

	// Cookies, when set, also delivers issued tokens as an access_token cookie.
	Cookies  *helpers.CookieManager
	TokenTTL time.Duration
}

func NewAuthHandler(service *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Service: service, Logger: logger}
}

// WithCookies enables the access_token cookie for tokens valid for ttl.
func (h *AuthHandler) WithCookies(cm *helpers.CookieManager, ttl time.Duration) *AuthHandler {
	h.Cookies, h.TokenTTL = cm, ttl
	return h
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,maxbytes=72"`
}

type biometricRequest struct {
	BiometricKey string `json:"biometric_key" binding:"required,biometric"`
}

type profileResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	BiometricEnabled bool      `json:"biometric_enabled"`
	CreatedAt        time.Time `json:"created_at"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Service.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issued(c, http.StatusCreated, res, "registered")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issued(c, http.StatusOK, res, "logged in")
}

// BiometricLogin POST /api/auth/biometric/login (BiometricGuard)
func (h *AuthHandler) BiometricLogin(c *gin.Context) {
	var req biometricRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	res, err := h.Service.BiometricLogin(c.Request.Context(), req.BiometricKey)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.issued(c, http.StatusOK, res, "logged in")
}

// SetupBiometric POST /api/auth/biometric/setup (SessionGuard)
func (h *AuthHandler) SetupBiometric(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if id.Empty() {
		h.fail(c, application.ErrInvalidSession)
		return
	}
	var req biometricRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Service.SetupBiometricKey(c.Request.Context(), id.ID, req.BiometricKey); err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, true, "biometric key set")
}

// Me GET /api/auth/me (SessionGuard)
func (h *AuthHandler) Me(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if id.Empty() {
		h.fail(c, application.ErrInvalidSession)
		return
	}
	u, err := h.Service.Profile(c.Request.Context(), id.ID)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.OK(c, http.StatusOK, profileResponse{
		ID:               u.ID,
		Email:            u.Email,
		BiometricEnabled: u.HasBiometricKey(),
		CreatedAt:        u.CreatedAt,
	}, "ok")
}

func (h *AuthHandler) issued(c *gin.Context, status int, res *application.AuthResult, msg string) {
	if h.Cookies != nil {
		h.Cookies.SetAccess(c, res.AccessToken, time.Now().Add(h.TokenTTL))
	}
	response.OK(c, status, res, msg)
}

// fail maps service errors to a status; internal causes were already logged by the service.
func (h *AuthHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrUnauthorized):
		response.Fail(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, application.ErrConflict):
		response.Fail(c, http.StatusConflict, err.Error(), nil)
	case errors.Is(err, application.ErrValidation):
		response.Fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Fail(c, http.StatusNotFound, err.Error(), nil)
	default:
		if !errors.Is(err, application.ErrInternal) && h.Logger != nil {
			h.Logger.WithError(err).Error("unmapped service error")
		}
		response.Fail(c, http.StatusInternalServerError, "internal server error", nil)
	}
}
