package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/oksasatya/authmify/internal/application"
	"github.com/oksasatya/authmify/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	// CtxUserIDKey mirrors the identity id for handlers that only need the id.
	CtxUserIDKey = "userID"
)

// Verifier turns a presented credential into an identity.
type Verifier interface {
	Verify(ctx context.Context, c application.Credential) (*application.Identity, error)
}

// Extractor pulls a credential out of the request; ok=false means none was presented.
type Extractor func(c *gin.Context) (application.Credential, bool)

// Guard verifies the extracted credential and attaches the identity, or aborts with 401.
func Guard(v Verifier, extract Extractor) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, ok := extract(c)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, application.ErrInvalidCredentials.Error(), nil)
			return
		}
		id, err := v.Verify(c.Request.Context(), cred)
		if err != nil || id.Empty() {
			status := http.StatusUnauthorized
			msg := application.ErrInvalidCredentials.Error()
			if err != nil && !isUnauthorized(err) {
				status, msg = http.StatusInternalServerError, "internal server error"
			}
			response.Fail(c, status, msg, nil)
			return
		}
		c.Set(CtxIdentityKey, id)
		c.Set(CtxUserIDKey, id.ID)
		c.Next()
	}
}

// SessionGuard admits requests carrying a valid access token.
func SessionGuard(v Verifier) gin.HandlerFunc {
	return Guard(v, BearerToken)
}

// BiometricGuard admits requests whose JSON body carries a bound biometric_key.
func BiometricGuard(v Verifier) gin.HandlerFunc {
	return Guard(v, BiometricKeyFromBody)
}

// BearerToken reads "Authorization: Bearer <token>", then the access_token cookie.
func BearerToken(c *gin.Context) (application.Credential, bool) {
	if h := c.GetHeader("Authorization"); h != "" {
		scheme, tok, found := strings.Cut(h, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			return application.Credential{}, false
		}
		return application.BearerCredential(strings.TrimSpace(tok)), true
	}
	if tok, err := c.Cookie("access_token"); err == nil && tok != "" {
		return application.BearerCredential(tok), true
	}
	return application.Credential{}, false
}

type biometricBody struct {
	BiometricKey string `json:"biometric_key"`
}

// BiometricKeyFromBody binds with ShouldBindBodyWith so handlers can bind the body again.
func BiometricKeyFromBody(c *gin.Context) (application.Credential, bool) {
	var body biometricBody
	if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil || body.BiometricKey == "" {
		return application.Credential{}, false
	}
	return application.BiometricCredential(body.BiometricKey), true
}

// IdentityFrom returns the identity attached by a guard, or nil.
func IdentityFrom(c *gin.Context) *application.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*application.Identity)
	return id
}

func isUnauthorized(err error) bool {
	return errors.Is(err, application.ErrUnauthorized)
}
