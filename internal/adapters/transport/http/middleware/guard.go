package middleware

import (
	"context"
	"slices"
	"strings"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClaimsKey       = "auth.claims"
	AccessTokenKey  = "auth.access"
	RefreshTokenKey = "auth.refresh"
)

// Policy is the per-route access rule.
type Policy struct {
	Auth bool
	// AllowExpired accepts an access token past its expiry. Signature,
	// issuer, audience and the blacklist are still checked.
	AllowExpired bool
	Roles        []model.Role
}

type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string, allowExpired bool) (jwt.AccessClaims, error)
	CurrentRole(ctx context.Context, userID uuid.UUID) (model.Role, error)
}

func BearerToken(c *gin.Context) string {
	typ, token, ok := strings.Cut(c.GetHeader("Authorization"), " ")
	if !ok || !strings.EqualFold(typ, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func Guard(auth Authenticator, p Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !p.Auth {
			c.Next()
			return
		}

		access := BearerToken(c)
		if access == "" {
			Fail(c, customErrors.ErrInvalidAccessToken.At("AuthGuard"))
			return
		}
		refresh := c.GetHeader(RefreshHeader)
		if refresh == "" {
			Fail(c, customErrors.ErrInvalidRefreshToken.At("AuthGuard"))
			return
		}

		claims, err := auth.Authenticate(c.Request.Context(), access, p.AllowExpired)
		if err != nil {
			Fail(c, err)
			return
		}

		if len(p.Roles) > 0 {
			uid, err := uuid.Parse(claims.Subject)
			if err != nil {
				Fail(c, customErrors.ErrInvalidAccessToken.At("RolesGuard"))
				return
			}
			role, err := auth.CurrentRole(c.Request.Context(), uid)
			if err != nil {
				Fail(c, err)
				return
			}
			if !slices.Contains(p.Roles, role) {
				Fail(c, customErrors.ErrInsufficientRole.At("RolesGuard"))
				return
			}
		}

		c.Set(ClaimsKey, claims)
		c.Set(AccessTokenKey, access)
		c.Set(RefreshTokenKey, refresh)
		c.Next()
	}
}

// Claims returns the claims stored by Guard.
func Claims(c *gin.Context) (jwt.AccessClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return jwt.AccessClaims{}, false
	}
	claims, ok := v.(jwt.AccessClaims)
	return claims, ok
}
