package jwt

import (
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/golang-jwt/jwt/v5"
)

type AccessClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// RefreshClaims carry no identity: the refresh registry binds a refresh
// token to its owner.
type RefreshClaims struct {
	jwt.RegisteredClaims
	Time string `json:"time"`
}

type JWTUtil interface {
	IssueAccess(user model.User) (token string, exp time.Time, err error)
	IssueRefresh() (token string, exp time.Time, err error)

	// DecodeAccessToken checks signature, algorithm, issuer and audience but
	// not the validity window.
	DecodeAccessToken(token string) (AccessClaims, error)
	ValidateAccessToken(token string) (AccessClaims, error)
	ValidateRefreshToken(token string) (RefreshClaims, error)

	RefreshTTL() time.Duration
}
