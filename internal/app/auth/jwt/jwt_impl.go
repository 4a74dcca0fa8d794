package jwt

import (
	"errors"
	"os"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	jwt2 "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/infra/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type JwtUtilImpl struct {
	method     jwt.SigningMethod
	signKey    any
	verifyKey  any
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	audience   string
	now        func() time.Time
}

// NewJWTUtil signs with RS256 when a key pair is configured and with HS256
// over JWTSecret otherwise.
func NewJWTUtil(cfg *config.Config) (*JwtUtilImpl, error) {
	j := &JwtUtilImpl{
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
		issuer:     cfg.Issuer,
		audience:   cfg.Audience,
		now:        time.Now,
	}

	if cfg.JWTPrivateKeyPath == "" {
		if cfg.JWTSecret == "" {
			return nil, customErrors.WrapInternal(errors.New("empty secret"), "NewJWTUtil")
		}
		j.method = jwt.SigningMethodHS256
		j.signKey = []byte(cfg.JWTSecret)
		j.verifyKey = []byte(cfg.JWTSecret)
		return j, nil
	}

	privPem, err := os.ReadFile(cfg.JWTPrivateKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse private key")
	}

	pubPem, err := os.ReadFile(cfg.JWTPublicKeyPath)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "read public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "parse public key")
	}

	j.method = jwt.SigningMethodRS256
	j.signKey = privKey
	j.verifyKey = pubKey
	return j, nil
}

func (j *JwtUtilImpl) RefreshTTL() time.Duration { return j.refreshTTL }

func (j *JwtUtilImpl) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	rc := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	if j.audience != "" {
		rc.Audience = jwt.ClaimStrings{j.audience}
	}
	return rc
}

func (j *JwtUtilImpl) IssueAccess(user model.User) (string, time.Time, error) {
	now := j.now()
	claims := jwt2.AccessClaims{
		RegisteredClaims: j.registered(user.ID.String(), now, j.accessTTL),
		Email:            user.Email,
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.signKey)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "TokenIssuer.IssueAccess")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) IssueRefresh() (string, time.Time, error) {
	now := j.now()
	claims := jwt2.RefreshClaims{
		RegisteredClaims: j.registered("", now, j.refreshTTL),
		Time:             now.UTC().Format(time.RFC3339Nano),
	}

	signed, err := jwt.NewWithClaims(j.method, claims).SignedString(j.signKey)
	if err != nil {
		return "", time.Time{}, customErrors.WrapInternal(err, "TokenIssuer.IssueRefresh")
	}
	return signed, claims.ExpiresAt.Time, nil
}

func (j *JwtUtilImpl) parserOptions(checkExpiry bool) []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithTimeFunc(j.now),
	}
	if !checkExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired())
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}
	if j.audience != "" {
		opts = append(opts, jwt.WithAudience(j.audience))
	}
	return opts
}

func (j *JwtUtilImpl) keyFunc(*jwt.Token) (interface{}, error) {
	return j.verifyKey, nil
}

func (j *JwtUtilImpl) parseAccess(raw string, checkExpiry bool) (jwt2.AccessClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt2.AccessClaims{}, j.keyFunc, j.parserOptions(checkExpiry)...)
	if err != nil || !token.Valid {
		return jwt2.AccessClaims{}, customErrors.ErrInvalidAccessToken
	}

	claims, ok := token.Claims.(*jwt2.AccessClaims)
	if !ok {
		return jwt2.AccessClaims{}, customErrors.WrapInternal(
			errors.New("claims not AccessClaims"), "TokenIssuer.parseAccess",
		)
	}

	// WithoutClaimsValidation skips issuer and audience too.
	if !checkExpiry && !j.matchesIssuerAudience(claims.RegisteredClaims) {
		return jwt2.AccessClaims{}, customErrors.ErrInvalidAccessToken
	}

	if claims.Subject == "" || claims.Email == "" {
		return jwt2.AccessClaims{}, customErrors.ErrInvalidAccessToken
	}
	return *claims, nil
}

func (j *JwtUtilImpl) matchesIssuerAudience(rc jwt.RegisteredClaims) bool {
	if j.issuer != "" && rc.Issuer != j.issuer {
		return false
	}
	if j.audience != "" {
		for _, a := range rc.Audience {
			if a == j.audience {
				return true
			}
		}
		return false
	}
	return true
}

func (j *JwtUtilImpl) DecodeAccessToken(raw string) (jwt2.AccessClaims, error) {
	return j.parseAccess(raw, false)
}

func (j *JwtUtilImpl) ValidateAccessToken(raw string) (jwt2.AccessClaims, error) {
	return j.parseAccess(raw, true)
}

func (j *JwtUtilImpl) ValidateRefreshToken(raw string) (jwt2.RefreshClaims, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt2.RefreshClaims{}, j.keyFunc, j.parserOptions(true)...)
	if err != nil || !token.Valid {
		return jwt2.RefreshClaims{}, customErrors.ErrInvalidRefreshToken
	}

	claims, ok := token.Claims.(*jwt2.RefreshClaims)
	if !ok {
		return jwt2.RefreshClaims{}, customErrors.WrapInternal(
			errors.New("claims not RefreshClaims"), "TokenIssuer.ValidateRefreshToken")
	}

	// an access token must not pass as a refresh token
	if claims.Subject != "" || claims.Time == "" {
		return jwt2.RefreshClaims{}, customErrors.ErrInvalidRefreshToken
	}
	return *claims, nil
}
