package service

import (
	"context"
	"strings"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/password"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/jwt"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/mail"
	"github.com/google/uuid"
)

// minBlacklistTTL keeps a blacklist entry alive for tokens that are already
// past their expiry when revoked.
const minBlacklistTTL = time.Minute

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) (bool, error)
}

type Service interface {
	SignUp(ctx context.Context, in model.SignUpInput) (model.PublicUser, error)
	CreateAdmin(ctx context.Context, in model.SignUpInput) (model.PublicUser, error)
	SignIn(ctx context.Context, email, password string) (model.TokenPair, error)
	SignOut(ctx context.Context, accessToken, refreshToken string) error
	SlideSession(ctx context.Context, accessToken, refreshToken string) (model.TokenPair, error)
	DeleteAccount(ctx context.Context, accessToken, refreshToken string) (model.PublicUser, error)

	ValidateCredentials(ctx context.Context, email, password string) (model.User, error)
	IsBlacklisted(ctx context.Context, accessToken string) (bool, error)
	Authenticate(ctx context.Context, accessToken string, allowExpired bool) (jwt.AccessClaims, error)
	CurrentRole(ctx context.Context, userID uuid.UUID) (model.Role, error)
}

type authService struct {
	userRepo repo.UserRepo
	store    repo.SessionStore
	jwtUtil  jwt.JWTUtil
	hasher   PasswordHasher
	notifier mail.Notifier
	now      func() time.Time
}

func New(
	ur repo.UserRepo,
	st repo.SessionStore,
	jm jwt.JWTUtil,
	h PasswordHasher,
	n mail.Notifier,
) Service {
	return &authService{
		userRepo: ur, store: st, jwtUtil: jm, hasher: h, notifier: n, now: time.Now,
	}
}

func (a *authService) ValidateCredentials(ctx context.Context, email, plain string) (model.User, error) {
	user, err := a.userRepo.GetUserByEmail(ctx, email)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrUserNotFound.At("AuthService.ValidateCredentials")
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, "AuthService.ValidateCredentials")
	}

	ok, err := a.hasher.Compare(plain, user.PasswordHash)
	if err != nil {
		return model.User{}, customErrors.WrapInternal(err, "AuthService.ValidateCredentials")
	}
	if !ok {
		return model.User{}, customErrors.ErrPasswordMismatch.At("AuthService.ValidateCredentials")
	}
	return user, nil
}

func (a *authService) SignUp(ctx context.Context, in model.SignUpInput) (model.PublicUser, error) {
	if in.Role == "" {
		in.Role = model.RoleUser
	}
	if !in.Role.Valid() || in.Role == model.RoleAdmin {
		return model.PublicUser{}, customErrors.ErrRoleNotAllowed.At("AuthService.SignUp")
	}
	return a.register(ctx, in, "AuthService.SignUp")
}

// CreateAdmin is the only way to obtain an ADMIN account.
func (a *authService) CreateAdmin(ctx context.Context, in model.SignUpInput) (model.PublicUser, error) {
	in.Role = model.RoleAdmin
	if in.PasswordConfirmation == "" {
		in.PasswordConfirmation = in.Password
	}
	return a.register(ctx, in, "AuthService.CreateAdmin")
}

func (a *authService) register(ctx context.Context, in model.SignUpInput, at string) (model.PublicUser, error) {
	ctx = context.WithoutCancel(ctx)

	in.Email = strings.TrimSpace(in.Email)
	_, err := a.userRepo.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return model.PublicUser{}, customErrors.ErrUserAlreadyExists.At(at)
	case !customErrors.IsNotFound(err):
		return model.PublicUser{}, customErrors.WrapInternal(err, at)
	}

	if in.Password != in.PasswordConfirmation {
		return model.PublicUser{}, customErrors.ErrPasswordConfirmation.At(at)
	}
	if !password.Strong(in.Password) {
		return model.PublicUser{}, customErrors.ErrWeakPassword.At(at)
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return model.PublicUser{}, customErrors.WrapInternal(err, at)
	}

	now := a.now().UTC()
	user := model.User{
		ID:           uuid.New(),
		Email:        in.Email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
		Company:      in.Company,
		Role:         in.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if user.ID, err = a.userRepo.CreateUser(ctx, user); err != nil {
		// lost a race against a concurrent sign-up with the same e-mail
		if customErrors.IsAlreadyExists(err) {
			return model.PublicUser{}, customErrors.ErrUserAlreadyExists.At(at)
		}
		return model.PublicUser{}, customErrors.WrapInternal(err, at)
	}

	a.notify(ctx, mail.TemplateWelcome, user)
	return user.Public(), nil
}

func (a *authService) SignIn(ctx context.Context, email, plain string) (model.TokenPair, error) {
	ctx = context.WithoutCancel(ctx)

	user, err := a.ValidateCredentials(ctx, strings.TrimSpace(email), plain)
	if err != nil {
		return model.TokenPair{}, err
	}

	pair, err := a.issuePair(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	ok, err := a.store.SetNX(ctx, repo.RefreshKey(user.Email), pair.RefreshToken, a.jwtUtil.RefreshTTL())
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "AuthService.SignIn")
	}
	if !ok {
		return model.TokenPair{}, customErrors.ErrRefreshTokenAlreadyExists.At("AuthService.SignIn")
	}
	return pair, nil
}

func (a *authService) SignOut(ctx context.Context, accessToken, refreshToken string) error {
	ctx = context.WithoutCancel(ctx)

	claims, err := a.Authenticate(ctx, accessToken, false)
	if err != nil {
		return err
	}
	if refreshToken == "" {
		return customErrors.ErrInvalidRefreshToken.At("AuthService.SignOut")
	}
	email, err := a.ownerEmail(ctx, claims)
	if err != nil {
		return err
	}
	return a.revoke(ctx, accessToken, claims, refreshToken, email, "AuthService.SignOut")
}

func (a *authService) SlideSession(ctx context.Context, accessToken, refreshToken string) (model.TokenPair, error) {
	ctx = context.WithoutCancel(ctx)

	// the refresh token is the freshness proof, the access token may be expired
	claims, err := a.Authenticate(ctx, accessToken, true)
	if err != nil {
		return model.TokenPair{}, err
	}
	if refreshToken == "" {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken.At("AuthService.SlideSession")
	}
	if _, err := a.jwtUtil.ValidateRefreshToken(refreshToken); err != nil {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken.At("AuthService.SlideSession")
	}

	user, err := a.userFromClaims(ctx, claims, "AuthService.SlideSession")
	if err != nil {
		return model.TokenPair{}, err
	}

	registered, found, err := a.store.Get(ctx, repo.RefreshKey(user.Email))
	if err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "AuthService.SlideSession")
	}
	if !found || registered != refreshToken {
		return model.TokenPair{}, customErrors.ErrInvalidRefreshToken.At("AuthService.SlideSession")
	}

	pair, err := a.issuePair(user)
	if err != nil {
		return model.TokenPair{}, err
	}

	if err := a.blacklist(ctx, accessToken, claims); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "AuthService.SlideSession")
	}
	if err := a.store.Set(ctx, repo.RefreshKey(user.Email), pair.RefreshToken, a.jwtUtil.RefreshTTL()); err != nil {
		return model.TokenPair{}, customErrors.WrapInternal(err, "AuthService.SlideSession")
	}
	return pair, nil
}

func (a *authService) DeleteAccount(ctx context.Context, accessToken, refreshToken string) (model.PublicUser, error) {
	ctx = context.WithoutCancel(ctx)

	claims, err := a.Authenticate(ctx, accessToken, false)
	if err != nil {
		return model.PublicUser{}, err
	}
	if refreshToken == "" {
		return model.PublicUser{}, customErrors.ErrInvalidRefreshToken.At("AuthService.DeleteAccount")
	}

	user, err := a.userFromClaims(ctx, claims, "AuthService.DeleteAccount")
	if err != nil {
		return model.PublicUser{}, err
	}
	if err := a.revoke(ctx, accessToken, claims, refreshToken, user.Email, "AuthService.DeleteAccount"); err != nil {
		return model.PublicUser{}, err
	}

	if err := a.userRepo.DeleteUser(ctx, user.ID); err != nil {
		return model.PublicUser{}, customErrors.WrapInternal(err, "AuthService.DeleteAccount")
	}

	a.notify(ctx, mail.TemplateGoodbye, user)
	return user.Public(), nil
}

func (a *authService) IsBlacklisted(ctx context.Context, accessToken string) (bool, error) {
	_, found, err := a.store.Get(ctx, repo.BlacklistKey(accessToken))
	if err != nil {
		return false, customErrors.WrapInternal(err, "AuthService.IsBlacklisted")
	}
	return found, nil
}

// Authenticate verifies an access token and rejects it when blacklisted.
// allowExpired skips the validity window check only.
func (a *authService) Authenticate(ctx context.Context, accessToken string, allowExpired bool) (jwt.AccessClaims, error) {
	if accessToken == "" {
		return jwt.AccessClaims{}, customErrors.ErrInvalidAccessToken.At("AuthService.Authenticate")
	}

	var (
		claims jwt.AccessClaims
		err    error
	)
	if allowExpired {
		claims, err = a.jwtUtil.DecodeAccessToken(accessToken)
	} else {
		claims, err = a.jwtUtil.ValidateAccessToken(accessToken)
	}
	if err != nil {
		if customErrors.IsInternal(err) {
			return jwt.AccessClaims{}, err
		}
		return jwt.AccessClaims{}, customErrors.ErrInvalidAccessToken.At("AuthService.Authenticate")
	}

	revoked, err := a.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return jwt.AccessClaims{}, err
	}
	if revoked {
		return jwt.AccessClaims{}, customErrors.ErrInvalidAccessToken.At("AuthService.Authenticate")
	}
	return claims, nil
}

func (a *authService) CurrentRole(ctx context.Context, userID uuid.UUID) (model.Role, error) {
	user, err := a.userRepo.GetUserByID(ctx, userID)
	switch {
	case customErrors.IsNotFound(err):
		return "", customErrors.ErrInvalidAccessToken.At("AuthService.CurrentRole")
	case err != nil:
		return "", customErrors.WrapInternal(err, "AuthService.CurrentRole")
	}
	return user.Role, nil
}

// revoke blacklists the access token and frees the refresh slot of email.
// A registered refresh token that differs from the presented one means the
// caller does not own the session.
func (a *authService) revoke(
	ctx context.Context,
	accessToken string,
	claims jwt.AccessClaims,
	refreshToken, email, at string,
) error {
	if _, err := a.jwtUtil.ValidateRefreshToken(refreshToken); err != nil {
		return customErrors.ErrInvalidRefreshToken.At(at)
	}

	key := repo.RefreshKey(email)
	registered, found, err := a.store.Get(ctx, key)
	if err != nil {
		return customErrors.WrapInternal(err, at)
	}
	if found && registered != refreshToken {
		return customErrors.ErrInvalidRefreshToken.At(at)
	}

	if err := a.blacklist(ctx, accessToken, claims); err != nil {
		return customErrors.WrapInternal(err, at)
	}
	if err := a.store.Delete(ctx, key); err != nil {
		return customErrors.WrapInternal(err, at)
	}
	return nil
}

func (a *authService) blacklist(ctx context.Context, accessToken string, claims jwt.AccessClaims) error {
	ttl := minBlacklistTTL
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Time.Sub(a.now()); left > ttl {
			ttl = left
		}
	}
	return a.store.Set(ctx, repo.BlacklistKey(accessToken), accessToken, ttl)
}

func (a *authService) userFromClaims(ctx context.Context, claims jwt.AccessClaims, at string) (model.User, error) {
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return model.User{}, customErrors.ErrInvalidAccessToken.At(at)
	}
	user, err := a.userRepo.GetUserByID(ctx, uid)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrInvalidAccessToken.At(at)
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, at)
	}
	return user, nil
}

// ownerEmail resolves the current e-mail of the token's subject. The claim
// is used when the account no longer exists.
func (a *authService) ownerEmail(ctx context.Context, claims jwt.AccessClaims) (string, error) {
	user, err := a.userFromClaims(ctx, claims, "AuthService.SignOut")
	if err == nil {
		return user.Email, nil
	}
	if customErrors.IsInternal(err) {
		return "", err
	}
	return claims.Email, nil
}

func (a *authService) issuePair(user model.User) (model.TokenPair, error) {
	at, atExp, err := a.jwtUtil.IssueAccess(user)
	if err != nil {
		return model.TokenPair{}, err
	}
	rt, _, err := a.jwtUtil.IssueRefresh()
	if err != nil {
		return model.TokenPair{}, err
	}

	return model.TokenPair{
		AccessToken:  at,
		RefreshToken: rt,
		AccessTTL:    atExp.Sub(a.now()),
		UserId:       user.ID,
	}, nil
}

func (a *authService) notify(ctx context.Context, tmpl mail.Template, user model.User) {
	if a.notifier == nil {
		return
	}
	a.notifier.Notify(ctx, tmpl, mail.Recipient{Email: user.Email, Name: user.Name})
}
