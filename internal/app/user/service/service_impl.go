package service

import (
	"context"
	"strings"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/password"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	repo "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/repo"
	"github.com/google/uuid"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type Service interface {
	Profile(ctx context.Context, userID uuid.UUID) (model.PublicUser, error)
	ByID(ctx context.Context, rawID string) (model.PublicUser, error)
	List(ctx context.Context, page, size int) ([]model.PublicUser, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, in model.UpdateProfileInput) (model.PublicUser, error)
}

type userService struct {
	userRepo repo.UserRepo
	store    repo.SessionStore
	hasher   PasswordHasher
	// refreshTTL is applied to a refresh slot that moves with an e-mail change.
	refreshTTL time.Duration
	now        func() time.Time
}

func New(ur repo.UserRepo, st repo.SessionStore, h PasswordHasher, refreshTTL time.Duration) Service {
	return &userService{userRepo: ur, store: st, hasher: h, refreshTTL: refreshTTL, now: time.Now}
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (model.PublicUser, error) {
	user, err := s.get(ctx, userID, "UserService.Profile")
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

func (s *userService) ByID(ctx context.Context, rawID string) (model.PublicUser, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return model.PublicUser{}, customErrors.ErrInvalidUserID.At("UserService.ByID")
	}
	user, err := s.get(ctx, id, "UserService.ByID")
	if err != nil {
		return model.PublicUser{}, err
	}
	return user.Public(), nil
}

// List returns one page of users. Zero page or size fall back to the
// defaults; a page past the end is an error rather than an empty list.
func (s *userService) List(ctx context.Context, page, size int) ([]model.PublicUser, error) {
	if page == 0 {
		page = DefaultPage
	}
	if size == 0 {
		size = DefaultSize
	}
	if page < 0 || size < 0 {
		return nil, customErrors.NewInvalidArgument("page and size must be positive")
	}
	if size > MaxSize {
		size = MaxSize
	}

	users, err := s.userRepo.ListUsers(ctx, (page-1)*size, size)
	if err != nil {
		return nil, customErrors.WrapInternal(err, "UserService.List")
	}
	if len(users) == 0 {
		return nil, customErrors.ErrEmptyPage.At("UserService.List")
	}

	out := make([]model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *userService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	in model.UpdateProfileInput,
) (model.PublicUser, error) {
	ctx = context.WithoutCancel(ctx)

	if in.Empty() {
		return model.PublicUser{}, customErrors.ErrEmptyUpdate.At("UserService.UpdateProfile")
	}

	user, err := s.get(ctx, userID, "UserService.UpdateProfile")
	if err != nil {
		return model.PublicUser{}, err
	}
	oldEmail := user.Email

	if in.Name != "" {
		user.Name = strings.TrimSpace(in.Name)
	}
	if in.Company != "" {
		user.Company = in.Company
	}
	if in.Email != "" && in.Email != user.Email {
		_, err := s.userRepo.GetUserByEmail(ctx, in.Email)
		switch {
		case err == nil:
			return model.PublicUser{}, customErrors.ErrUserAlreadyExists.At("UserService.UpdateProfile")
		case !customErrors.IsNotFound(err):
			return model.PublicUser{}, customErrors.WrapInternal(err, "UserService.UpdateProfile")
		}
		user.Email = in.Email
	}
	if in.Password != "" {
		if !password.Strong(in.Password) {
			return model.PublicUser{}, customErrors.ErrWeakPassword.At("UserService.UpdateProfile")
		}
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return model.PublicUser{}, customErrors.WrapInternal(err, "UserService.UpdateProfile")
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		if customErrors.IsAlreadyExists(err) {
			return model.PublicUser{}, customErrors.ErrUserAlreadyExists.At("UserService.UpdateProfile")
		}
		return model.PublicUser{}, customErrors.WrapInternal(err, "UserService.UpdateProfile")
	}

	if user.Email != oldEmail {
		if err := s.moveRefreshSlot(ctx, oldEmail, user.Email); err != nil {
			return model.PublicUser{}, customErrors.WrapInternal(err, "UserService.UpdateProfile")
		}
	}
	return user.Public(), nil
}

// moveRefreshSlot keeps the live session bound to the user after an e-mail
// change. The token's own expiry still bounds the session.
func (s *userService) moveRefreshSlot(ctx context.Context, from, to string) error {
	token, found, err := s.store.Get(ctx, repo.RefreshKey(from))
	if err != nil || !found {
		return err
	}
	if err := s.store.Set(ctx, repo.RefreshKey(to), token, s.refreshTTL); err != nil {
		return err
	}
	return s.store.Delete(ctx, repo.RefreshKey(from))
}

func (s *userService) get(ctx context.Context, id uuid.UUID, at string) (model.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	switch {
	case customErrors.IsNotFound(err):
		return model.User{}, customErrors.ErrRecordNotFound.At(at)
	case err != nil:
		return model.User{}, customErrors.WrapInternal(err, at)
	}
	return user, nil
}
