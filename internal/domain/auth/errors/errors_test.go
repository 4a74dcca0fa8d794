package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorHelpers(t *testing.T) {
	err := NewInvalidArgument("bad")
	require.True(t, IsInvalidArgument(err))

	wrapped := WrapInternal(err, "ctx")
	require.True(t, IsInternal(wrapped))
	require.Equal(t, "ctx", Location(wrapped))
}

func TestAt_KeepsIdentity(t *testing.T) {
	err := ErrRefreshTokenAlreadyExists.At("AuthService.SignIn")

	require.True(t, errors.Is(err, ErrRefreshTokenAlreadyExists))
	require.True(t, IsInvalidArgument(err))
	require.False(t, errors.Is(err, ErrUserAlreadyExists))
	require.Equal(t, "AuthService.SignIn", Location(err))
	require.Equal(t, "", Location(ErrRefreshTokenAlreadyExists))
}

func TestKinds(t *testing.T) {
	require.True(t, IsUnauthorized(ErrInvalidAccessToken.At("x")))
	require.True(t, IsForbidden(ErrInsufficientRole))
	require.True(t, IsNotFound(ErrRecordNotFound))
	require.True(t, IsAlreadyExists(ErrUserAlreadyExists.At("x")))
	require.False(t, IsInternal(ErrPasswordMismatch))
}

func TestLocation_ThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", WrapInternal(errors.New("boom"), "UserRepo.Create"))

	require.True(t, IsInternal(err))
	require.Equal(t, "UserRepo.Create", Location(err))
	require.Equal(t, "internal error: boom", Message(err))
}
