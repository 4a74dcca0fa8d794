package middleware

import (
	"errors"
	"net/http"
	"testing"

	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/stretchr/testify/require"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{customErrors.ErrUserAlreadyExists.At("x"), http.StatusBadRequest},
		{customErrors.ErrRefreshTokenAlreadyExists, http.StatusBadRequest},
		{customErrors.ErrPasswordMismatch, http.StatusBadRequest},
		{customErrors.ErrInvalidAccessToken, http.StatusUnauthorized},
		{customErrors.ErrInsufficientRole, http.StatusForbidden},
		{customErrors.ErrRecordNotFound, http.StatusNotFound},
		{customErrors.WrapInternal(errors.New("x"), "y"), http.StatusInternalServerError},
		{errors.New("raw"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}
