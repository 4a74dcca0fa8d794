package http

import (
	"net/http"
	"time"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/middleware"
	authsvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/auth/service"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc authsvc.Service
	v   *dto.Validator
}

func NewAuthHandler(svc authsvc.Service, v *dto.Validator) *AuthHandler {
	return &AuthHandler{svc: svc, v: v}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var body dto.SignUpDTO
	if !bindJSON(c, h.v, &body) {
		return
	}

	pub, err := h.svc.SignUp(c.Request.Context(), model.SignUpInput{
		Name:                 body.Name,
		Email:                body.Email,
		Password:             body.Password,
		PasswordConfirmation: body.PasswordConfirmation,
		Company:              body.Company,
		Role:                 model.Role(body.Role),
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, pub)
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var body dto.SignInDTO
	if !bindJSON(c, h.v, &body) {
		return
	}

	pair, err := h.svc.SignIn(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokensBody(pair))
}

func (h *AuthHandler) SignOut(c *gin.Context) {
	access, refresh := tokens(c)
	if err := h.svc.SignOut(c.Request.Context(), access, refresh); err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

func (h *AuthHandler) SlideSession(c *gin.Context) {
	access, refresh := tokens(c)
	pair, err := h.svc.SlideSession(c.Request.Context(), access, refresh)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokensBody(pair))
}

func (h *AuthHandler) Delete(c *gin.Context) {
	access, refresh := tokens(c)
	pub, err := h.svc.DeleteAccount(c.Request.Context(), access, refresh)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pub)
}

func tokensBody(pair model.TokenPair) dto.TokensDTO {
	return dto.TokensDTO{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresIn:    int64(pair.AccessTTL / time.Second),
	}
}

func tokens(c *gin.Context) (access, refresh string) {
	return c.GetString(middleware.AccessTokenKey), c.GetString(middleware.RefreshTokenKey)
}

// bindJSON decodes and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, v *dto.Validator, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		middleware.Fail(c, customErrors.NewInvalidArgument("malformed body: "+err.Error()))
		return false
	}
	if fields := v.Validate(dst); fields != nil {
		middleware.Fail(c, customErrors.NewInvalidArgument("validation failed"), fields)
		return false
	}
	return true
}
