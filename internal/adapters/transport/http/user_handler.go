package http

import (
	"net/http"

	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/dto"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/adapters/transport/http/middleware"
	usersvc "github.com/Miraines/MoonyAndStarry/account-service/internal/app/user/service"
	customErrors "github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/account-service/internal/domain/auth/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type UserHandler struct {
	svc usersvc.Service
	v   *dto.Validator
}

func NewUserHandler(svc usersvc.Service, v *dto.Validator) *UserHandler {
	return &UserHandler{svc: svc, v: v}
}

func (h *UserHandler) Profile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	pub, err := h.svc.Profile(c.Request.Context(), uid)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pub)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}
	var body dto.UpdateProfileDTO
	if !bindJSON(c, h.v, &body) {
		return
	}

	pub, err := h.svc.UpdateProfile(c.Request.Context(), uid, model.UpdateProfileInput{
		Name:     body.Name,
		Email:    body.Email,
		Password: body.Password,
		Company:  body.Company,
	})
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pub)
}

func (h *UserHandler) ByID(c *gin.Context) {
	var q dto.UserIDDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, customErrors.ErrInvalidUserID.At("UserHandler.ByID"))
		return
	}
	if fields := h.v.Validate(q); fields != nil {
		middleware.Fail(c, customErrors.ErrInvalidUserID.At("UserHandler.ByID"), fields)
		return
	}

	pub, err := h.svc.ByID(c.Request.Context(), q.ID)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pub)
}

func (h *UserHandler) List(c *gin.Context) {
	var q dto.PageDTO
	if err := c.ShouldBindQuery(&q); err != nil {
		middleware.Fail(c, customErrors.NewInvalidArgument("malformed query: "+err.Error()))
		return
	}
	if fields := h.v.Validate(q); fields != nil {
		middleware.Fail(c, customErrors.NewInvalidArgument("validation failed"), fields)
		return
	}

	users, err := h.svc.List(c.Request.Context(), q.Page, q.Size)
	if err != nil {
		middleware.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := middleware.Claims(c)
	if ok {
		if uid, err := uuid.Parse(claims.Subject); err == nil {
			return uid, true
		}
	}
	middleware.Fail(c, customErrors.ErrInvalidAccessToken.At("UserHandler"))
	return uuid.Nil, false
}
