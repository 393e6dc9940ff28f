package http

import (
	"fitquest.app/backend/internal/modules/user/dto"
	userService "fitquest.app/backend/internal/modules/user/service"
	"fitquest.app/backend/pkg/apperror"
	"fitquest.app/backend/pkg/response"
	"fitquest.app/backend/pkg/validator"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	service userService.AuthService
}

func NewAuthHandler(service userService.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input dto.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, apperror.New(0, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	resp, err := h.service.Register(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input dto.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, apperror.New(0, validator.FormatValidationError(err), apperror.ErrBadRequest))
		return
	}

	resp, err := h.service.Login(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, resp)
}
