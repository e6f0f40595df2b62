package handler

import (
	"complaintdesk/backend/internal/api/middleware"
	"complaintdesk/backend/internal/api/response"
	"complaintdesk/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if !bind(c, &in) {
		return
	}
	session, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session, "User registered successfully")
}

func (h *Handler) Login(c *gin.Context) {
	var in auth.LoginInput
	if !bind(c, &in) {
		return
	}
	session, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, session, "Login successful")
}

func (h *Handler) Me(c *gin.Context) {
	me, err := h.Auth.Me(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, me, "")
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var in auth.ProfileInput
	if !bind(c, &in) {
		return
	}
	me, err := h.Auth.UpdateProfile(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, me, "Profile updated successfully")
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var in auth.PasswordInput
	if !bind(c, &in) {
		return
	}
	if err := h.Auth.ChangePassword(c.Request.Context(), middleware.Actor(c), in); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "Password changed successfully")
}
