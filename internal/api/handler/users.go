package handler

import (
	"strconv"

	"complaintdesk/backend/internal/api/middleware"
	"complaintdesk/backend/internal/api/response"
	"complaintdesk/backend/internal/models"
	"complaintdesk/backend/internal/user"

	"github.com/gin-gonic/gin"
)

type passwordRequest struct {
	Password string `json:"password"`
}

func (h *Handler) ListUsers(c *gin.Context) {
	filter := models.UserFilter{
		Role:       models.Role(c.Query("role")),
		Department: c.Query("department"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sortBy"),
		SortDesc:   sortDesc(c),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	}
	if raw := c.Query("isActive"); raw != "" {
		if active, err := strconv.ParseBool(raw); err == nil {
			filter.IsActive = &active
		}
	}
	users, page, err := h.Users.List(c.Request.Context(), middleware.Actor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, users, page)
}

func (h *Handler) GetUser(c *gin.Context) {
	u, err := h.Users.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u, "")
}

func (h *Handler) CreateUser(c *gin.Context) {
	var in user.CreateInput
	if !bind(c, &in) {
		return
	}
	u, err := h.Users.Create(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, u, "User created successfully")
}

func (h *Handler) UpdateUser(c *gin.Context) {
	var in user.UpdateInput
	if !bind(c, &in) {
		return
	}
	u, err := h.Users.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, u, "User updated successfully")
}

func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "User deleted successfully")
}

func (h *Handler) UserStats(c *gin.Context) {
	stats, err := h.Users.Stats(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats, "")
}

func (h *Handler) SetUserPassword(c *gin.Context) {
	var req passwordRequest
	if !bind(c, &req) {
		return
	}
	if err := h.Users.SetPassword(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Password); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "Password updated successfully")
}
