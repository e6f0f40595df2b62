package handler

import (
	"complaintdesk/backend/internal/api/middleware"
	"complaintdesk/backend/internal/api/response"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) ListComplaints(c *gin.Context) {
	filter := models.ComplaintFilter{
		Status:     models.Status(c.Query("status")),
		Priority:   models.Priority(c.Query("priority")),
		Category:   models.Category(c.Query("category")),
		Department: c.Query("department"),
		Search:     c.Query("search"),
		SortBy:     c.Query("sortBy"),
		SortDesc:   sortDesc(c),
		Page:       queryInt(c, "page"),
		Limit:      queryInt(c, "limit"),
	}
	complaints, page, err := h.Complaints.List(c.Request.Context(), middleware.Actor(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, complaints, page)
}

func (h *Handler) CreateComplaint(c *gin.Context) {
	var in complaint.CreateInput
	if !bind(c, &in) {
		return
	}
	created, err := h.Complaints.Create(c.Request.Context(), middleware.Actor(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created, "Complaint created successfully")
}

func (h *Handler) GetComplaint(c *gin.Context) {
	found, err := h.Complaints.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, found, "")
}

func (h *Handler) UpdateComplaint(c *gin.Context) {
	var in complaint.UpdateInput
	if !bind(c, &in) {
		return
	}
	updated, err := h.Complaints.Update(c.Request.Context(), middleware.Actor(c), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated, "Complaint updated successfully")
}

func (h *Handler) UpdateComplaintStatus(c *gin.Context) {
	var in complaint.StatusInput
	if !bind(c, &in) {
		return
	}
	updated, err := h.Complaints.UpdateStatus(c.Request.Context(), middleware.Actor(c), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated, "Complaint status updated successfully")
}

func (h *Handler) DeleteComplaint(c *gin.Context) {
	if err := h.Complaints.Delete(c.Request.Context(), middleware.Actor(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, nil, "Complaint deleted successfully")
}

func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if !bind(c, &req) {
		return
	}
	updated, err := h.Complaints.AddComment(c.Request.Context(), middleware.Actor(c), c.Param("id"), req.Comment)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, updated, "Comment added successfully")
}

func (h *Handler) UrgentComplaints(c *gin.Context) {
	urgent, err := h.Complaints.Urgent(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, urgent, "")
}

func (h *Handler) ComplaintStats(c *gin.Context) {
	stats, err := h.Complaints.Stats(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, stats, "")
}

func (h *Handler) AutoEscalate(c *gin.Context) {
	result, err := h.Complaints.AutoEscalate(c.Request.Context(), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result, "Auto-escalation completed")
}

func (h *Handler) ComplaintHistory(c *gin.Context) {
	events, err := h.Complaints.History(c.Request.Context(), middleware.Actor(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, events, "")
}
