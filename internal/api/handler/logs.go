package handler

import (
	"time"

	"complaintdesk/backend/internal/api/middleware"
	"complaintdesk/backend/internal/api/response"
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDate accepts RFC 3339 or a bare date. A bare end date covers the whole day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func logFilter(c *gin.Context) (models.AuditLogFilter, error) {
	filter := models.AuditLogFilter{
		UserID:       c.Query("userId"),
		Action:       models.Action(c.Query("action")),
		Level:        models.Level(c.Query("level")),
		ResourceType: models.ResourceType(c.Query("resourceType")),
		ResourceID:   c.Query("resourceId"),
		Page:         queryInt(c, "page"),
		Limit:        queryInt(c, "limit"),
	}

	var fe apperr.FieldErrors
	from, err := parseDate(c.Query("startDate"), false)
	if err != nil {
		fe.Add("startDate", "startDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	to, err := parseDate(c.Query("endDate"), true)
	if err != nil {
		fe.Add("endDate", "endDate must be a date (YYYY-MM-DD) or RFC 3339 timestamp")
	}
	if from != nil && to != nil && to.Before(*from) {
		fe.Add("endDate", "endDate must not be before startDate")
	}
	filter.From, filter.To = from, to
	return filter, fe.Err()
}

func (h *Handler) ListLogs(c *gin.Context) {
	filter, err := logFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, page, err := h.Logs.List(c.Request.Context(), middleware.Actor(c), filter, language(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, logs, page)
}

func (h *Handler) GetLog(c *gin.Context) {
	entry, err := h.Logs.Get(c.Request.Context(), middleware.Actor(c), c.Param("id"), language(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry, "")
}
