package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"complaintdesk/backend/internal/api/middleware"
	"complaintdesk/backend/internal/api/response"
	"complaintdesk/backend/internal/apperr"
	"complaintdesk/backend/internal/audit"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/livefeed"
	"complaintdesk/backend/internal/localization"
	"complaintdesk/backend/internal/metrics"
	"complaintdesk/backend/internal/user"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the services the HTTP layer delegates to. Access checks live in the services.
type Handler struct {
	Auth       *auth.Service
	Complaints *complaint.Service
	Users      *user.Service
	Logs       *audit.Query
	Hub        *livefeed.Hub
	DB         Pinger
	Logger     *logrus.Logger
}

// Routes mounts the API on r.
func (h *Handler) Routes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	secured := api.Group("")
	secured.Use(middleware.Authenticate(h.Auth))
	secured.GET("/auth/me", h.Me)
	secured.PUT("/auth/profile", h.UpdateProfile)
	secured.PUT("/auth/change-password", h.ChangePassword)

	complaints := secured.Group("/complaints")
	complaints.GET("", h.ListComplaints)
	complaints.POST("", h.CreateComplaint)
	complaints.GET("/urgent", h.UrgentComplaints)
	complaints.GET("/stats", h.ComplaintStats)
	complaints.POST("/auto-escalate", h.AutoEscalate)
	complaints.GET("/:id", h.GetComplaint)
	complaints.PUT("/:id", h.UpdateComplaint)
	complaints.DELETE("/:id", h.DeleteComplaint)
	complaints.PATCH("/:id/status", h.UpdateComplaintStatus)
	complaints.POST("/:id/comments", h.AddComment)
	complaints.GET("/:id/history", h.ComplaintHistory)

	users := secured.Group("/users")
	users.Use(middleware.RequireAdmin())
	users.GET("", h.ListUsers)
	users.POST("", h.CreateUser)
	users.GET("/stats", h.UserStats)
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
	users.POST("/:id/password", h.SetUserPassword)

	logs := secured.Group("/logs")
	logs.Use(middleware.RequireAdmin())
	logs.GET("", h.ListLogs)
	logs.GET("/stream", h.StreamLogs)
	logs.GET("/:id", h.GetLog)
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "ok", http.StatusOK
	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			h.Logger.WithError(err).Warn("health check failed")
			status, code = "unavailable", http.StatusServiceUnavailable
		}
	}
	c.JSON(code, response.Envelope{
		Success: code == http.StatusOK,
		Data:    gin.H{"status": status, "time": time.Now().UTC()},
	})
}

// bind decodes the JSON body. Field checks happen in the services so every failure is reported together.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error(c, apperr.Validation("Invalid request body"))
		return false
	}
	return true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func sortDesc(c *gin.Context) bool {
	return !strings.EqualFold(c.Query("sortOrder"), "asc")
}

// language picks the label language from ?lang= or Accept-Language.
func language(c *gin.Context) string {
	if lang := c.Query("lang"); lang != "" {
		return lang
	}
	header := c.GetHeader("Accept-Language")
	if len(header) >= 2 {
		return strings.ToLower(header[:2])
	}
	return localization.DefaultLanguage
}
