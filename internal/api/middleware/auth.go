package middleware

import (
	"context"

	"complaintdesk/backend/internal/access"
	"complaintdesk/backend/internal/api/response"
	"complaintdesk/backend/internal/auth"
	"complaintdesk/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const actorKey = "actor"

// Authenticator resolves a raw bearer token to an active account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticate requires a valid bearer token and stores the caller on the context.
// Browsers cannot set headers on a WebSocket handshake, so upgrades may pass ?token= instead.
func Authenticate(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" && websocket.IsWebSocketUpgrade(c.Request) {
			if t := c.Query("token"); t != "" {
				header = "Bearer " + t
			}
		}

		token, err := auth.ExtractToken(header)
		if err != nil {
			response.Error(c, err)
			return
		}
		user, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Set(actorKey, user)
		c.Next()
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := access.RequireAdmin(Actor(c)); err != nil {
			response.Error(c, err)
			return
		}
		c.Next()
	}
}

// Actor returns the authenticated caller, or nil on public routes.
func Actor(c *gin.Context) *models.User {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
