package handler

import (
	"net/http"

	"complaintdesk/backend/internal/api/middleware"
	"complaintdesk/backend/internal/livefeed"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// The handshake is authenticated by token, so the origin is not checked.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamLogs upgrades to a WebSocket that receives every new audit entry.
func (h *Handler) StreamLogs(c *gin.Context) {
	actor := middleware.Actor(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.Logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := livefeed.NewWebSocketClient(h.Hub, conn, actor.ID)
	if !h.Hub.Register(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		conn.Close()
		return
	}
	client.Run()
}
