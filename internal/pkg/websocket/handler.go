package websocket

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AccessChecker reports whether a user may read a conversation. The general
// feed channel is readable by any authenticated user; other conversations
// require a participant row.
type AccessChecker interface {
	CanAccess(ctx context.Context, conversationID, userID int64) (bool, error)
}

// Handler for WebSocket connections
type Handler struct {
	hub    *Hub
	access AccessChecker
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, access AccessChecker, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:    hub,
		access: access,
		logger: logger,
	}
}

// HandleConnection upgrades the HTTP connection to a WebSocket subscribed to
// a single conversation's event stream.
func (h *Handler) HandleConnection(c *gin.Context) {
	conversationID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid conversation ID"})
		return
	}

	userIDValue, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context"})
		return
	}
	userID, ok := userIDValue.(int64)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return
	}

	allowed, err := h.access.CanAccess(c.Request.Context(), conversationID, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("conversationID", conversationID).
			Int64("userID", userID).
			Msg("Failed to check conversation access")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check conversation access"})
		return
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "User is not a participant in this conversation"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().
			Err(err).
			Int64("conversationID", conversationID).
			Int64("userID", userID).
			Msg("Failed to upgrade connection")
		return
	}

	client := &Client{
		hub:            h.hub,
		conn:           conn,
		send:           make(chan []byte, 256),
		userID:         userID,
		conversationID: conversationID,
		logger:         h.logger,
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
