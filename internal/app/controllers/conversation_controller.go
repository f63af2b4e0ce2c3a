package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/middleware"
)

// ConversationController handles conversation and membership operations
type ConversationController struct {
	conversationService services.ConversationService
}

// NewConversationController creates a new ConversationController
func NewConversationController(conversationService services.ConversationService) *ConversationController {
	return &ConversationController{conversationService: conversationService}
}

// ListConversations returns the caller's conversations with unread counts
func (c *ConversationController) ListConversations(ctx *gin.Context) {
	responses, err := c.conversationService.ListConversations(ctx, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, responses)
}

// GetConversation returns one conversation with its participants
func (c *ConversationController) GetConversation(ctx *gin.Context) {
	conversationID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	response, err := c.conversationService.GetConversation(ctx, conversationID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetOrCreateDirect resolves the direct conversation with another user
func (c *ConversationController) GetOrCreateDirect(ctx *gin.Context) {
	var req dto.DirectConversationRequest
	if !bindJSON(ctx, &req) {
		return
	}

	response, err := c.conversationService.GetOrCreateDirect(ctx, middleware.GetUserID(ctx), req.UserID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// CreateGroup creates a group conversation owned by the caller
func (c *ConversationController) CreateGroup(ctx *gin.Context) {
	var req dto.CreateGroupRequest
	if !bindJSON(ctx, &req) {
		return
	}

	response, err := c.conversationService.CreateGroup(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// AddParticipant adds a user to a group conversation
func (c *ConversationController) AddParticipant(ctx *gin.Context) {
	conversationID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.AddParticipantRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.conversationService.AddParticipant(ctx, conversationID, middleware.GetUserID(ctx), req.UserID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Participant added"})
}

// RemoveParticipant removes a user from a group conversation. Members leave
// with their own id; the owner may remove anyone.
func (c *ConversationController) RemoveParticipant(ctx *gin.Context) {
	conversationID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}
	userID, ok := parsePathID(ctx, "userId")
	if !ok {
		return
	}

	if err := c.conversationService.RemoveParticipant(ctx, conversationID, middleware.GetUserID(ctx), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Participant removed"})
}

// MarkRead advances the caller's read pointer in a conversation
func (c *ConversationController) MarkRead(ctx *gin.Context) {
	conversationID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.MarkReadRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := c.conversationService.MarkRead(ctx, conversationID, middleware.GetUserID(ctx), req.MessageID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Marked read"})
}

// GetUnreadCount reports the caller's unread total for a conversation
func (c *ConversationController) GetUnreadCount(ctx *gin.Context) {
	conversationID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	count, err := c.conversationService.UnreadCount(ctx, conversationID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.UnreadCountResponse{
		ConversationID: conversationID,
		UnreadCount:    count,
	})
}
