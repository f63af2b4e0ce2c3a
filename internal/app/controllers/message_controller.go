package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/middleware"
)

// MessageController handles message history, threads and message writes
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{messageService: messageService}
}

// GetHistory returns one page of a conversation's history, oldest-first
// within the page
func (c *MessageController) GetHistory(ctx *gin.Context) {
	conversationID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	var page dto.PageRequest
	if err := ctx.ShouldBindQuery(&page); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters")))
		return
	}

	response, err := c.messageService.GetHistory(ctx, conversationID, middleware.GetUserID(ctx), &page)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// PostMessage creates a message in a conversation
func (c *MessageController) PostMessage(ctx *gin.Context) {
	conversationID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	var req dto.PostMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	response, err := c.messageService.PostMessage(ctx, conversationID, middleware.GetUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// GetMessage returns a single message
func (c *MessageController) GetMessage(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	response, err := c.messageService.GetMessage(ctx, messageID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// GetThread returns a thread root with its replies oldest-first
func (c *MessageController) GetThread(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	response, err := c.messageService.GetThread(ctx, messageID, middleware.GetUserID(ctx), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// EditMessage updates a message's text
func (c *MessageController) EditMessage(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	var req dto.EditMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	response, err := c.messageService.EditMessage(ctx, messageID, middleware.GetUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// DeleteMessage soft-deletes a message
func (c *MessageController) DeleteMessage(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	err := c.messageService.DeleteMessage(ctx, messageID, middleware.GetUserID(ctx), middleware.IsModerator(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Message deleted"})
}
