package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/middleware"
)

// ReactionController handles message reactions
type ReactionController struct {
	reactionService services.ReactionService
}

// NewReactionController creates a new ReactionController
func NewReactionController(reactionService services.ReactionService) *ReactionController {
	return &ReactionController{reactionService: reactionService}
}

// React sets the caller's reaction on a message and returns the updated
// per-label totals
func (c *ReactionController) React(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ReactRequest
	if !bindJSON(ctx, &req) {
		return
	}

	counts, err := c.reactionService.React(ctx, messageID, middleware.GetUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, counts)
}

// Unreact removes the caller's reaction and returns the updated totals
func (c *ReactionController) Unreact(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	counts, err := c.reactionService.Unreact(ctx, messageID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, counts)
}

// ListReactions returns every reaction on a message
func (c *ReactionController) ListReactions(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	reactions, err := c.reactionService.ListReactions(ctx, messageID, middleware.GetUserID(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, reactions)
}
