package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/middleware"
)

// FeedController handles the public feed surface
type FeedController struct {
	feedService services.FeedService
}

// NewFeedController creates a new FeedController
func NewFeedController(feedService services.FeedService) *FeedController {
	return &FeedController{feedService: feedService}
}

// GetFeed returns one newest-first page of the public feed. Supports
// cursor, limit and hashtag query parameters; a bad cursor starts over
// from the top rather than failing.
func (c *FeedController) GetFeed(ctx *gin.Context) {
	var req dto.FeedPageRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid query parameters")))
		return
	}

	response, err := c.feedService.GetFeed(ctx, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// PostToFeed publishes a message to the public feed
func (c *FeedController) PostToFeed(ctx *gin.Context) {
	var req dto.PostMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	response, err := c.feedService.PostToFeed(ctx, middleware.GetUserID(ctx), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}
