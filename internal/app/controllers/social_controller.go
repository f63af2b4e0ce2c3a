package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/middleware"
)

// SocialController handles follow and block edges
type SocialController struct {
	socialService services.SocialService
}

// NewSocialController creates a new SocialController
func NewSocialController(socialService services.SocialService) *SocialController {
	return &SocialController{socialService: socialService}
}

// Follow creates a follower edge toward the path user
func (c *SocialController) Follow(ctx *gin.Context) {
	userID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	response, err := c.socialService.Follow(ctx, middleware.GetUserID(ctx), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

// Unfollow removes the caller's follower edge toward the path user
func (c *SocialController) Unfollow(ctx *gin.Context) {
	userID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.socialService.Unfollow(ctx, middleware.GetUserID(ctx), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Unfollowed"})
}

// ListFollowing returns the users the path user follows
func (c *SocialController) ListFollowing(ctx *gin.Context) {
	userID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	users, err := c.socialService.ListFollowing(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// ListFollowers returns the users following the path user
func (c *SocialController) ListFollowers(ctx *gin.Context) {
	userID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	users, err := c.socialService.ListFollowers(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, users)
}

// Block creates a block edge toward the path user
func (c *SocialController) Block(ctx *gin.Context) {
	userID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.socialService.Block(ctx, middleware.GetUserID(ctx), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Blocked"})
}

// Unblock removes the caller's block edge toward the path user
func (c *SocialController) Unblock(ctx *gin.Context) {
	userID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.socialService.Unblock(ctx, middleware.GetUserID(ctx), userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Unblocked"})
}

// SuggestedFollows proposes recently active users the caller may follow
func (c *SocialController) SuggestedFollows(ctx *gin.Context) {
	limit := 0
	if limitStr := ctx.Query("limit"); limitStr != "" {
		limit, _ = strconv.Atoi(limitStr)
	}

	response, err := c.socialService.SuggestedFollows(ctx, middleware.GetUserID(ctx), limit)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}
