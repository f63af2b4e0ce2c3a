package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/middleware"
)

// ModerationController handles reporting and the moderator queue
type ModerationController struct {
	moderationService services.ModerationService
}

// NewModerationController creates a new ModerationController
func NewModerationController(moderationService services.ModerationService) *ModerationController {
	return &ModerationController{moderationService: moderationService}
}

// ReportMessage files a report against a message
func (c *ModerationController) ReportMessage(ctx *gin.Context) {
	messageID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	var req dto.ReportMessageRequest
	if !bindJSON(ctx, &req) {
		return
	}

	response, err := c.moderationService.ReportMessage(ctx, middleware.GetUserID(ctx), messageID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// ListPendingReports returns the unreviewed report queue for moderators
func (c *ModerationController) ListPendingReports(ctx *gin.Context) {
	reports, err := c.moderationService.ListPendingReports(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, reports)
}

// ResolveReport marks a report reviewed
func (c *ModerationController) ResolveReport(ctx *gin.Context) {
	reportID, ok := parsePathID(ctx, "id")
	if !ok {
		return
	}

	if err := c.moderationService.ResolveReport(ctx, reportID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.SuccessResponse{Message: "Report resolved"})
}
