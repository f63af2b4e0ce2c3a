package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/budline/budline/internal/app/models/dto"
	"github.com/budline/budline/internal/app/services"
	"github.com/budline/budline/internal/middleware"
)

// AttachmentController handles media uploads
type AttachmentController struct {
	attachmentService services.AttachmentService
}

// NewAttachmentController creates a new AttachmentController
func NewAttachmentController(attachmentService services.AttachmentService) *AttachmentController {
	return &AttachmentController{attachmentService: attachmentService}
}

// Upload stores a media file and returns its id for message references
func (c *AttachmentController) Upload(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Missing file field").WithField("file")))
		return
	}

	response, err := c.attachmentService.Upload(ctx, middleware.GetUserID(ctx), fileHeader)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, response)
}

// Get returns attachment metadata with its resolved URL
func (c *AttachmentController) Get(ctx *gin.Context) {
	attachmentID, ok := parsePathUUID(ctx, "id")
	if !ok {
		return
	}

	response, err := c.attachmentService.Get(ctx, attachmentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}
