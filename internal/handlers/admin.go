// internal/handlers/admin.go
package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/ip-licensing-portal/internal/hub"
	"github.com/javajoker/ip-licensing-portal/internal/i18n"
	"github.com/javajoker/ip-licensing-portal/internal/services"
	"github.com/javajoker/ip-licensing-portal/internal/utils"
)

type AdminHandler struct {
	reviewService *services.ReviewService
	tableHub      *hub.Hub
}

type reviewURI struct {
	Index int `uri:"index" validate:"min=0"`
}

func NewAdminHandler(reviewService *services.ReviewService, tableHub *hub.Hub) *AdminHandler {
	return &AdminHandler{
		reviewService: reviewService,
		tableHub:      tableHub,
	}
}

// GET /v1/admin/requests
func (h *AdminHandler) GetRequests(c *gin.Context) {
	rows, err := h.reviewService.Rows(c.Request.Context())
	if err != nil {
		c.Error(err)
		utils.ServiceUnavailableResponse(c)
		return
	}

	utils.SuccessResponseWithMeta(c, gin.H{"requests": rows}, gin.H{"total": len(rows)})
}

// PUT /v1/admin/requests/:index/approve
func (h *AdminHandler) ApproveRequest(c *gin.Context) {
	h.review(c, h.reviewService.Approve, i18n.KeyLicenseApproved)
}

// PUT /v1/admin/requests/:index/reject
func (h *AdminHandler) RejectRequest(c *gin.Context) {
	h.review(c, h.reviewService.Reject, i18n.KeyLicenseRejected)
}

// GET /v1/admin/requests/ws
func (h *AdminHandler) StreamRequests(c *gin.Context) {
	rows, err := h.reviewService.Rows(c.Request.Context())
	if err != nil {
		c.Error(err)
		utils.ServiceUnavailableResponse(c)
		return
	}

	snapshot, err := hub.EncodeTable(rows)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	h.tableHub.ServeWS(c.Writer, c.Request, snapshot)
}

type reviewFunc func(ctx context.Context, index int) ([]services.RequestRow, error)

func (h *AdminHandler) review(c *gin.Context, action reviewFunc, successKey string) {
	lang := utils.GetLangFromContext(c)

	var uri reviewURI
	if err := c.ShouldBindUri(&uri); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "index"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&uri)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	rows, err := action(c.Request.Context(), uri.Index)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			utils.NotFoundResponse(c, i18n.KeyLicenseNotFound)
		case errors.Is(err, services.ErrAlreadyReviewed):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyLicenseAlreadyReviewed))
		default:
			c.Error(err)
			utils.ServiceUnavailableResponse(c)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, successKey),
		"requests": rows,
	})
}
