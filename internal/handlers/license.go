// internal/handlers/license.go
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ip-licensing-portal/internal/i18n"
	"github.com/javajoker/ip-licensing-portal/internal/models"
	"github.com/javajoker/ip-licensing-portal/internal/services"
	"github.com/javajoker/ip-licensing-portal/internal/utils"
)

type LicenseHandler struct {
	submissionService *services.SubmissionService
}

func NewLicenseHandler(submissionService *services.SubmissionService) *LicenseHandler {
	return &LicenseHandler{
		submissionService: submissionService,
	}
}

// GET /v1/licenses/form
func (h *LicenseHandler) GetForm(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"form":              models.LicenseForm{},
		"duration_options":  models.DurationOptions,
		"provider":          h.submissionService.Provider(),
		"state":             h.submissionService.State(),
		"supported_locales": i18n.GetSupportedLanguages(),
	})
}

// POST /v1/licenses/requests
func (h *LicenseHandler) SubmitRequest(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var form models.LicenseForm
	if err := bindForm(c, &form); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	result, err := h.submissionService.Submit(c.Request.Context(), form)
	if err != nil {
		if errors.Is(err, services.ErrTermsNotAccepted) {
			utils.ErrorResponse(c, http.StatusBadRequest, "TERMS_NOT_ACCEPTED", i18n.T(lang, i18n.KeyLicenseTermsNotAccepted), nil)
			return
		}
		logrus.WithError(err).WithField("request_id", utils.GetRequestIDFromContext(c)).Error("Failed to record license request")
		c.Error(err)
		utils.ServiceUnavailableResponse(c)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyLicenseSubmitted),
		"request": result.Request,
		"license": result.License,
		"form":    result.Form,
	})
}

// bindForm accepts JSON bodies as well as classic form posts where the
// checkbox arrives as accept=on.
func bindForm(c *gin.Context, form *models.LicenseForm) error {
	if strings.HasPrefix(c.ContentType(), binding.MIMEJSON) {
		return c.ShouldBindJSON(form)
	}
	return c.ShouldBindWith(form, binding.Form)
}
