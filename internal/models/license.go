// internal/models/license.go
package models

import (
	"strings"
	"time"
)

// LicenseRequest is one submission of the license form as persisted in the
// request store. Records are append-only; only Status ever changes.
type LicenseRequest struct {
	ID          string        `json:"id,omitempty"`
	Name        string        `json:"name"`
	Email       string        `json:"email"`
	Use         string        `json:"use"`
	Duration    string        `json:"duration"`
	Accepted    bool          `json:"accepted"`
	Status      RequestStatus `json:"status,omitempty"`
	SubmittedAt *time.Time    `json:"submitted_at,omitempty"`
}

// EffectiveStatus treats records persisted without a status as pending.
func (r LicenseRequest) EffectiveStatus() RequestStatus {
	if r.Status == "" {
		return RequestStatusPending
	}
	return r.Status
}

// LicenseForm is the raw form input before normalisation.
type LicenseForm struct {
	Name     string `json:"name" form:"name"`
	Email    string `json:"email" form:"email"`
	Use      string `json:"use" form:"use"`
	Duration string `json:"duration" form:"duration"`
	Accepted bool   `json:"accepted" form:"-"`
	Accept   string `json:"-" form:"accept"`
}

// Normalize trims the free-text fields. Duration comes from a select and is
// kept as submitted.
func (f LicenseForm) Normalize() LicenseRequest {
	return LicenseRequest{
		Name:     strings.TrimSpace(f.Name),
		Email:    strings.TrimSpace(f.Email),
		Use:      strings.TrimSpace(f.Use),
		Duration: f.Duration,
		Accepted: f.Accepted || f.Accept == "on",
	}
}

// GenerationSource tells whether license text came from a provider or from
// the static template.
type GenerationSource string

const (
	GenerationSourceAI     GenerationSource = "ai"
	GenerationSourceStatic GenerationSource = "static"
)

// GenerationResult is never persisted.
type GenerationResult struct {
	Text     string           `json:"text"`
	HTML     string           `json:"html"`
	Source   GenerationSource `json:"source"`
	Provider string           `json:"provider,omitempty"`
}
