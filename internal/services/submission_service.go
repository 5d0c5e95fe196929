// internal/services/submission_service.go
package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/ip-licensing-portal/internal/models"
	"github.com/javajoker/ip-licensing-portal/internal/store"
)

var ErrTermsNotAccepted = errors.New("license terms not accepted")

type FormState string

const (
	FormStateIdle       FormState = "idle"
	FormStateSubmitting FormState = "submitting"
)

type SubmissionResult struct {
	Request models.LicenseRequest   `json:"request"`
	License models.GenerationResult `json:"license"`
	// Form is the reset form shown after a successful submission.
	Form models.LicenseForm `json:"form"`
}

// SubmissionService drives the license form: record the request, try the
// configured provider, fall back to the static template.
type SubmissionService struct {
	store     store.RequestStore
	generator *LicenseGenerator
	provider  string
	notifier  ChangeNotifier
	inFlight  atomic.Int32
	now       func() time.Time
}

func NewSubmissionService(requestStore store.RequestStore, generator *LicenseGenerator, provider string, notifier ChangeNotifier) *SubmissionService {
	return &SubmissionService{
		store:     requestStore,
		generator: generator,
		provider:  provider,
		notifier:  notifier,
		now:       time.Now,
	}
}

func (s *SubmissionService) State() FormState {
	if s.inFlight.Load() > 0 {
		return FormStateSubmitting
	}
	return FormStateIdle
}

func (s *SubmissionService) Provider() string {
	return s.provider
}

// Submit records an accepted form and returns the agreement to display. A
// submission runs to completion even if the caller goes away.
func (s *SubmissionService) Submit(ctx context.Context, form models.LicenseForm) (*SubmissionResult, error) {
	request := form.Normalize()
	if !request.Accepted {
		return nil, ErrTermsNotAccepted
	}

	s.inFlight.Add(1)
	defer s.inFlight.Add(-1)

	ctx = context.WithoutCancel(ctx)

	submittedAt := s.now().UTC()
	request.ID = uuid.NewString()
	request.Status = models.RequestStatusPending
	request.SubmittedAt = &submittedAt

	requests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	requests = append(requests, request)
	if err := s.store.Save(ctx, requests); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.Publish(BuildRows(requests))
	}

	logger := logrus.WithFields(logrus.Fields{
		"request_id": request.ID,
		"provider":   s.provider,
	})
	logger.Info("License request recorded")

	result := models.GenerationResult{
		Source:   models.GenerationSourceAI,
		Provider: s.provider,
	}
	text, ok := s.generator.Generate(ctx, request, s.provider)
	if !ok {
		text = GenerateStaticLicense(request)
		result.Source = models.GenerationSourceStatic
		result.Provider = ""
	}
	result.Text = text

	html, err := RenderLicenseHTML(text)
	if err != nil {
		logger.WithError(err).Warn("Failed to render license HTML")
	}
	result.HTML = html

	logger.WithField("source", result.Source).Info("License generated")

	return &SubmissionResult{
		Request: request,
		License: result,
		Form:    models.LicenseForm{},
	}, nil
}
