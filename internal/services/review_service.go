// internal/services/review_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/ip-licensing-portal/internal/models"
	"github.com/javajoker/ip-licensing-portal/internal/store"
)

var (
	ErrRequestNotFound = errors.New("license request not found")
	ErrAlreadyReviewed = errors.New("license request already reviewed")
)

// RequestRow is one line of the admin table.
type RequestRow struct {
	Index    int                  `json:"index"`
	ID       string               `json:"id,omitempty"`
	Name     string               `json:"name"`
	Email    string               `json:"email"`
	Use      string               `json:"use"`
	Duration string               `json:"duration"`
	Status   models.RequestStatus `json:"status"`
}

// ChangeNotifier receives the freshly rendered table after every change to
// the store.
type ChangeNotifier interface {
	Publish(rows []RequestRow)
}

func BuildRows(requests []models.LicenseRequest) []RequestRow {
	rows := make([]RequestRow, 0, len(requests))
	for i, req := range requests {
		rows = append(rows, RequestRow{
			Index:    i,
			ID:       req.ID,
			Name:     req.Name,
			Email:    req.Email,
			Use:      req.Use,
			Duration: req.Duration,
			Status:   req.EffectiveStatus(),
		})
	}
	return rows
}

// ReviewService backs the admin table. It keeps no state of its own and
// re-reads the store on every call.
type ReviewService struct {
	store    store.RequestStore
	notifier ChangeNotifier
}

func NewReviewService(requestStore store.RequestStore, notifier ChangeNotifier) *ReviewService {
	return &ReviewService{
		store:    requestStore,
		notifier: notifier,
	}
}

func (s *ReviewService) Rows(ctx context.Context) ([]RequestRow, error) {
	requests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	return BuildRows(requests), nil
}

func (s *ReviewService) Approve(ctx context.Context, index int) ([]RequestRow, error) {
	return s.review(ctx, index, models.RequestStatusApproved)
}

func (s *ReviewService) Reject(ctx context.Context, index int) ([]RequestRow, error) {
	return s.review(ctx, index, models.RequestStatusRejected)
}

func (s *ReviewService) review(ctx context.Context, index int, status models.RequestStatus) ([]RequestRow, error) {
	requests, err := s.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(requests) {
		return nil, fmt.Errorf("%w: index %d", ErrRequestNotFound, index)
	}

	current := requests[index].EffectiveStatus()
	if current != models.RequestStatusPending {
		return nil, fmt.Errorf("%w: request %d is %s", ErrAlreadyReviewed, index, current)
	}

	requests[index].Status = status
	if err := s.store.Save(ctx, requests); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"index":  index,
		"id":     requests[index].ID,
		"status": status,
	}).Info("License request reviewed")

	rows := BuildRows(requests)
	if s.notifier != nil {
		s.notifier.Publish(rows)
	}
	return rows, nil
}
