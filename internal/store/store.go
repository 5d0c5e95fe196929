// internal/store/store.go
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/ip-licensing-portal/internal/models"
)

// DefaultKey is the storage key the portal has always used for the request
// list.
const DefaultKey = "licenseRequests"

// Backend is a minimal key-value persistence engine. Implementations must be
// safe for concurrent use of individual calls; nothing more is promised.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// RequestStore loads and saves the whole ordered list of license requests.
type RequestStore interface {
	Load(ctx context.Context) ([]models.LicenseRequest, error)
	Save(ctx context.Context, requests []models.LicenseRequest) error
}

// JSONStore keeps the list as one JSON array under a single key. Save
// overwrites the entry; concurrent writers race and the last one wins.
type JSONStore struct {
	backend Backend
	key     string
}

func NewJSONStore(backend Backend, key string) *JSONStore {
	if key == "" {
		key = DefaultKey
	}
	return &JSONStore{
		backend: backend,
		key:     key,
	}
}

// Load returns an empty list when the entry is absent or is not a JSON
// array. Records that cannot be decoded are dropped one by one, so a single
// bad entry never costs the rest of the list. Only backend I/O failures are
// reported, so a caller never mistakes an unreachable backend for an empty
// one and overwrites it.
func (s *JSONStore) Load(ctx context.Context) ([]models.LicenseRequest, error) {
	raw, ok, err := s.backend.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", s.key, err)
	}

	requests := []models.LicenseRequest{}
	if !ok || len(raw) == 0 {
		return requests, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		logrus.WithError(err).WithField("key", s.key).Error("Discarding unreadable license request list")
		return requests, nil
	}

	for i, entry := range entries {
		var request models.LicenseRequest
		if string(entry) == "null" {
			continue
		}
		if err := json.Unmarshal(entry, &request); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"key":   s.key,
				"index": i,
			}).Error("Dropping unreadable license request")
			continue
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (s *JSONStore) Save(ctx context.Context, requests []models.LicenseRequest) error {
	if requests == nil {
		requests = []models.LicenseRequest{}
	}

	raw, err := json.Marshal(requests)
	if err != nil {
		return fmt.Errorf("failed to encode license requests: %w", err)
	}

	if err := s.backend.Put(ctx, s.key, raw); err != nil {
		return fmt.Errorf("failed to write %q: %w", s.key, err)
	}
	return nil
}
