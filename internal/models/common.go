// internal/models/common.go
package models

import "time"

// Enums
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Duration options offered by the license form.
var DurationOptions = []string{"1 month", "6 months", "1 year", "perpetual"}

// StorageEntry is the single-row layout shared by the SQL store backends:
// one opaque value per key.
type StorageEntry struct {
	Key       string    `json:"key" gorm:"primaryKey;size:191" bun:"key,pk"`
	Value     string    `json:"value" gorm:"type:text;not null" bun:"value,notnull"`
	UpdatedAt time.Time `json:"updated_at" gorm:"not null" bun:"updated_at,notnull"`
}
