package models

import (
	"time"
)

// ClaimStatus represents the status of a claim
type ClaimStatus string

const (
	// ClaimStatusRegistered is the initial status of every claim.
	ClaimStatusRegistered ClaimStatus = "Registered"
)

// Claim represents a reported insurance incident
type Claim struct {
	ID           int64       `json:"id"`
	Description  string      `json:"description"`
	RegisteredAt time.Time   `json:"registered_at"`
	Status       ClaimStatus `json:"status"`
}
