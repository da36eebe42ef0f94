package service

import (
	"context"

	"sinistro-backend/models"
)

// ClaimStore is the persistence gateway for claims and their documents.
// Lookups report absence through the boolean result, never through the error.
type ClaimStore interface {
	// InsertClaim writes a new claim and returns the identifier assigned by the store
	InsertClaim(ctx context.Context, claim *models.Claim) (int64, error)

	// InsertDocument writes a new document row and returns its assigned identifier
	InsertDocument(ctx context.Context, doc *models.Document) (int64, error)

	FindClaimByID(ctx context.Context, id int64) (*models.Claim, bool, error)
	FindDocumentByID(ctx context.Context, id int64) (*models.Document, bool, error)
	ListDocumentsByClaim(ctx context.Context, claimID int64) ([]*models.Document, error)
}
