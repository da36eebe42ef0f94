package repository

import (
	"context"
	"errors"

	"sinistro-backend/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClaimRepository handles database operations for claims and documents
type ClaimRepository struct {
	db *pgxpool.Pool
}

// NewClaimRepository creates a new claim repository
func NewClaimRepository(db *pgxpool.Pool) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// InsertClaim creates a new claim record and returns its id
func (r *ClaimRepository) InsertClaim(ctx context.Context, claim *models.Claim) (int64, error) {
	query := `
		INSERT INTO claims (description, registered_at, status)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	err := r.db.QueryRow(
		ctx, query,
		claim.Description,
		claim.RegisteredAt,
		claim.Status,
	).Scan(&id)

	return id, err
}

// FindClaimByID retrieves a claim by ID
func (r *ClaimRepository) FindClaimByID(ctx context.Context, id int64) (*models.Claim, bool, error) {
	claim := &models.Claim{}
	query := `
		SELECT id, description, registered_at, status
		FROM claims
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&claim.ID,
		&claim.Description,
		&claim.RegisteredAt,
		&claim.Status,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	claim.RegisteredAt = claim.RegisteredAt.UTC()
	return claim, true, nil
}

// InsertDocument creates a new document record and returns its id
func (r *ClaimRepository) InsertDocument(ctx context.Context, doc *models.Document) (int64, error) {
	query := `
		INSERT INTO documents (
			claim_id, filename, content_type, size, content, storage_path, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var storagePath *string
	if doc.StoragePath != "" {
		storagePath = &doc.StoragePath
	}

	var id int64
	err := r.db.QueryRow(
		ctx, query,
		doc.ClaimID,
		doc.Filename,
		doc.ContentType,
		doc.Size,
		doc.Content,
		storagePath,
		doc.UploadedAt,
	).Scan(&id)

	return id, err
}

// FindDocumentByID retrieves a document, including inline content, by ID
func (r *ClaimRepository) FindDocumentByID(ctx context.Context, id int64) (*models.Document, bool, error) {
	query := `
		SELECT id, claim_id, filename, content_type, size, content, storage_path, uploaded_at
		FROM documents
		WHERE id = $1`

	doc := &models.Document{}
	var storagePath *string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.ClaimID,
		&doc.Filename,
		&doc.ContentType,
		&doc.Size,
		&doc.Content,
		&storagePath,
		&doc.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if storagePath != nil {
		doc.StoragePath = *storagePath
	}
	doc.UploadedAt = doc.UploadedAt.UTC()
	return doc, true, nil
}

// ListDocumentsByClaim retrieves document metadata for a claim, oldest first
func (r *ClaimRepository) ListDocumentsByClaim(ctx context.Context, claimID int64) ([]*models.Document, error) {
	query := `
		SELECT id, claim_id, filename, content_type, size, storage_path, uploaded_at
		FROM documents
		WHERE claim_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, query, claimID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc := &models.Document{}
		var storagePath *string
		err := rows.Scan(
			&doc.ID,
			&doc.ClaimID,
			&doc.Filename,
			&doc.ContentType,
			&doc.Size,
			&storagePath,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, err
		}
		if storagePath != nil {
			doc.StoragePath = *storagePath
		}
		doc.UploadedAt = doc.UploadedAt.UTC()
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}
