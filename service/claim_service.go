package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"sinistro-backend/metrics"
	"sinistro-backend/models"
	"sinistro-backend/storage"

	"github.com/google/uuid"
)

const (
	// DocumentSubmittedMessage is returned with every accepted document
	DocumentSubmittedMessage = "Document submitted successfully."

	// DefaultMaxDocumentSize caps a single document at 10MB
	DefaultMaxDocumentSize int64 = 10 * 1024 * 1024
)

// ClaimService handles claim registration, document attachment and tracking
type ClaimService struct {
	store           ClaimStore
	blobs           storage.Storage
	metrics         *metrics.Metrics
	logger          *slog.Logger
	clock           func() time.Time
	maxDocumentSize int64
}

// ClaimServiceOption is a functional option for ClaimService
type ClaimServiceOption func(*ClaimService)

// WithClaimStore sets the claim store
func WithClaimStore(store ClaimStore) ClaimServiceOption {
	return func(s *ClaimService) {
		s.store = store
	}
}

// WithBlobStorage stores document bytes in blob storage instead of inline
func WithBlobStorage(blobs storage.Storage) ClaimServiceOption {
	return func(s *ClaimService) {
		s.blobs = blobs
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m *metrics.Metrics) ClaimServiceOption {
	return func(s *ClaimService) {
		s.metrics = m
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) ClaimServiceOption {
	return func(s *ClaimService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for registration and upload timestamps
func WithClock(clock func() time.Time) ClaimServiceOption {
	return func(s *ClaimService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMaxDocumentSize sets the largest accepted document in bytes
func WithMaxDocumentSize(n int64) ClaimServiceOption {
	return func(s *ClaimService) {
		if n > 0 {
			s.maxDocumentSize = n
		}
	}
}

// NewClaimService creates a new claim service
func NewClaimService(opts ...ClaimServiceOption) *ClaimService {
	s := &ClaimService{
		logger:          slog.Default(),
		clock:           time.Now,
		maxDocumentSize: DefaultMaxDocumentSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "claim_service")
	return s
}

// now returns the current time in UTC at microsecond precision,
// which is what PostgreSQL keeps for TIMESTAMPTZ.
func (s *ClaimService) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

// RegisterClaimRequest represents a request to register a claim
type RegisterClaimRequest struct {
	Description string
}

// ClaimResponse is the projection of a claim returned to callers
type ClaimResponse struct {
	ID           int64              `json:"id"`
	RegisteredAt time.Time          `json:"registered_at"`
	Status       models.ClaimStatus `json:"status"`
}

func newClaimResponse(claim *models.Claim) *ClaimResponse {
	return &ClaimResponse{
		ID:           claim.ID,
		RegisteredAt: claim.RegisteredAt,
		Status:       claim.Status,
	}
}

// RegisterClaim creates a new claim in the Registered status
func (s *ClaimService) RegisterClaim(ctx context.Context, req RegisterClaimRequest) (*ClaimResponse, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	defer s.observe("register_claim", time.Now())

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidClaim)
	}

	claim := &models.Claim{
		Description:  description,
		RegisteredAt: s.now(),
		Status:       models.ClaimStatusRegistered,
	}

	id, err := s.store.InsertClaim(ctx, claim)
	if err != nil {
		return nil, fmt.Errorf("insert claim: %w", err)
	}
	claim.ID = id

	s.metrics.IncrementClaimsRegistered()
	s.logger.Info("claim registered", "claim_id", claim.ID)

	return newClaimResponse(claim), nil
}

// TrackClaim looks up a claim. The boolean result is false when no claim has the given id.
func (s *ClaimService) TrackClaim(ctx context.Context, claimID int64) (*ClaimResponse, bool, error) {
	if s.store == nil {
		return nil, false, ErrStoreNotConfigured
	}
	defer s.observe("track_claim", time.Now())

	claim, found, err := s.store.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, false, fmt.Errorf("find claim %d: %w", claimID, err)
	}
	s.metrics.IncrementLookup(found)
	if !found {
		return nil, false, nil
	}

	return newClaimResponse(claim), true, nil
}

// DocumentUpload carries a document submitted against a claim.
// Size is the length declared by the transport; Content is consumed fully.
type DocumentUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// DocumentResponse is the projection returned for an accepted document
type DocumentResponse struct {
	DocumentID int64  `json:"document_id"`
	Filename   string `json:"filename"`
	Message    string `json:"message"`
}

// AttachDocument validates a document and stores it against an existing claim.
// Invalid documents and unknown claims are rejected before anything is written.
func (s *ClaimService) AttachDocument(ctx context.Context, claimID int64, upload *DocumentUpload) (*DocumentResponse, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	defer s.observe("attach_document", time.Now())

	if reason := rejectReason(upload); reason != "" {
		s.metrics.IncrementRejection(reason)
		return nil, fmt.Errorf("%w: %s", ErrInvalidDocument, reason)
	}
	if upload.Size > s.maxDocumentSize {
		s.metrics.IncrementRejection("too_large")
		return nil, ErrDocumentTooLarge
	}

	// Read one byte past the limit to detect oversized streams.
	limit := s.maxDocumentSize
	if limit < math.MaxInt64 {
		limit++
	}
	content, err := io.ReadAll(io.LimitReader(upload.Content, limit))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if len(content) == 0 {
		s.metrics.IncrementRejection("empty_content")
		return nil, fmt.Errorf("%w: empty_content", ErrInvalidDocument)
	}
	if int64(len(content)) > s.maxDocumentSize {
		s.metrics.IncrementRejection("too_large")
		return nil, ErrDocumentTooLarge
	}

	_, found, err := s.store.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("find claim %d: %w", claimID, err)
	}
	if !found {
		return nil, ErrClaimNotFound
	}

	doc := &models.Document{
		ClaimID:     claimID,
		Filename:    upload.Filename,
		ContentType: storage.ContentType(upload.Filename),
		Size:        int64(len(content)),
		UploadedAt:  s.now(),
	}

	if s.blobs != nil {
		key := storage.DocumentKey(claimID, uuid.New(), upload.Filename)
		if err := s.blobs.Upload(ctx, key, doc.ContentType, bytes.NewReader(content)); err != nil {
			return nil, fmt.Errorf("upload document blob: %w", err)
		}
		doc.StoragePath = key
	} else {
		doc.Content = content
	}

	id, err := s.store.InsertDocument(ctx, doc)
	if err != nil {
		if doc.StoragePath != "" {
			if delErr := s.blobs.Delete(context.WithoutCancel(ctx), doc.StoragePath); delErr != nil {
				s.logger.Warn("compensating blob delete failed", "key", doc.StoragePath, "error", delErr)
			}
		}
		return nil, fmt.Errorf("insert document: %w", err)
	}
	doc.ID = id

	s.metrics.IncrementDocumentsAttached()
	s.logger.Info("document attached", "claim_id", claimID, "document_id", doc.ID, "size", doc.Size)

	return &DocumentResponse{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Message:    DocumentSubmittedMessage,
	}, nil
}

func rejectReason(upload *DocumentUpload) string {
	switch {
	case upload == nil:
		return "missing"
	case upload.Content == nil:
		return "missing_content"
	case strings.TrimSpace(upload.Filename) == "":
		return "missing_filename"
	case upload.Size <= 0:
		return "empty"
	default:
		return ""
	}
}

// DocumentSummary describes a stored document without its content
type DocumentSummary struct {
	ID          int64     `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ListDocuments returns the documents attached to a claim, oldest first
func (s *ClaimService) ListDocuments(ctx context.Context, claimID int64) ([]DocumentSummary, error) {
	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}

	_, found, err := s.store.FindClaimByID(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("find claim %d: %w", claimID, err)
	}
	if !found {
		return nil, ErrClaimNotFound
	}

	docs, err := s.store.ListDocumentsByClaim(ctx, claimID)
	if err != nil {
		return nil, fmt.Errorf("list documents for claim %d: %w", claimID, err)
	}

	summaries := make([]DocumentSummary, 0, len(docs))
	for _, d := range docs {
		summaries = append(summaries, DocumentSummary{
			ID:          d.ID,
			Filename:    d.Filename,
			ContentType: d.ContentType,
			Size:        d.Size,
			UploadedAt:  d.UploadedAt,
		})
	}
	return summaries, nil
}

// GetDocumentContent returns a document and a reader over its bytes.
// The caller must close the reader.
func (s *ClaimService) GetDocumentContent(ctx context.Context, documentID int64) (*models.Document, io.ReadCloser, error) {
	if s.store == nil {
		return nil, nil, ErrStoreNotConfigured
	}

	doc, found, err := s.store.FindDocumentByID(ctx, documentID)
	if err != nil {
		return nil, nil, fmt.Errorf("find document %d: %w", documentID, err)
	}
	if !found {
		return nil, nil, ErrDocumentNotFound
	}

	if doc.StoragePath == "" {
		return doc, io.NopCloser(bytes.NewReader(doc.Content)), nil
	}
	if s.blobs == nil {
		return nil, nil, fmt.Errorf("document %d is in blob storage but none is configured", documentID)
	}

	reader, err := s.blobs.Download(ctx, doc.StoragePath)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Warn("document blob missing", "document_id", documentID, "key", doc.StoragePath)
		return nil, nil, fmt.Errorf("%w: %v", ErrDocumentNotFound, err)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("download document %d: %w", documentID, err)
	}
	return doc, reader, nil
}

func (s *ClaimService) observe(operation string, start time.Time) {
	s.metrics.ObserveOperation(operation, time.Since(start))
}
