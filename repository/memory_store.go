package repository

import (
	"context"
	"sync"

	"sinistro-backend/models"
)

// MemoryClaimStore keeps claims and documents in process memory.
// Identifiers start at 1 and increase monotonically per entity.
type MemoryClaimStore struct {
	mu           sync.RWMutex
	claims       map[int64]models.Claim
	documents    map[int64]models.Document
	nextClaim    int64
	nextDocument int64
}

// NewMemoryClaimStore creates an empty in-memory store
func NewMemoryClaimStore() *MemoryClaimStore {
	return &MemoryClaimStore{
		claims:    make(map[int64]models.Claim),
		documents: make(map[int64]models.Document),
	}
}

func (s *MemoryClaimStore) InsertClaim(ctx context.Context, claim *models.Claim) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextClaim++
	stored := *claim
	stored.ID = s.nextClaim
	s.claims[stored.ID] = stored
	return stored.ID, nil
}

func (s *MemoryClaimStore) FindClaimByID(ctx context.Context, id int64) (*models.Claim, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	claim, ok := s.claims[id]
	if !ok {
		return nil, false, nil
	}
	return &claim, true, nil
}

func (s *MemoryClaimStore) InsertDocument(ctx context.Context, doc *models.Document) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDocument++
	stored := *doc
	stored.ID = s.nextDocument
	stored.Content = append([]byte(nil), doc.Content...)
	s.documents[stored.ID] = stored
	return stored.ID, nil
}

func (s *MemoryClaimStore) FindDocumentByID(ctx context.Context, id int64) (*models.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[id]
	if !ok {
		return nil, false, nil
	}
	return &doc, true, nil
}

func (s *MemoryClaimStore) ListDocumentsByClaim(ctx context.Context, claimID int64) ([]*models.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []*models.Document
	for id := int64(1); id <= s.nextDocument; id++ {
		doc, ok := s.documents[id]
		if !ok || doc.ClaimID != claimID {
			continue
		}
		docs = append(docs, &doc)
	}
	return docs, nil
}
