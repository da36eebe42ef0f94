package service

import "errors"

var (
	ErrInvalidClaim       = errors.New("invalid claim")
	ErrInvalidDocument    = errors.New("invalid document")
	ErrDocumentTooLarge   = errors.New("document exceeds maximum size")
	ErrClaimNotFound      = errors.New("claim not found")
	ErrDocumentNotFound   = errors.New("document not found")
	ErrStoreNotConfigured = errors.New("claim store not set")
)
