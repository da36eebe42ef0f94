package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinistro-backend/handlers"
	"sinistro-backend/models"
	"sinistro-backend/repository"
	"sinistro-backend/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type failingStore struct {
	*repository.MemoryClaimStore
}

func (failingStore) InsertClaim(context.Context, *models.Claim) (int64, error) {
	return 0, errors.New("database unavailable")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRouter(t *testing.T, store service.ClaimStore, opts ...service.ClaimServiceOption) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	base := []service.ClaimServiceOption{
		service.WithClaimStore(store),
		service.WithLogger(discardLogger()),
	}
	svc := service.NewClaimService(append(base, opts...)...)
	return handlers.NewRouter(handlers.NewClaimHandler(svc, discardLogger()), nil, discardLogger())
}

func do(t *testing.T, r http.Handler, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func registerClaim(t *testing.T, r http.Handler, description string) service.ClaimResponse {
	t.Helper()
	body := `{"description":"` + description + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec, env := do(t, r, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var claim service.ClaimResponse
	require.NoError(t, json.Unmarshal(env.Data, &claim))
	return claim
}

func multipartRequest(t *testing.T, url, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if field != "" {
		part, err := w.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestRegisterClaimReturnsCreatedWithLocation(t *testing.T) {
	r := newRouter(t, repository.NewMemoryClaimStore())

	before := time.Now().UTC().Add(-time.Second)
	claim := registerClaim(t, r, "Broken windshield")

	assert.Equal(t, int64(1), claim.ID)
	assert.Equal(t, models.ClaimStatusRegistered, claim.Status)
	assert.True(t, claim.RegisteredAt.After(before))

	req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(`{"description":"Hail"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, _ := do(t, r, req)
	assert.Equal(t, "/api/claims/2", rec.Header().Get("Location"))
}

func TestRegisterClaimRejectsMissingDescription(t *testing.T) {
	r := newRouter(t, repository.NewMemoryClaimStore())

	req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec, env := do(t, r, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "INVALID_REQUEST", env.Error.Code)
}

func TestRegisterClaimStorageFailure(t *testing.T) {
	r := newRouter(t, failingStore{repository.NewMemoryClaimStore()})

	req := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(`{"description":"Hail"}`))
	req.Header.Set("Content-Type", "application/json")
	rec, env := do(t, r, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", env.Error.Code)
	assert.NotContains(t, rec.Body.String(), "database unavailable")
}

func TestAttachDocument(t *testing.T) {
	r := newRouter(t, repository.NewMemoryClaimStore())
	claim := registerClaim(t, r, "Broken windshield")

	t.Run("missing document is rejected", func(t *testing.T) {
		req := multipartRequest(t, "/api/claims/1/documents", "", "", nil)
		rec, env := do(t, r, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid document.", env.Error.Message)
	})

	t.Run("empty document is rejected", func(t *testing.T) {
		req := multipartRequest(t, "/api/claims/1/documents", "document", "empty.pdf", nil)
		rec, env := do(t, r, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid document.", env.Error.Message)
	})

	t.Run("valid document is accepted", func(t *testing.T) {
		req := multipartRequest(t, "/api/claims/1/documents", "document", "teste.pdf", bytes.Repeat([]byte("a"), 100))
		rec, env := do(t, r, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var doc service.DocumentResponse
		require.NoError(t, json.Unmarshal(env.Data, &doc))
		assert.Equal(t, "teste.pdf", doc.Filename)
		assert.Equal(t, "Document submitted successfully.", doc.Message)
		assert.Equal(t, int64(1), doc.DocumentID)
	})

	t.Run("unknown claim is not found", func(t *testing.T) {
		req := multipartRequest(t, "/api/claims/999/documents", "document", "teste.pdf", []byte("content"))
		rec, env := do(t, r, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Claim not found.", env.Error.Message)
	})

	t.Run("attached documents are listed and downloadable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/claims/1/documents", nil)
		rec, env := do(t, r, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var docs []service.DocumentSummary
		require.NoError(t, json.Unmarshal(env.Data, &docs))
		require.Len(t, docs, 1)
		assert.Equal(t, "teste.pdf", docs[0].Filename)
		assert.Equal(t, int64(100), docs[0].Size)

		req = httptest.NewRequest(http.MethodGet, "/api/documents/1", nil)
		rec = httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "teste.pdf")
		assert.Equal(t, bytes.Repeat([]byte("a"), 100), rec.Body.Bytes())
	})

	assert.Equal(t, int64(1), claim.ID)
}

func TestServiceErrorMapping(t *testing.T) {
	r := newRouter(t, repository.NewMemoryClaimStore(), service.WithMaxDocumentSize(8))
	registerClaim(t, r, "Broken windshield")

	blankClaim := httptest.NewRequest(http.MethodPost, "/api/claims", strings.NewReader(`{"description":"   "}`))
	blankClaim.Header.Set("Content-Type", "application/json")

	tests := []struct {
		name    string
		req     *http.Request
		status  int
		code    string
		message string
	}{
		{
			name:    "blank description",
			req:     blankClaim,
			status:  http.StatusBadRequest,
			code:    "INVALID_CLAIM",
			message: "Description is required.",
		},
		{
			name:   "document over the size limit",
			req:    multipartRequest(t, "/api/claims/1/documents", "document", "big.pdf", bytes.Repeat([]byte("a"), 9)),
			status: http.StatusRequestEntityTooLarge,
			code:   "DOCUMENT_TOO_LARGE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, env := do(t, r, tt.req)

			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.code, env.Error.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, env.Error.Message)
			}
		})
	}
}

func TestTrackClaim(t *testing.T) {
	r := newRouter(t, repository.NewMemoryClaimStore())
	registered := registerClaim(t, r, "Broken windshield")

	t.Run("unknown claim", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/claims/999", nil)
		rec, env := do(t, r, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Claim not found.", env.Error.Message)
	})

	t.Run("existing claim", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/claims/1", nil)
		rec, env := do(t, r, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var claim service.ClaimResponse
		require.NoError(t, json.Unmarshal(env.Data, &claim))
		assert.Equal(t, registered.ID, claim.ID)
		assert.True(t, registered.RegisteredAt.Equal(claim.RegisteredAt))
		assert.Equal(t, models.ClaimStatusRegistered, claim.Status)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/claims/abc", nil)
		rec, env := do(t, r, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ID", env.Error.Code)
	})
}

func TestUnknownDocument(t *testing.T) {
	r := newRouter(t, repository.NewMemoryClaimStore())

	req := httptest.NewRequest(http.MethodGet, "/api/documents/5", nil)
	rec, env := do(t, r, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Document not found.", env.Error.Message)
}

func TestHealth(t *testing.T) {
	r := newRouter(t, repository.NewMemoryClaimStore())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
