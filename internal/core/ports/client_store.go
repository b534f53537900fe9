package ports

import (
	"context"

	"github.com/brandpreneur/client-portal/internal/core/domain"
)

// ClientStore is the document store holding one ClientRecord per client.
type ClientStore interface {
	Get(ctx context.Context, id string) (*domain.ClientRecord, error)
	// Create inserts rec only if no record with its ID exists; otherwise it
	// returns domain.ErrClientExists and leaves the stored record alone.
	Create(ctx context.Context, rec *domain.ClientRecord) error
	// Set writes rec, replacing any existing record with the same ID.
	Set(ctx context.Context, rec *domain.ClientRecord) error
	// ReplaceData atomically replaces the data field of one record.
	ReplaceData(ctx context.Context, id string, data domain.ClientData) error
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]*domain.ClientRecord, error)
}

// BlobStore is the path-addressed file store for uploaded assets.
type BlobStore interface {
	// Upload stores data at path and returns the retrieval URL.
	Upload(ctx context.Context, path, contentType string, data []byte) (string, error)
}
