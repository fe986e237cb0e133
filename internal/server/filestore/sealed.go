package filestore

import (
	"context"

	"github.com/geotrade/marketplace/internal/cryptox"
)

// SealedStore wraps a Store and encrypts every object with AES-GCM. Used
// for the archived identity documents, which must not sit in object storage
// in the clear.
type SealedStore struct {
	inner Store
	key   []byte
}

func NewSealedStore(inner Store, secret, salt []byte) *SealedStore {
	return &SealedStore{inner: inner, key: cryptox.DeriveKey(secret, salt)}
}

func (s *SealedStore) Put(ctx context.Context, prefix, contentType string, data []byte) (string, error) {
	sealed, err := cryptox.Seal(s.key, data)
	if err != nil {
		return "", err
	}
	// The sealed object is opaque bytes regardless of the source type.
	return s.inner.Put(ctx, prefix, "application/octet-stream", sealed)
}

func (s *SealedStore) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	return cryptox.Open(s.key, sealed)
}

func (s *SealedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, key)
}
