package memory

import (
	"context"
	"sync"

	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ArtifactStore keeps rendered documents in a map, keyed by locator.
type ArtifactStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte

	SaveErr error
}

// NewArtifactStore creates an empty store.
func NewArtifactStore() *ArtifactStore {
	return &ArtifactStore{blobs: make(map[string][]byte)}
}

// Save stores a copy of the content.
func (s *ArtifactStore) Save(_ context.Context, locator string, content []byte) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := make([]byte, len(content))
	copy(clone, content)
	s.blobs[locator] = clone
	return nil
}

// Load returns a copy of the content or shared.ErrArtifactNotFound.
func (s *ArtifactStore) Load(_ context.Context, locator string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	content, ok := s.blobs[locator]
	if !ok {
		return nil, shared.ErrArtifactNotFound
	}

	clone := make([]byte, len(content))
	copy(clone, content)
	return clone, nil
}

// Len reports the number of stored documents.
func (s *ArtifactStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
