package memory

import (
	"context"
	"sync"

	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// Catalog is an in-memory report catalog, listed newest first.
type Catalog struct {
	mu        sync.RWMutex
	artifacts []*report.Artifact

	RecordErr error
	ListErr   error
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Record prepends the entry so List returns newest first.
func (c *Catalog) Record(_ context.Context, artifact *report.Artifact) error {
	if c.RecordErr != nil {
		return c.RecordErr
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	clone := *artifact
	c.artifacts = append([]*report.Artifact{&clone}, c.artifacts...)
	return nil
}

// List returns matching entries, newest first.
func (c *Catalog) List(_ context.Context, filter report.ListFilter) ([]*report.Artifact, error) {
	if c.ListErr != nil {
		return nil, c.ListErr
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []*report.Artifact
	for _, a := range c.artifacts {
		if filter.SubjectID != "" && a.SubjectID != filter.SubjectID {
			continue
		}
		if !filter.Term.IsZero() && a.Term != filter.Term {
			continue
		}
		clone := *a
		out = append(out, &clone)
	}
	return out, nil
}

// FindByLocator returns the entry or shared.ErrReportNotFound.
func (c *Catalog) FindByLocator(_ context.Context, locator string) (*report.Artifact, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, a := range c.artifacts {
		if a.Locator == locator {
			clone := *a
			return &clone, nil
		}
	}
	return nil, shared.ErrReportNotFound
}

// Len reports the number of cataloged entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.artifacts)
}
