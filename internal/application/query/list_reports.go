package query

import (
	"context"

	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// ListReportsQuery filters the report catalog. Both fields are optional.
type ListReportsQuery struct {
	SubjectID string
	Term      string
}

// ListReportsResult carries catalog entries, newest first.
type ListReportsResult struct {
	Reports []*report.Artifact `json:"reports"`
	Count   int                `json:"count"`
}

// ListReportsHandler lists the catalog.
type ListReportsHandler struct {
	catalog report.Catalog
}

// NewListReportsHandler creates the handler.
func NewListReportsHandler(catalog report.Catalog) *ListReportsHandler {
	return &ListReportsHandler{catalog: catalog}
}

// Handle builds the filter and lists. An unknown subject or term simply
// matches nothing.
func (h *ListReportsHandler) Handle(ctx context.Context, q ListReportsQuery) (*ListReportsResult, error) {
	filter := report.ListFilter{}

	if q.SubjectID != "" {
		id, err := shared.ParseEntityID(q.SubjectID)
		if err != nil {
			return nil, shared.WrapError("report", "List", shared.ErrInvalidID, "invalid subject ID", err)
		}
		filter.SubjectID = id
	}
	if q.Term != "" {
		term, err := shared.NewTerm(q.Term)
		if err != nil {
			return nil, err
		}
		filter.Term = term
	}

	artifacts, err := h.catalog.List(ctx, filter)
	if err != nil {
		return nil, shared.WrapError("report", "List", shared.ErrDependencyUnavailable, "catalog list failed", err)
	}
	if artifacts == nil {
		artifacts = []*report.Artifact{}
	}

	return &ListReportsResult{Reports: artifacts, Count: len(artifacts)}, nil
}
