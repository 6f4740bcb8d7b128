package query

import (
	"context"
	"errors"

	"github.com/digitschool/academic-core/internal/domain/report"
	"github.com/digitschool/academic-core/internal/domain/shared"
)

// GetReportQuery retrieves one generated document by locator.
type GetReportQuery struct {
	Locator string
}

// GetReportResult carries the catalog entry plus the document bytes.
type GetReportResult struct {
	Artifact *report.Artifact `json:"report"`
	Content  []byte           `json:"-"`
}

// GetReportHandler resolves a locator through the catalog and loads the
// bytes from the artifact store.
type GetReportHandler struct {
	catalog report.Catalog
	store   report.ArtifactStore
}

// NewGetReportHandler creates the handler.
func NewGetReportHandler(catalog report.Catalog, store report.ArtifactStore) *GetReportHandler {
	return &GetReportHandler{catalog: catalog, store: store}
}

// Handle looks the locator up in the catalog first so an uncataloged file
// on disk is never served, then loads the bytes. A cataloged entry whose
// bytes are gone surfaces shared.ErrArtifactNotFound.
func (h *GetReportHandler) Handle(ctx context.Context, q GetReportQuery) (*GetReportResult, error) {
	if q.Locator == "" {
		return nil, shared.NewDomainError("report", "Get", shared.ErrEmptyValue, "locator is required")
	}

	artifact, err := h.catalog.FindByLocator(ctx, q.Locator)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, shared.ErrReportNotFound
		}
		return nil, err
	}

	content, err := h.store.Load(ctx, artifact.Locator)
	if err != nil {
		if errors.Is(err, shared.ErrArtifactNotFound) || shared.IsNotFound(err) {
			return nil, shared.ErrArtifactNotFound
		}
		return nil, shared.WrapError("report", "Get", shared.ErrDependencyUnavailable, "artifact load failed", err)
	}

	return &GetReportResult{Artifact: artifact, Content: content}, nil
}
