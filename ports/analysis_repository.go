package ports

import (
	"context"

	"gowelch/domain/analysis"
	"gowelch/domain/core"
)

// AnalysisRepository stores evaluated analyses.
type AnalysisRepository interface {
	// Save assigns an ID and creation time when they are unset.
	Save(ctx context.Context, a *analysis.Analysis) error
	// GetByID returns core.ErrAnalysisNotFound for unknown IDs.
	GetByID(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error)
	// List returns the newest analyses first.
	List(ctx context.Context, limit int) ([]analysis.Summary, error)
	// FindByInputHash returns analyses with identical numeric inputs, newest first.
	FindByInputHash(ctx context.Context, hash core.InputHash) ([]analysis.Summary, error)
}
