// Package memory provides process-local repository implementations used when
// no database is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gowelch/domain/analysis"
	"gowelch/domain/core"
	"gowelch/ports"
)

type analysisRepository struct {
	mu       sync.RWMutex
	analyses map[core.AnalysisID]analysis.Analysis
}

// NewAnalysisRepository creates an empty in-memory analysis store.
func NewAnalysisRepository() ports.AnalysisRepository {
	return &analysisRepository{analyses: make(map[core.AnalysisID]analysis.Analysis)}
}

func (r *analysisRepository) Save(ctx context.Context, a *analysis.Analysis) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = core.NewAnalysisID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = core.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.analyses[a.ID] = *a
	return nil
}

func (r *analysisRepository) GetByID(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.analyses[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrAnalysisNotFound, id)
	}
	return &a, nil
}

func (r *analysisRepository) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	return r.filter(ctx, limit, func(analysis.Analysis) bool { return true })
}

func (r *analysisRepository) FindByInputHash(ctx context.Context, hash core.InputHash) ([]analysis.Summary, error) {
	return r.filter(ctx, 0, func(a analysis.Analysis) bool { return a.InputHash == hash })
}

// filter returns matching summaries newest first; limit <= 0 means no limit.
func (r *analysisRepository) filter(ctx context.Context, limit int, keep func(analysis.Analysis) bool) ([]analysis.Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]analysis.Summary, 0, len(r.analyses))
	for _, a := range r.analyses {
		if keep(a) {
			out = append(out, a.Summarize())
		}
	}
	r.mu.RUnlock()

	// v7 IDs sort by creation time, which breaks ties between equal timestamps
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].CreatedAt.Time(), out[j].CreatedAt.Time()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
