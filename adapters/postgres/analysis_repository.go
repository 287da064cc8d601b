package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"gowelch/domain/analysis"
	"gowelch/domain/core"
	"gowelch/ports"
)

// analysisRepository implements ports.AnalysisRepository on the welch_analyses table
type analysisRepository struct {
	db *sqlx.DB
}

// NewAnalysisRepository creates a new analysis repository
func NewAnalysisRepository(db *sqlx.DB) ports.AnalysisRepository {
	return &analysisRepository{db: db}
}

type summaryRow struct {
	ID          string    `db:"id"`
	Group1Label string    `db:"group1_label"`
	Group2Label string    `db:"group2_label"`
	TStatistic  float64   `db:"t_statistic"`
	PValue      float64   `db:"p_value"`
	Significant bool      `db:"significant"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row summaryRow) toSummary() analysis.Summary {
	return analysis.Summary{
		ID:          core.AnalysisID(row.ID),
		Group1Label: row.Group1Label,
		Group2Label: row.Group2Label,
		TStatistic:  row.TStatistic,
		PValue:      row.PValue,
		Significant: row.Significant,
		CreatedAt:   core.NewTimestamp(row.CreatedAt.UTC()),
	}
}

// Save inserts the analysis, replacing any existing row with the same ID
func (r *analysisRepository) Save(ctx context.Context, a *analysis.Analysis) error {
	if a.ID == "" {
		a.ID = core.NewAnalysisID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = core.Now()
	}

	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	query := `
		INSERT INTO welch_analyses (
			id, input_hash, group1_label, group2_label, t_statistic, p_value, significant, payload, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			input_hash = EXCLUDED.input_hash,
			group1_label = EXCLUDED.group1_label,
			group2_label = EXCLUDED.group2_label,
			t_statistic = EXCLUDED.t_statistic,
			p_value = EXCLUDED.p_value,
			significant = EXCLUDED.significant,
			payload = EXCLUDED.payload`

	s := a.Summarize()
	_, err = r.db.ExecContext(ctx, query,
		a.ID.String(), a.InputHash.String(), s.Group1Label, s.Group2Label,
		s.TStatistic, s.PValue, s.Significant, payload, a.CreatedAt.Time(),
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

// GetByID loads the full analysis payload
func (r *analysisRepository) GetByID(ctx context.Context, id core.AnalysisID) (*analysis.Analysis, error) {
	var payload []byte
	err := r.db.GetContext(ctx, &payload, `SELECT payload FROM welch_analyses WHERE id = $1`, id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", core.ErrAnalysisNotFound, id)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	var a analysis.Analysis
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analysis %s: %w", id, err)
	}
	return &a, nil
}

// List returns the most recent analyses
func (r *analysisRepository) List(ctx context.Context, limit int) ([]analysis.Summary, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []summaryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, group1_label, group2_label, t_statistic, p_value, significant, created_at
		FROM welch_analyses
		ORDER BY created_at DESC, id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return toSummaries(rows), nil
}

// FindByInputHash returns analyses with matching input fingerprints
func (r *analysisRepository) FindByInputHash(ctx context.Context, hash core.InputHash) ([]analysis.Summary, error) {
	var rows []summaryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, group1_label, group2_label, t_statistic, p_value, significant, created_at
		FROM welch_analyses
		WHERE input_hash = $1
		ORDER BY created_at DESC, id DESC`, hash.String())
	if err != nil {
		return nil, fmt.Errorf("failed to find analyses by input hash: %w", err)
	}
	return toSummaries(rows), nil
}

func toSummaries(rows []summaryRow) []analysis.Summary {
	out := make([]analysis.Summary, len(rows))
	for i, row := range rows {
		out[i] = row.toSummary()
	}
	return out
}
