package storage

import (
	"database/sql"
	"time"
)

// IngestionRepo provides methods for ingestion ledger operations.
type IngestionRepo struct {
	db *sql.DB
}

// NewIngestionRepo creates a new IngestionRepo.
func NewIngestionRepo(db *sql.DB) *IngestionRepo {
	return &IngestionRepo{db: db}
}

// Record writes the outcome for a filename, replacing any previous row.
// The ledger tracks only the latest run per file.
func (r *IngestionRepo) Record(ingestion Ingestion) error {
	_, err := r.db.Exec(
		`INSERT INTO ingestions (filename, point_id, outcome, detail, processed_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(filename) DO UPDATE SET
			point_id = excluded.point_id,
			outcome = excluded.outcome,
			detail = excluded.detail,
			processed_at = excluded.processed_at`,
		ingestion.Filename, ingestion.PointID, ingestion.Outcome,
		ingestion.Detail, ingestion.ProcessedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// GetByFilename returns the ledger row for a filename.
func (r *IngestionRepo) GetByFilename(filename string) (Ingestion, error) {
	var ing Ingestion
	var processedAtStr string
	err := r.db.QueryRow(
		"SELECT filename, point_id, outcome, detail, processed_at FROM ingestions WHERE filename = ?",
		filename,
	).Scan(&ing.Filename, &ing.PointID, &ing.Outcome, &ing.Detail, &processedAtStr)
	if err != nil {
		return Ingestion{}, err
	}

	ing.ProcessedAt, err = parseTimestamp(processedAtStr)
	if err != nil {
		return Ingestion{}, err
	}
	return ing, nil
}

// ListByOutcome returns all ledger rows with the given outcome, most
// recently processed first.
func (r *IngestionRepo) ListByOutcome(outcome string) ([]Ingestion, error) {
	rows, err := r.db.Query(
		"SELECT filename, point_id, outcome, detail, processed_at FROM ingestions WHERE outcome = ? ORDER BY processed_at DESC",
		outcome,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ingestions []Ingestion
	for rows.Next() {
		var ing Ingestion
		var processedAtStr string
		if err := rows.Scan(&ing.Filename, &ing.PointID, &ing.Outcome, &ing.Detail, &processedAtStr); err != nil {
			return nil, err
		}

		ing.ProcessedAt, err = parseTimestamp(processedAtStr)
		if err != nil {
			return nil, err
		}

		ingestions = append(ingestions, ing)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ingestions, nil
}

// CountByOutcome returns row counts keyed by outcome.
func (r *IngestionRepo) CountByOutcome() (map[string]int, error) {
	rows, err := r.db.Query(
		"SELECT outcome, COUNT(*) FROM ingestions GROUP BY outcome",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		counts[outcome] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// parseTimestamp handles the DATETIME string formats SQLite may store.
func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}
