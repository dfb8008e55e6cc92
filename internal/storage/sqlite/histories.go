package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/careloop/intakebot/internal/core"
)

type HistoriesRepo struct {
	db *sql.DB
}

func NewHistoriesRepo(db *sql.DB) *HistoriesRepo {
	return &HistoriesRepo{db: db}
}

// SaveHistory appends one terminal extraction record. The summary is stored
// as JSON so downstream consumers keep the six-section shape.
func (r *HistoriesRepo) SaveHistory(ctx context.Context, rec core.HistoryRecord) error {
	summary, err := json.Marshal(rec.Summary)
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}

	query := `INSERT INTO histories (id, patient_id, session_id, summary, source, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, query, rec.ID, rec.PatientID, rec.SessionID, string(summary), rec.Source, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// GetHistoriesByPatient returns a patient's records, newest first.
func (r *HistoriesRepo) GetHistoriesByPatient(ctx context.Context, patientID string, limit int) ([]core.HistoryRecord, error) {
	query := `SELECT id, patient_id, session_id, summary, source, created_at FROM histories WHERE patient_id = ? ORDER BY created_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, patientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query histories: %w", err)
	}
	defer rows.Close()

	var out []core.HistoryRecord
	for rows.Next() {
		var rec core.HistoryRecord
		var summary sql.NullString
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.SessionID, &summary, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		if summary.Valid && summary.String != "" {
			if err := json.Unmarshal([]byte(summary.String), &rec.Summary); err != nil {
				return nil, fmt.Errorf("failed to unmarshal summary: %w", err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
