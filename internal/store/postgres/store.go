package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/session"
)

var _ ports.SessionStore = (*DB)(nil)

// Save upserts the snapshot for id.
func (db *DB) Save(ctx context.Context, id string, snap session.Snapshot) error {
	responses, err := json.Marshal(nonNilResponses(snap.Responses))
	if err != nil {
		return fmt.Errorf("encode responses: %w", err)
	}
	history, err := json.Marshal(nonNilHistory(snap.ScoreHistory))
	if err != nil {
		return fmt.Errorf("encode score history: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO assessment_sessions (id, archetype_id, responses, score_history)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			archetype_id  = EXCLUDED.archetype_id,
			responses     = EXCLUDED.responses,
			score_history = EXCLUDED.score_history,
			updated_at    = now()
	`, id, int(snap.ArchetypeID), responses, history)
	if err != nil {
		return fmt.Errorf("save session %s: %w", id, err)
	}
	return nil
}

// Load returns the snapshot for id or ports.ErrNotFound.
func (db *DB) Load(ctx context.Context, id string) (session.Snapshot, error) {
	var archetype int
	var responses, history []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT archetype_id, responses, score_history
		FROM assessment_sessions
		WHERE id = $1
	`, id).Scan(&archetype, &responses, &history)
	if errors.Is(err, pgx.ErrNoRows) {
		return session.Snapshot{}, fmt.Errorf("session %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("load session %s: %w", id, err)
	}

	snap := session.Snapshot{ArchetypeID: model.ArchetypeID(archetype)}
	if err := json.Unmarshal(responses, &snap.Responses); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode responses of %s: %w", id, err)
	}
	if err := json.Unmarshal(history, &snap.ScoreHistory); err != nil {
		return session.Snapshot{}, fmt.Errorf("decode score history of %s: %w", id, err)
	}
	return snap, nil
}

// Delete removes the snapshot for id.
func (db *DB) Delete(ctx context.Context, id string) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM assessment_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}

// Purge deletes sessions not saved within ttl and returns how many.
func (db *DB) Purge(ctx context.Context, ttl time.Duration) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM assessment_sessions WHERE updated_at < $1`, time.Now().Add(-ttl))
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// SaveReport appends a finished report.
func (db *DB) SaveReport(ctx context.Context, r *model.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO assessment_reports (subject, archetype_id, score, stage, report, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, r.Subject, int(r.Classification.Archetype), r.Composite.Score, string(r.Composite.Stage), data, r.AssessedAt)
	if err != nil {
		return fmt.Errorf("save report for %s: %w", r.Subject, err)
	}
	return nil
}

// ReportHistory returns up to limit reports for subject, newest first.
func (db *DB) ReportHistory(ctx context.Context, subject string, limit int) ([]model.Report, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT report
		FROM assessment_reports
		WHERE subject = $1
		ORDER BY assessed_at DESC
		LIMIT $2
	`, subject, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports for %s: %w", subject, err)
	}
	defer rows.Close()

	reports := []model.Report{}
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var r model.Report
		if err := json.Unmarshal(data, &r); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func nonNilResponses(r []model.DimensionResponse) []model.DimensionResponse {
	if r == nil {
		return []model.DimensionResponse{}
	}
	return r
}

func nonNilHistory(h []model.ScoreEntry) []model.ScoreEntry {
	if h == nil {
		return []model.ScoreEntry{}
	}
	return h
}
