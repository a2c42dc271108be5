package persist

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// RetiredRecord is one retirement event bound for the store. The UUID is
// assigned per event, so retrying an insert is idempotent.
type RetiredRecord struct {
	UUID       uuid.UUID
	Name       string
	Score      int
	PlayTimeMS int64
}

// RecordView is one row of the public records listing. PlayTime is in
// seconds; the store keeps milliseconds.
type RecordView struct {
	Name     string  `json:"name"`
	Score    int     `json:"score"`
	PlayTime float64 `json:"playTime"`
}

// RecordRepo reads and writes retired_players.
type RecordRepo struct {
	db *DB
}

func NewRecordRepo(db *DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// Insert writes a batch of retirement records in one transaction.
// Conflicting UUIDs (a retried batch that partially landed) are skipped.
func (r *RecordRepo) Insert(ctx context.Context, records []RetiredRecord) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("records begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range records {
		if _, err := tx.Exec(ctx,
			`INSERT INTO retired_players (uuid, name, score, playTime)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (uuid) DO NOTHING`,
			rec.UUID, rec.Name, rec.Score, float64(rec.PlayTimeMS),
		); err != nil {
			return fmt.Errorf("records insert: %w", err)
		}
	}

	return tx.Commit(ctx)
}

// Records returns rows ordered by (score DESC, playTime ASC, name ASC).
func (r *RecordRepo) Records(ctx context.Context, start, maxItems int) ([]RecordView, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT name, score, playTime
		 FROM retired_players
		 ORDER BY score DESC, playTime ASC, name ASC
		 LIMIT $1 OFFSET $2`,
		maxItems, start,
	)
	if err != nil {
		return nil, fmt.Errorf("records select: %w", err)
	}
	defer rows.Close()

	views := make([]RecordView, 0, maxItems)
	for rows.Next() {
		var v RecordView
		var playTimeMS float64
		if err := rows.Scan(&v.Name, &v.Score, &playTimeMS); err != nil {
			return nil, fmt.Errorf("records scan: %w", err)
		}
		v.PlayTime = playTimeMS / 1000
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records rows: %w", err)
	}
	return views, nil
}
