package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cagewatch/live-tracker/internal/domain/rawdata"
	qb "github.com/cagewatch/live-tracker/internal/platform/querybuilder"
)

type RawSnapshotRepository struct {
	db *sqlx.DB
}

func NewRawSnapshotRepository(db *sqlx.DB) *RawSnapshotRepository {
	return &RawSnapshotRepository{db: db}
}

func (r *RawSnapshotRepository) Insert(ctx context.Context, snapshot rawdata.Snapshot) error {
	query, args, err := qb.InsertInto("raw_snapshots").
		Columns("event_id", "promotion", "payload", "scraped_at").
		Values(snapshot.EventID, snapshot.Promotion, snapshot.PayloadJSON, snapshot.ScrapedAt).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build insert raw snapshot query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert raw snapshot event=%s: %w", snapshot.EventID, err)
	}
	return nil
}
