package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/cagewatch/live-tracker/internal/infrastructure/repository/memory"
	qb "github.com/cagewatch/live-tracker/internal/platform/querybuilder"
)

// BootstrapSeed loads the demo cards into an empty database so a fresh
// install has something to track. Populated databases are left untouched.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM events`); err != nil {
		return fmt.Errorf("count events for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range memory.SeedEvents() {
		query, args, err := qb.InsertInto("events").
			Columns("id", "name", "promotion", "source_url", "status", "starts_at").
			Values(item.ID, item.Name, item.Promotion, item.SourceURL, item.Status, item.StartsAt).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build seed event %s query: %w", item.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed event %s: %w", item.ID, err)
		}
	}

	for _, item := range memory.SeedFights() {
		query, args, err := qb.InsertInto("fights").
			Columns("id", "event_id", "order_on_card", "fighter_a", "fighter_b", "status").
			Values(item.ID, item.EventID, item.OrderOnCard, item.FighterA, item.FighterB, item.Status).
			Suffix("ON CONFLICT (id) DO NOTHING").
			ToSQL()
		if err != nil {
			return fmt.Errorf("build seed fight %s query: %w", item.ID, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("seed fight %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	return nil
}
