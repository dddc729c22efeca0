package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/cagewatch/live-tracker/internal/domain/fight"
	qb "github.com/cagewatch/live-tracker/internal/platform/querybuilder"
)

const fightColumns = "id, event_id, order_on_card, fighter_a, fighter_b, status, winner_name, method, result_round, result_time, scorecards, notified, created_at, updated_at"

type FightRepository struct {
	db *sqlx.DB
}

func NewFightRepository(db *sqlx.DB) *FightRepository {
	return &FightRepository{db: db}
}

func (r *FightRepository) ListByEvent(ctx context.Context, eventID string) ([]fight.Fight, error) {
	query, args, err := qb.Select(fightColumns).
		From("fights").
		Where(qb.Eq("event_id", eventID)).
		OrderBy("order_on_card DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fights query: %w", err)
	}

	var rows []fightTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fights by event: %w", err)
	}

	out := make([]fight.Fight, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *FightRepository) GetByID(ctx context.Context, id string) (fight.Fight, bool, error) {
	query, args, err := qb.Select(fightColumns).
		From("fights").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return fight.Fight{}, false, fmt.Errorf("build select fight query: %w", err)
	}

	var row fightTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fight.Fight{}, false, nil
		}
		return fight.Fight{}, false, fmt.Errorf("select fight by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *FightRepository) Update(ctx context.Context, id string, update fight.Update) error {
	if update.IsZero() {
		return nil
	}

	builder := qb.Update("fights")
	if update.Status != nil {
		builder.Set("status", fight.NormalizeStatus(*update.Status))
	}
	if update.WinnerName != nil {
		builder.Set("winner_name", *update.WinnerName)
	}
	if update.Method != nil {
		builder.Set("method", *update.Method)
	}
	if update.ResultRound != nil {
		builder.Set("result_round", *update.ResultRound)
	}
	if update.ResultTime != nil {
		builder.Set("result_time", *update.ResultTime)
	}
	if len(update.Scorecards) > 0 {
		builder.Set("scorecards", pq.StringArray(update.Scorecards))
	}
	if update.Notified != nil {
		builder.Set("notified", *update.Notified)
	}
	builder.Set("updated_at", time.Now().UTC())

	query, args, err := builder.Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update fight query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update fight %s: %w", id, err)
	}
	return nil
}

// NextUpcomingBefore finds the not-yet-notified upcoming fight with the
// highest card position strictly below order.
func (r *FightRepository) NextUpcomingBefore(ctx context.Context, eventID string, order int) (fight.Fight, bool, error) {
	query, args, err := qb.Select(fightColumns).
		From("fights").
		Where(
			qb.Eq("event_id", eventID),
			qb.Eq("status", fight.StatusUpcoming),
			qb.Eq("notified", false),
			qb.Lt("order_on_card", order),
		).
		OrderBy("order_on_card DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return fight.Fight{}, false, fmt.Errorf("build select next upcoming fight query: %w", err)
	}

	var row fightTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fight.Fight{}, false, nil
		}
		return fight.Fight{}, false, fmt.Errorf("select next upcoming fight: %w", err)
	}
	return row.toDomain(), true, nil
}
