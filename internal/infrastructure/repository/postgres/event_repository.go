package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	qb "github.com/cagewatch/live-tracker/internal/platform/querybuilder"
)

const eventColumns = "id, name, promotion, source_url, status, completion_source, starts_at, created_at, updated_at"

type EventRepository struct {
	db *sqlx.DB
}

func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) List(ctx context.Context) ([]event.Event, error) {
	query, args, err := qb.Select(eventColumns).
		From("events").
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select events query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select events: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *EventRepository) ListByStatus(ctx context.Context, status string) ([]event.Event, error) {
	query, args, err := qb.Select(eventColumns).
		From("events").
		Where(qb.Eq("status", event.NormalizeStatus(status))).
		OrderBy("starts_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select events by status query: %w", err)
	}

	var rows []eventTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select events by status: %w", err)
	}

	out := make([]event.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (event.Event, bool, error) {
	query, args, err := qb.Select(eventColumns).
		From("events").
		Where(qb.Eq("id", id)).
		Limit(1).
		ToSQL()
	if err != nil {
		return event.Event{}, false, fmt.Errorf("build select event query: %w", err)
	}

	var row eventTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return event.Event{}, false, nil
		}
		return event.Event{}, false, fmt.Errorf("select event by id: %w", err)
	}
	return row.toDomain(), true, nil
}

func (r *EventRepository) Update(ctx context.Context, id string, update event.Update) error {
	if update.IsZero() {
		return nil
	}

	builder := qb.Update("events")
	if update.Status != nil {
		builder.Set("status", event.NormalizeStatus(*update.Status))
	}
	if update.CompletionSource != nil {
		builder.Set("completion_source", *update.CompletionSource)
	}
	builder.Set("updated_at", time.Now().UTC())

	query, args, err := builder.Where(qb.Eq("id", id)).ToSQL()
	if err != nil {
		return fmt.Errorf("build update event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update event %s: %w", id, err)
	}
	return nil
}
