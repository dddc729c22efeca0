package postgres

import (
	"database/sql"
	"time"

	"github.com/cagewatch/live-tracker/internal/domain/event"
)

type eventTableModel struct {
	ID               string         `db:"id"`
	Name             string         `db:"name"`
	Promotion        string         `db:"promotion"`
	SourceURL        string         `db:"source_url"`
	Status           string         `db:"status"`
	CompletionSource sql.NullString `db:"completion_source"`
	StartsAt         time.Time      `db:"starts_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

func (m eventTableModel) toDomain() event.Event {
	return event.Event{
		ID:               m.ID,
		Name:             m.Name,
		Promotion:        m.Promotion,
		SourceURL:        m.SourceURL,
		Status:           m.Status,
		CompletionSource: m.CompletionSource.String,
		StartsAt:         m.StartsAt,
	}
}
