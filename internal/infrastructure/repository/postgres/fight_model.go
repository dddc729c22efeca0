package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/cagewatch/live-tracker/internal/domain/fight"
)

type fightTableModel struct {
	ID          string         `db:"id"`
	EventID     string         `db:"event_id"`
	OrderOnCard int            `db:"order_on_card"`
	FighterA    string         `db:"fighter_a"`
	FighterB    string         `db:"fighter_b"`
	Status      string         `db:"status"`
	WinnerName  sql.NullString `db:"winner_name"`
	Method      sql.NullString `db:"method"`
	ResultRound sql.NullInt64  `db:"result_round"`
	ResultTime  sql.NullString `db:"result_time"`
	Scorecards  pq.StringArray `db:"scorecards"`
	Notified    bool           `db:"notified"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (m fightTableModel) toDomain() fight.Fight {
	out := fight.Fight{
		ID:          m.ID,
		EventID:     m.EventID,
		OrderOnCard: m.OrderOnCard,
		FighterA:    m.FighterA,
		FighterB:    m.FighterB,
		Status:      m.Status,
		WinnerName:  m.WinnerName.String,
		Method:      m.Method.String,
		ResultTime:  m.ResultTime.String,
		Scorecards:  append([]string(nil), m.Scorecards...),
		Notified:    m.Notified,
	}
	if m.ResultRound.Valid {
		round := int(m.ResultRound.Int64)
		out.ResultRound = &round
	}
	if len(out.Scorecards) == 0 {
		out.Scorecards = nil
	}
	return out
}
