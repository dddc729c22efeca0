package fight

import "context"

// Update carries the minimal field set one change application writes. Nil
// fields are left untouched; Scorecards only written when non-nil.
type Update struct {
	Status      *string
	WinnerName  *string
	Method      *string
	ResultRound *int
	ResultTime  *string
	Scorecards  []string
	Notified    *bool
}

func (u Update) IsZero() bool {
	return u.Status == nil &&
		u.WinnerName == nil &&
		u.Method == nil &&
		u.ResultRound == nil &&
		u.ResultTime == nil &&
		u.Scorecards == nil &&
		u.Notified == nil
}

// Repository describes fight persistence needs from use cases. The pipeline
// never creates or deletes fights, it only reads and updates them.
type Repository interface {
	ListByEvent(ctx context.Context, eventID string) ([]Fight, error)
	GetByID(ctx context.Context, fightID string) (Fight, bool, error)
	Update(ctx context.Context, fightID string, update Update) error
	// NextUpcomingBefore returns the not-yet-notified UPCOMING fight with the
	// highest card order strictly below the given one, i.e. the next bout up.
	NextUpcomingBefore(ctx context.Context, eventID string, order int) (Fight, bool, error)
}
