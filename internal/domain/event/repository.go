package event

import "context"

// Update carries the fields a pipeline pass may change on an event. Nil fields
// are left untouched.
type Update struct {
	Status           *string
	CompletionSource *string
}

func (u Update) IsZero() bool {
	return u.Status == nil && u.CompletionSource == nil
}

// Repository describes event persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Event, error)
	ListByStatus(ctx context.Context, status string) ([]Event, error)
	GetByID(ctx context.Context, eventID string) (Event, bool, error)
	Update(ctx context.Context, eventID string, update Update) error
}
