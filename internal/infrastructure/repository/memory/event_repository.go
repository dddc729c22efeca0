package memory

import (
	"context"
	"sync"

	"github.com/cagewatch/live-tracker/internal/domain/event"
)

type EventRepository struct {
	mu     sync.RWMutex
	events map[string]event.Event
	order  []string
}

func NewEventRepository(events []event.Event) *EventRepository {
	byID := make(map[string]event.Event, len(events))
	order := make([]string, 0, len(events))
	for _, item := range events {
		if _, exists := byID[item.ID]; !exists {
			order = append(order, item.ID)
		}
		byID[item.ID] = item
	}
	return &EventRepository{events: byID, order: order}
}

func (r *EventRepository) List(_ context.Context) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]event.Event, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.events[id])
	}
	return out, nil
}

func (r *EventRepository) ListByStatus(_ context.Context, status string) ([]event.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status = event.NormalizeStatus(status)
	out := make([]event.Event, 0, len(r.order))
	for _, id := range r.order {
		item := r.events[id]
		if event.NormalizeStatus(item.Status) == status {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *EventRepository) GetByID(_ context.Context, id string) (event.Event, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.events[id]
	return item, exists, nil
}

func (r *EventRepository) Update(_ context.Context, id string, update event.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.events[id]
	if !exists {
		return nil
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.CompletionSource != nil {
		item.CompletionSource = *update.CompletionSource
	}
	r.events[id] = item
	return nil
}
