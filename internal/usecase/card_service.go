package usecase

import (
	"context"
	"fmt"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
)

// CardService is the read surface over events and their fight cards.
type CardService struct {
	eventRepo event.Repository
	fightRepo fight.Repository
}

func NewCardService(eventRepo event.Repository, fightRepo fight.Repository) *CardService {
	return &CardService{eventRepo: eventRepo, fightRepo: fightRepo}
}

func (s *CardService) ListEvents(ctx context.Context, status string) ([]event.Event, error) {
	if status == "" {
		events, err := s.eventRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		return events, nil
	}

	normalized := event.NormalizeStatus(status)
	switch normalized {
	case event.StatusUpcoming, event.StatusLive, event.StatusComplete:
	default:
		return nil, fmt.Errorf("%w: unknown event status %q", ErrInvalidInput, status)
	}
	events, err := s.eventRepo.ListByStatus(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("list events by status: %w", err)
	}
	return events, nil
}

func (s *CardService) GetEvent(ctx context.Context, eventID string) (event.Event, error) {
	item, exists, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return event.Event{}, fmt.Errorf("get event: %w", err)
	}
	if !exists {
		return event.Event{}, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}
	return item, nil
}

// ListFights returns the card for an event ordered main event first.
func (s *CardService) ListFights(ctx context.Context, eventID string) ([]fight.Fight, error) {
	if _, err := s.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	fights, err := s.fightRepo.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list fights: %w", err)
	}
	return fights, nil
}
