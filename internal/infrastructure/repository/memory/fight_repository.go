package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/cagewatch/live-tracker/internal/domain/fight"
)

type FightRepository struct {
	mu     sync.RWMutex
	fights map[string]fight.Fight
}

func NewFightRepository(fights []fight.Fight) *FightRepository {
	byID := make(map[string]fight.Fight, len(fights))
	for _, item := range fights {
		byID[item.ID] = item
	}
	return &FightRepository{fights: byID}
}

func (r *FightRepository) ListByEvent(_ context.Context, eventID string) ([]fight.Fight, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fight.Fight, 0, len(r.fights))
	for _, item := range r.fights {
		if item.EventID == eventID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderOnCard > out[j].OrderOnCard })
	return out, nil
}

func (r *FightRepository) GetByID(_ context.Context, id string) (fight.Fight, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, exists := r.fights[id]
	return item, exists, nil
}

func (r *FightRepository) Update(_ context.Context, id string, update fight.Update) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, exists := r.fights[id]
	if !exists {
		return nil
	}
	if update.Status != nil {
		item.Status = *update.Status
	}
	if update.WinnerName != nil {
		item.WinnerName = *update.WinnerName
	}
	if update.Method != nil {
		item.Method = *update.Method
	}
	if update.ResultRound != nil {
		round := *update.ResultRound
		item.ResultRound = &round
	}
	if update.ResultTime != nil {
		item.ResultTime = *update.ResultTime
	}
	if len(update.Scorecards) > 0 {
		item.Scorecards = append([]string(nil), update.Scorecards...)
	}
	if update.Notified != nil {
		item.Notified = *update.Notified
	}
	r.fights[id] = item
	return nil
}

func (r *FightRepository) NextUpcomingBefore(_ context.Context, eventID string, order int) (fight.Fight, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best fight.Fight
	found := false
	for _, item := range r.fights {
		if item.EventID != eventID || item.Notified {
			continue
		}
		if fight.NormalizeStatus(item.Status) != fight.StatusUpcoming {
			continue
		}
		if item.OrderOnCard >= order {
			continue
		}
		if !found || item.OrderOnCard > best.OrderOnCard {
			best = item
			found = true
		}
	}
	return best, found, nil
}
