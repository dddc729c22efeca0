package memory

import (
	"time"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
)

const (
	EventIDVegasFightNight = "mma-vegas-fight-night-2026"
	EventIDRiyadhTitleCard = "box-riyadh-title-card-2026"
)

func SeedEvents() []event.Event {
	return []event.Event{
		{
			ID:        EventIDVegasFightNight,
			Name:      "Vegas Fight Night",
			Promotion: "mma",
			SourceURL: "https://example.com/events/vegas-fight-night",
			Status:    event.StatusUpcoming,
			StartsAt:  time.Date(2026, time.September, 12, 22, 0, 0, 0, time.UTC),
		},
		{
			ID:        EventIDRiyadhTitleCard,
			Name:      "Riyadh Title Card",
			Promotion: "boxing",
			SourceURL: "https://example.com/events/riyadh-title-card",
			Status:    event.StatusUpcoming,
			StartsAt:  time.Date(2026, time.October, 3, 20, 0, 0, 0, time.UTC),
		},
	}
}

func SeedFights() []fight.Fight {
	return []fight.Fight{
		{ID: "mma-vfn-main", EventID: EventIDVegasFightNight, OrderOnCard: 5, FighterA: "Jon Jones", FighterB: "Tom Aspinall", Status: fight.StatusUpcoming},
		{ID: "mma-vfn-co", EventID: EventIDVegasFightNight, OrderOnCard: 4, FighterA: "Alex Pereira", FighterB: "Magomed Ankalaev", Status: fight.StatusUpcoming},
		{ID: "mma-vfn-3", EventID: EventIDVegasFightNight, OrderOnCard: 3, FighterA: "Sean O'Malley", FighterB: "Merab Dvalishvili", Status: fight.StatusUpcoming},
		{ID: "mma-vfn-2", EventID: EventIDVegasFightNight, OrderOnCard: 2, FighterA: "José Aldo", FighterB: "Petr Yan", Status: fight.StatusUpcoming},
		{ID: "mma-vfn-1", EventID: EventIDVegasFightNight, OrderOnCard: 1, FighterA: "Paddy Pimblett", FighterB: "Renato Moicano", Status: fight.StatusUpcoming},
		{ID: "box-rtc-main", EventID: EventIDRiyadhTitleCard, OrderOnCard: 3, FighterA: "Tyson Fury", FighterB: "Oleksandr Usyk", Status: fight.StatusUpcoming},
		{ID: "box-rtc-co", EventID: EventIDRiyadhTitleCard, OrderOnCard: 2, FighterA: "Anthony Joshua", FighterB: "Daniel Dubois", Status: fight.StatusUpcoming},
		{ID: "box-rtc-1", EventID: EventIDRiyadhTitleCard, OrderOnCard: 1, FighterA: "Ben Whittaker", FighterB: "Liam Cameron", Status: fight.StatusUpcoming},
	}
}
