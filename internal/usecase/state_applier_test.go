package usecase

import (
	"context"
	"testing"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/infrastructure/repository/memory"
	"github.com/cagewatch/live-tracker/internal/scrape"
)

func applierFixture(t *testing.T) (*StateApplier, *memory.EventRepository, *memory.FightRepository) {
	t.Helper()
	eventRepo := memory.NewEventRepository([]event.Event{
		{ID: "ev1", Name: "Vegas Fight Night", Promotion: "mma", Status: event.StatusUpcoming},
	})
	fightRepo := memory.NewFightRepository([]fight.Fight{
		{ID: "f1", EventID: "ev1", OrderOnCard: 2, FighterA: "Jon Jones", FighterB: "Tom Aspinall", Status: fight.StatusUpcoming},
		{ID: "f2", EventID: "ev1", OrderOnCard: 1, FighterA: "Alex Pereira", FighterB: "Magomed Ankalaev", Status: fight.StatusUpcoming},
	})
	return NewStateApplier(eventRepo, fightRepo, "scraper", nil), eventRepo, fightRepo
}

func refreshMatched(t *testing.T, fightRepo *memory.FightRepository, pairs []MatchedFight) []MatchedFight {
	t.Helper()
	out := make([]MatchedFight, 0, len(pairs))
	for _, pair := range pairs {
		current, exists, err := fightRepo.GetByID(context.Background(), pair.Fight.ID)
		if err != nil || !exists {
			t.Fatalf("fight %s missing from repository", pair.Fight.ID)
		}
		out = append(out, MatchedFight{Observation: pair.Observation, Fight: current})
	}
	return out
}

func TestApplyBaselineWritesNothing(t *testing.T) {
	applier, _, fightRepo := applierFixture(t)

	applied, err := applier.Apply(context.Background(), "ev1", ChangeSet{Baseline: true}, nil)
	if err != nil {
		t.Fatalf("apply baseline: %v", err)
	}
	if applied != 0 {
		t.Fatalf("baseline must write nothing, wrote %d", applied)
	}

	stored, _, _ := fightRepo.GetByID(context.Background(), "f1")
	if stored.Status != fight.StatusUpcoming {
		t.Fatalf("fight must stay upcoming, got %s", stored.Status)
	}
}

func TestApplyFightCompletionWritesResultAsUnit(t *testing.T) {
	applier, _, fightRepo := applierFixture(t)

	round := 2
	obs := observation("Jon Jones", "Tom Aspinall")
	obs.StatusHint = scrape.HintComplete
	matched := []MatchedFight{{
		Observation: obs,
		Fight:       mustGetFight(t, fightRepo, "f1"),
	}}
	changeSet := ChangeSet{Changes: []Change{{
		Kind:    ChangeFightCompleted,
		FightID: "f1",
		Order:   2,
		Result: &scrape.ResultObservation{
			WinnerRawName: "Jones",
			Method:        "SUB",
			Round:         &round,
			Time:          "3:12",
		},
	}}}

	applied, err := applier.Apply(context.Background(), "ev1", changeSet, matched)
	if err != nil {
		t.Fatalf("apply completion: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected one write, got %d", applied)
	}

	stored := mustGetFight(t, fightRepo, "f1")
	if stored.Status != fight.StatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", stored.Status)
	}
	if stored.WinnerName != "Jon Jones" {
		t.Fatalf("winner must resolve to the persisted display name, got %q", stored.WinnerName)
	}
	if stored.Method != "SUB" || stored.ResultRound == nil || *stored.ResultRound != 2 || stored.ResultTime != "3:12" {
		t.Fatalf("result fields not written as a unit: %+v", stored)
	}
}

func TestApplyIsIdempotent(t *testing.T) {
	applier, _, fightRepo := applierFixture(t)

	obs := observation("Jon Jones", "Tom Aspinall")
	obs.StatusHint = scrape.HintComplete
	matched := []MatchedFight{{Observation: obs, Fight: mustGetFight(t, fightRepo, "f1")}}
	changeSet := ChangeSet{Changes: []Change{{
		Kind:    ChangeFightCompleted,
		FightID: "f1",
		Order:   2,
		Result:  &scrape.ResultObservation{WinnerRawName: "Jon Jones", Method: "KO"},
	}}}

	if _, err := applier.Apply(context.Background(), "ev1", changeSet, matched); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	applied, err := applier.Apply(context.Background(), "ev1", changeSet, refreshMatched(t, fightRepo, matched))
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if applied != 0 {
		t.Fatalf("replaying the same change set must write nothing, wrote %d", applied)
	}
}

func TestApplyNeverMovesFightBackward(t *testing.T) {
	applier, _, fightRepo := applierFixture(t)

	status := fight.StatusCompleted
	if err := fightRepo.Update(context.Background(), "f1", fight.Update{Status: &status}); err != nil {
		t.Fatalf("seed completed status: %v", err)
	}

	obs := observation("Jon Jones", "Tom Aspinall")
	obs.StatusHint = scrape.HintLive
	matched := []MatchedFight{{Observation: obs, Fight: mustGetFight(t, fightRepo, "f1")}}
	changeSet := ChangeSet{Changes: []Change{{Kind: ChangeFightStarted, FightID: "f1", Order: 2}}}

	applied, err := applier.Apply(context.Background(), "ev1", changeSet, matched)
	if err != nil {
		t.Fatalf("apply backward transition: %v", err)
	}
	if applied != 0 {
		t.Fatalf("completed fight must not move back to live, wrote %d", applied)
	}

	stored := mustGetFight(t, fightRepo, "f1")
	if stored.Status != fight.StatusCompleted {
		t.Fatalf("status changed to %s", stored.Status)
	}
}

func TestApplyCompletedFightIsClosedToResultEdits(t *testing.T) {
	applier, _, fightRepo := applierFixture(t)

	obs := observation("Jon Jones", "Tom Aspinall")
	obs.StatusHint = scrape.HintComplete
	first := ChangeSet{Changes: []Change{{
		Kind:    ChangeFightCompleted,
		FightID: "f1",
		Result:  &scrape.ResultObservation{WinnerRawName: "Jon Jones", Method: "KO"},
	}}}
	matched := []MatchedFight{{Observation: obs, Fight: mustGetFight(t, fightRepo, "f1")}}
	if _, err := applier.Apply(context.Background(), "ev1", first, matched); err != nil {
		t.Fatalf("first apply: %v", err)
	}

	second := ChangeSet{Changes: []Change{{
		Kind:    ChangeFightCompleted,
		FightID: "f1",
		Result:  &scrape.ResultObservation{WinnerRawName: "Tom Aspinall", Method: "SD"},
	}}}
	applied, err := applier.Apply(context.Background(), "ev1", second, refreshMatched(t, fightRepo, matched))
	if err != nil {
		t.Fatalf("second apply: %v", err)
	}
	if applied != 0 {
		t.Fatalf("settled result must not be overwritten, wrote %d", applied)
	}

	stored := mustGetFight(t, fightRepo, "f1")
	if stored.WinnerName != "Jon Jones" || stored.Method != "KO" {
		t.Fatalf("settled result changed: %+v", stored)
	}
}

func TestApplyEventCompletionStampsSourceOnce(t *testing.T) {
	applier, eventRepo, _ := applierFixture(t)

	changeSet := ChangeSet{Changes: []Change{{Kind: ChangeEventCompleted}}}
	applied, err := applier.Apply(context.Background(), "ev1", changeSet, nil)
	if err != nil {
		t.Fatalf("apply event completion: %v", err)
	}
	if applied != 1 {
		t.Fatalf("expected one write, got %d", applied)
	}

	stored, _, _ := eventRepo.GetByID(context.Background(), "ev1")
	if stored.Status != event.StatusComplete {
		t.Fatalf("expected COMPLETE, got %s", stored.Status)
	}
	if stored.CompletionSource != "scraper" {
		t.Fatalf("expected completion source stamped, got %q", stored.CompletionSource)
	}

	applied, err = applier.Apply(context.Background(), "ev1", changeSet, nil)
	if err != nil {
		t.Fatalf("replay event completion: %v", err)
	}
	if applied != 0 {
		t.Fatalf("completed event must not be written again, wrote %d", applied)
	}
}

func mustGetFight(t *testing.T, repo *memory.FightRepository, id string) fight.Fight {
	t.Helper()
	stored, exists, err := repo.GetByID(context.Background(), id)
	if err != nil || !exists {
		t.Fatalf("fight %s missing from repository", id)
	}
	return stored
}
