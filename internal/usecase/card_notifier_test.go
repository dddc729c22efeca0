package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/infrastructure/repository/memory"
)

type recordingAlertSender struct {
	fightIDs []string
	err      error
}

func (s *recordingAlertSender) NotifyFightStarting(_ context.Context, fightID, _, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.fightIDs = append(s.fightIDs, fightID)
	return nil
}

func notifierFixture(sender FightAlertSender) (*CardNotifier, *memory.FightRepository) {
	fightRepo := memory.NewFightRepository([]fight.Fight{
		{ID: "f6", EventID: "ev1", OrderOnCard: 6, FighterA: "Jon Jones", FighterB: "Tom Aspinall", Status: fight.StatusUpcoming},
		{ID: "f4", EventID: "ev1", OrderOnCard: 4, FighterA: "Alex Pereira", FighterB: "Magomed Ankalaev", Status: fight.StatusUpcoming},
		{ID: "f2", EventID: "ev1", OrderOnCard: 2, FighterA: "Petr Yan", FighterB: "José Aldo", Status: fight.StatusUpcoming},
	})
	return NewCardNotifier(fightRepo, sender, nil), fightRepo
}

func TestNotifierPicksHighestOrderBelowCompleted(t *testing.T) {
	sender := &recordingAlertSender{}
	notifier, fightRepo := notifierFixture(sender)

	if err := notifier.OnFightCompleted(context.Background(), "ev1", 5); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sender.fightIDs) != 1 || sender.fightIDs[0] != "f4" {
		t.Fatalf("expected alert for f4 only, got %v", sender.fightIDs)
	}
	stored := mustGetFight(t, fightRepo, "f4")
	if !stored.Notified {
		t.Fatal("expected f4 marked notified")
	}
	if mustGetFight(t, fightRepo, "f6").Notified {
		t.Fatal("fight above the completed order must not be notified")
	}
}

func TestNotifierSkipsAlreadyNotifiedFights(t *testing.T) {
	sender := &recordingAlertSender{}
	notifier, fightRepo := notifierFixture(sender)

	notified := true
	if err := fightRepo.Update(context.Background(), "f4", fight.Update{Notified: &notified}); err != nil {
		t.Fatalf("seed notified flag: %v", err)
	}

	if err := notifier.OnFightCompleted(context.Background(), "ev1", 5); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.fightIDs) != 1 || sender.fightIDs[0] != "f2" {
		t.Fatalf("expected alert for f2, got %v", sender.fightIDs)
	}
}

func TestNotifierNoCandidateIsNoop(t *testing.T) {
	sender := &recordingAlertSender{}
	notifier, _ := notifierFixture(sender)

	if err := notifier.OnFightCompleted(context.Background(), "ev1", 2); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sender.fightIDs) != 0 {
		t.Fatalf("expected no alerts below the opener, got %v", sender.fightIDs)
	}
}

func TestNotifierSendFailureLeavesFlagUnset(t *testing.T) {
	sender := &recordingAlertSender{err: errors.New("push gateway unavailable")}
	notifier, fightRepo := notifierFixture(sender)

	if err := notifier.OnFightCompleted(context.Background(), "ev1", 5); err != nil {
		t.Fatalf("delivery failure must not fail the pipeline: %v", err)
	}
	if mustGetFight(t, fightRepo, "f4").Notified {
		t.Fatal("failed delivery must leave the notified flag unset")
	}

	sender.err = nil
	if err := notifier.OnFightCompleted(context.Background(), "ev1", 5); err != nil {
		t.Fatalf("retry on next completion: %v", err)
	}
	if !mustGetFight(t, fightRepo, "f4").Notified {
		t.Fatal("expected retry to mark f4 notified")
	}
}
