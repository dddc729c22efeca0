package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/infrastructure/repository/memory"
)

type stubPageFetcher struct {
	mu     sync.Mutex
	markup string
	err    error
	calls  int
}

func (f *stubPageFetcher) FetchPage(context.Context, string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.markup, nil
}

const upcomingCardPage = `<html><body>
<div class="c-listing-fight">
  <div class="c-listing-fight__corner"><span class="c-listing-fight__corner-name">Jon Jones</span></div>
  <div class="c-listing-fight__corner"><span class="c-listing-fight__corner-name">Tom Aspinall</span></div>
</div>
<div class="c-listing-fight">
  <div class="c-listing-fight__corner"><span class="c-listing-fight__corner-name">Alex Pereira</span></div>
  <div class="c-listing-fight__corner"><span class="c-listing-fight__corner-name">Magomed Ankalaev</span></div>
</div>
</body></html>`

const completedCardPage = `<html><body>
<h1>Final Results</h1>
<div class="c-listing-fight">
  <div class="c-listing-fight__corner c-listing-fight__corner--win"><span class="c-listing-fight__corner-name">Jon Jones</span></div>
  <div class="c-listing-fight__corner"><span class="c-listing-fight__corner-name">Tom Aspinall</span></div>
</div>
</body></html>`

func trackerFixture(fetcher PageFetcher) (*TrackerService, *memory.EventRepository, *memory.FightRepository, *memory.RawSnapshotRepository) {
	eventRepo := memory.NewEventRepository([]event.Event{
		{ID: "ev1", Name: "Vegas Fight Night", Promotion: "mma", SourceURL: "https://example.com/ev1", Status: event.StatusUpcoming},
	})
	fightRepo := memory.NewFightRepository([]fight.Fight{
		{ID: "f1", EventID: "ev1", OrderOnCard: 2, FighterA: "Jon Jones", FighterB: "Tom Aspinall", Status: fight.StatusUpcoming},
		{ID: "f2", EventID: "ev1", OrderOnCard: 1, FighterA: "Alex Pereira", FighterB: "Magomed Ankalaev", Status: fight.StatusUpcoming},
	})
	rawRepo := memory.NewRawSnapshotRepository()

	service := NewTrackerService(
		fetcher,
		eventRepo,
		fightRepo,
		rawRepo,
		NewFightMatcher(nil),
		NewChangeDetector(),
		NewStateApplier(eventRepo, fightRepo, "tracker-test", nil),
		NewCardNotifier(fightRepo, NewNoopAlertSender(), nil),
		nil,
	)
	return service, eventRepo, fightRepo, rawRepo
}

func TestTrackerStartValidation(t *testing.T) {
	service, _, _, _ := trackerFixture(&stubPageFetcher{markup: upcomingCardPage})
	defer service.StopAll()

	err := service.Start(context.Background(), TrackerConfig{SourceURL: "https://example.com/ev1"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing event id, got %v", err)
	}

	err = service.Start(context.Background(), TrackerConfig{EventID: "missing", SourceURL: "https://example.com/ev1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for unknown event, got %v", err)
	}
}

func TestTrackerRunsFirstTickSynchronously(t *testing.T) {
	fetcher := &stubPageFetcher{markup: upcomingCardPage}
	service, _, _, rawRepo := trackerFixture(fetcher)
	defer service.StopAll()

	cfg := TrackerConfig{EventID: "ev1", SourceURL: "https://example.com/ev1"}
	if err := service.Start(context.Background(), cfg); err != nil {
		t.Fatalf("start: %v", err)
	}

	status, exists := service.Status("ev1")
	if !exists {
		t.Fatal("expected running session")
	}
	if !status.IsRunning || status.ScrapeCount != 1 {
		t.Fatalf("expected one completed scrape before Start returned, got %+v", status)
	}
	if status.LastScrapeAt.IsZero() {
		t.Fatal("expected last scrape time recorded")
	}
	if len(rawRepo.All()) != 1 {
		t.Fatalf("expected one archived snapshot, got %d", len(rawRepo.All()))
	}

	if err := service.Start(context.Background(), cfg); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected already running on duplicate start, got %v", err)
	}
}

func TestTrackerFetchFailureKeepsSessionAlive(t *testing.T) {
	fetcher := &stubPageFetcher{err: errors.New("connection refused")}
	service, _, fightRepo, _ := trackerFixture(fetcher)
	defer service.StopAll()

	cfg := TrackerConfig{EventID: "ev1", SourceURL: "https://example.com/ev1"}
	if err := service.Start(context.Background(), cfg); err != nil {
		t.Fatalf("start must survive a failed first fetch: %v", err)
	}

	status, exists := service.Status("ev1")
	if !exists || !status.IsRunning {
		t.Fatalf("session must stay alive after a failed tick, got %+v", status)
	}
	if status.ScrapeCount != 0 {
		t.Fatalf("failed tick must not count as a scrape, got %d", status.ScrapeCount)
	}
	if status.LastError == "" {
		t.Fatal("expected last error surfaced in status")
	}

	stored := mustGetFight(t, fightRepo, "f1")
	if stored.Status != fight.StatusUpcoming {
		t.Fatalf("failed tick must not touch persisted state, got %s", stored.Status)
	}
}

func TestTrackerStopIsIdempotent(t *testing.T) {
	service, _, _, _ := trackerFixture(&stubPageFetcher{markup: upcomingCardPage})

	cfg := TrackerConfig{EventID: "ev1", SourceURL: "https://example.com/ev1"}
	if err := service.Start(context.Background(), cfg); err != nil {
		t.Fatalf("start: %v", err)
	}

	service.Stop("ev1")
	if _, exists := service.Status("ev1"); exists {
		t.Fatal("stopped session must not be listed")
	}

	service.Stop("ev1")
	service.Stop("never-started")
	service.StopAll()
}

func TestTrackerSelfTerminatesOnCompletedEvent(t *testing.T) {
	fetcher := &stubPageFetcher{markup: completedCardPage}
	service, eventRepo, _, _ := trackerFixture(fetcher)
	defer service.StopAll()

	cfg := TrackerConfig{EventID: "ev1", SourceURL: "https://example.com/ev1"}
	if err := service.Start(context.Background(), cfg); err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, exists := service.Status("ev1"); exists {
		t.Fatal("session must self-terminate once the event page reports completion")
	}

	// Even though the first snapshot is a diff baseline, the tracker itself
	// must close the event row, or a card that completed before tracking
	// started could never be closed at all.
	stored, _, _ := eventRepo.GetByID(context.Background(), "ev1")
	if stored.Status != event.StatusComplete {
		t.Fatalf("self-terminating tick must mark the event complete, got %s", stored.Status)
	}
	if stored.CompletionSource == "" {
		t.Fatal("completion source must be stamped when the tracker closes the event")
	}

	// Restarting is still allowed and stays idempotent: the rerun baseline
	// writes nothing new.
	if err := service.Start(context.Background(), cfg); err != nil {
		t.Fatalf("restart after self-termination: %v", err)
	}
	again, _, _ := eventRepo.GetByID(context.Background(), "ev1")
	if again.CompletionSource != stored.CompletionSource {
		t.Fatalf("restart must not restamp completion source, got %q", again.CompletionSource)
	}
}

func TestTrackerListReportsSessions(t *testing.T) {
	service, _, _, _ := trackerFixture(&stubPageFetcher{markup: upcomingCardPage})
	defer service.StopAll()

	if got := service.List(); len(got) != 0 {
		t.Fatalf("expected no sessions before start, got %d", len(got))
	}

	// No source url given: the tracker falls back to the one stored on the
	// event.
	if err := service.Start(context.Background(), TrackerConfig{EventID: "ev1"}); err != nil {
		t.Fatalf("start: %v", err)
	}

	got := service.List()
	if len(got) != 1 || got[0].EventID != "ev1" {
		t.Fatalf("expected ev1 session listed, got %+v", got)
	}
}
