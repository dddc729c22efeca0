package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/sourcegraph/conc"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/domain/rawdata"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/scrape"
)

const minTrackInterval = 5 * time.Second

// PageFetcher is the fetch collaborator. A failed fetch skips the tick; the
// next scheduled tick retries implicitly.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (string, error)
}

type TrackerConfig struct {
	EventID   string
	SourceURL string
	Interval  time.Duration
}

type TrackerStatus struct {
	EventID       string    `json:"event_id"`
	IsRunning     bool      `json:"is_running"`
	ScrapeCount   int       `json:"scrape_count"`
	FightsUpdated int       `json:"fights_updated"`
	LastError     string    `json:"last_error,omitempty"`
	LastScrapeAt  time.Time `json:"last_scrape_at,omitzero"`
}

// trackerSession holds the per-event loop state, most importantly the
// previous snapshot the next tick diffs against. It is owned by one loop
// goroutine; the mutex only guards status reads from the control surface.
type trackerSession struct {
	cfg       TrackerConfig
	promotion string
	extractor *scrape.Extractor
	cancel    context.CancelFunc

	mu            sync.Mutex
	previous      *scrape.Snapshot
	inFlight      bool
	stopped       bool
	scrapeCount   int
	fightsUpdated int
	lastError     string
	lastScrapeAt  time.Time
}

func (s *trackerSession) status() TrackerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return TrackerStatus{
		EventID:       s.cfg.EventID,
		IsRunning:     !s.stopped,
		ScrapeCount:   s.scrapeCount,
		FightsUpdated: s.fightsUpdated,
		LastError:     s.lastError,
		LastScrapeAt:  s.lastScrapeAt,
	}
}

// beginTick implements the no-overlap guard: a scheduled tick is skipped
// outright when the previous one is still in flight, never run concurrently.
func (s *trackerSession) beginTick() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight || s.stopped {
		return false
	}
	s.inFlight = true
	return true
}

func (s *trackerSession) endTick() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// TrackerService runs one polling loop per live event: fetch, extract,
// match, diff, apply, notify, then replace the previous snapshot. Loops are
// self-terminating once the event page reports completion.
type TrackerService struct {
	fetcher   PageFetcher
	eventRepo event.Repository
	fightRepo fight.Repository
	rawRepo   rawdata.Repository
	matcher   *FightMatcher
	detector  *ChangeDetector
	applier   *StateApplier
	notifier  *CardNotifier
	logger    *logging.Logger
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*trackerSession
	loops    conc.WaitGroup
}

func NewTrackerService(
	fetcher PageFetcher,
	eventRepo event.Repository,
	fightRepo fight.Repository,
	rawRepo rawdata.Repository,
	matcher *FightMatcher,
	detector *ChangeDetector,
	applier *StateApplier,
	notifier *CardNotifier,
	logger *logging.Logger,
) *TrackerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &TrackerService{
		fetcher:   fetcher,
		eventRepo: eventRepo,
		fightRepo: fightRepo,
		rawRepo:   rawRepo,
		matcher:   matcher,
		detector:  detector,
		applier:   applier,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*trackerSession),
	}
}

// Start registers a tracking session and runs the first tick synchronously
// before scheduling interval ticks. Starting an event that is already being
// tracked is a caller error, not a silent no-op.
func (t *TrackerService) Start(ctx context.Context, cfg TrackerConfig) error {
	cfg.EventID = strings.TrimSpace(cfg.EventID)
	cfg.SourceURL = strings.TrimSpace(cfg.SourceURL)
	if cfg.EventID == "" {
		return fmt.Errorf("%w: event id is required", ErrInvalidInput)
	}
	if cfg.Interval < minTrackInterval {
		cfg.Interval = minTrackInterval
	}
	if t.fetcher == nil {
		return fmt.Errorf("%w: page fetcher is not configured", ErrDependencyUnavailable)
	}

	tracked, exists, err := t.eventRepo.GetByID(ctx, cfg.EventID)
	if err != nil {
		return fmt.Errorf("get event for tracking: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: event=%s", ErrNotFound, cfg.EventID)
	}
	if cfg.SourceURL == "" {
		cfg.SourceURL = strings.TrimSpace(tracked.SourceURL)
	}
	if cfg.SourceURL == "" {
		return fmt.Errorf("%w: event %s has no source url", ErrInvalidInput, cfg.EventID)
	}
	source, ok := scrape.SourceFor(tracked.Promotion)
	if !ok {
		return fmt.Errorf("%w: no page strategy for promotion %q", ErrInvalidInput, tracked.Promotion)
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	session := &trackerSession{
		cfg:       cfg,
		promotion: tracked.Promotion,
		extractor: scrape.NewExtractor(source, t.logger),
		cancel:    cancel,
	}

	t.mu.Lock()
	if _, running := t.sessions[cfg.EventID]; running {
		t.mu.Unlock()
		cancel()
		return fmt.Errorf("%w: event=%s", ErrAlreadyRunning, cfg.EventID)
	}
	t.sessions[cfg.EventID] = session
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "tracker started",
		"event_id", cfg.EventID,
		"interval", cfg.Interval.String(),
	)

	if session.beginTick() {
		complete := t.tick(ctx, session)
		session.endTick()
		if complete {
			t.finish(session)
			return nil
		}
	}

	t.loops.Go(func() {
		t.loop(loopCtx, session)
	})

	return nil
}

func (t *TrackerService) loop(ctx context.Context, session *trackerSession) {
	ticker := time.NewTicker(session.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !session.beginTick() {
				continue
			}
			complete := t.tick(ctx, session)
			session.endTick()
			if complete {
				t.finish(session)
				return
			}
		}
	}
}

// tick is one atomic pass of the pipeline. The previous snapshot is replaced
// only after a successful apply, so a failed tick changes nothing and the
// next interval retries from the same baseline. Returns true once the event
// page reports completion.
func (t *TrackerService) tick(ctx context.Context, session *trackerSession) bool {
	ctx, span := startUsecaseSpan(ctx, "usecase.TrackerService.tick")
	defer span.End()

	eventID := session.cfg.EventID

	markup, err := t.fetcher.FetchPage(ctx, session.cfg.SourceURL)
	if err != nil {
		t.recordTickError(ctx, session, fmt.Errorf("fetch source page: %w", err))
		return false
	}

	snapshot := session.extractor.Extract(markup)

	fights, err := t.fightRepo.ListByEvent(ctx, eventID)
	if err != nil {
		t.recordTickError(ctx, session, fmt.Errorf("list fights for event: %w", err))
		return false
	}

	matched, unmatched := t.matcher.Match(snapshot.Fights, fights)
	if len(unmatched) > 0 {
		t.logger.WarnContext(ctx, "unmatched fight observations dropped",
			"event_id", eventID,
			"count", len(unmatched),
		)
	}

	session.mu.Lock()
	previous := session.previous
	session.mu.Unlock()

	changeSet := t.detector.Diff(previous, snapshot, matched)
	applied, err := t.applier.Apply(ctx, eventID, changeSet, matched)
	if err != nil {
		t.recordTickError(ctx, session, fmt.Errorf("apply changes: %w", err))
		return false
	}

	for _, change := range changeSet.Changes {
		if change.Kind != ChangeFightCompleted {
			continue
		}
		if err := t.notifier.OnFightCompleted(ctx, eventID, change.Order); err != nil {
			t.logger.WarnContext(ctx, "next fight notification failed",
				"event_id", eventID,
				"error", err,
			)
		}
	}

	if snapshot.IsComplete {
		if _, err := t.applier.MarkEventComplete(ctx, eventID); err != nil {
			t.recordTickError(ctx, session, fmt.Errorf("mark event complete: %w", err))
			return false
		}
	}

	t.archiveSnapshot(ctx, eventID, session, snapshot)

	session.mu.Lock()
	session.previous = &snapshot
	session.scrapeCount++
	session.fightsUpdated += applied
	session.lastError = ""
	session.lastScrapeAt = t.now()
	session.mu.Unlock()

	if applied > 0 {
		t.logger.InfoContext(ctx, "tracking tick applied changes",
			"event_id", eventID,
			"applied", applied,
			"changes", len(changeSet.Changes),
		)
	}

	return snapshot.IsComplete
}

func (t *TrackerService) recordTickError(ctx context.Context, session *trackerSession, err error) {
	session.mu.Lock()
	session.lastError = err.Error()
	session.mu.Unlock()
	t.logger.WarnContext(ctx, "tracking tick skipped",
		"event_id", session.cfg.EventID,
		"error", err,
	)
}

func (t *TrackerService) archiveSnapshot(ctx context.Context, eventID string, session *trackerSession, snapshot scrape.Snapshot) {
	if t.rawRepo == nil {
		return
	}
	payload, err := sonic.Marshal(snapshot)
	if err != nil {
		t.logger.WarnContext(ctx, "marshal snapshot for archive failed", "event_id", eventID, "error", err)
		return
	}
	item := rawdata.Snapshot{
		EventID:     eventID,
		Promotion:   session.promotion,
		PayloadJSON: string(payload),
		ScrapedAt:   snapshot.ScrapedAt,
	}
	if err := t.rawRepo.Insert(ctx, item); err != nil {
		t.logger.WarnContext(ctx, "archive snapshot failed", "event_id", eventID, "error", err)
	}
}

// finish tears a self-terminating session down after its event completed.
func (t *TrackerService) finish(session *trackerSession) {
	session.mu.Lock()
	session.stopped = true
	session.mu.Unlock()
	session.cancel()

	t.mu.Lock()
	delete(t.sessions, session.cfg.EventID)
	t.mu.Unlock()

	t.logger.Info("tracker finished: event complete", "event_id", session.cfg.EventID)
}

// Stop cancels a session. It is idempotent: stopping an unknown or
// already-stopped event is not an error. A tick already in progress finishes
// so persisted state is never left half-updated.
func (t *TrackerService) Stop(eventID string) {
	t.mu.Lock()
	session, exists := t.sessions[eventID]
	if exists {
		delete(t.sessions, eventID)
	}
	t.mu.Unlock()
	if !exists {
		return
	}

	session.mu.Lock()
	session.stopped = true
	session.mu.Unlock()
	session.cancel()

	t.logger.Info("tracker stopped", "event_id", eventID)
}

// StopAll cancels every session and waits for the loops to drain. Used on
// service shutdown.
func (t *TrackerService) StopAll() {
	t.mu.Lock()
	sessions := make([]*trackerSession, 0, len(t.sessions))
	for _, session := range t.sessions {
		sessions = append(sessions, session)
	}
	t.sessions = make(map[string]*trackerSession)
	t.mu.Unlock()

	for _, session := range sessions {
		session.mu.Lock()
		session.stopped = true
		session.mu.Unlock()
		session.cancel()
	}
	t.loops.Wait()
}

func (t *TrackerService) Status(eventID string) (TrackerStatus, bool) {
	t.mu.Lock()
	session, exists := t.sessions[eventID]
	t.mu.Unlock()
	if !exists {
		return TrackerStatus{}, false
	}
	return session.status(), true
}

func (t *TrackerService) List() []TrackerStatus {
	t.mu.Lock()
	out := make([]TrackerStatus, 0, len(t.sessions))
	for _, session := range t.sessions {
		out = append(out, session.status())
	}
	t.mu.Unlock()
	return out
}
