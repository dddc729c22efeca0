package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/scrape"
)

const (
	backfillStatusSuccess = "success"
	backfillStatusSkipped = "skipped"
	backfillStatusFailed  = "failed"

	defaultBackfillWorkers = 4
	maxBackfillWorkers     = 16
)

type BackfillInput struct {
	EventIDs []string `json:"event_ids" validate:"omitempty,dive,required"`
	Workers  int      `json:"workers" validate:"omitempty,min=1,max=16"`
}

type BackfillTaskResult struct {
	EventID      string `json:"event_id"`
	FightsFilled int    `json:"fights_filled"`
	Status       string `json:"status"`
	Message      string `json:"message,omitempty"`
	DurationMs   int64  `json:"duration_ms"`
}

type BackfillResult struct {
	SuccessCount int                  `json:"success_count"`
	SkippedCount int                  `json:"skipped_count"`
	FailedCount  int                  `json:"failed_count"`
	Tasks        []BackfillTaskResult `json:"tasks"`
}

// BackfillService fills in missing result detail on fights of already
// completed events by re-scraping their source pages once. Live tracking can
// mark a fight COMPLETED from a page that never exposed method or round; a
// later page revision usually does, and this service catches up offline.
//
// It deliberately bypasses the live change pipeline: the fights are already
// settled, there are no transitions to detect, only empty result fields to
// fill.
type BackfillService struct {
	fetcher   PageFetcher
	eventRepo event.Repository
	fightRepo fight.Repository
	matcher   *FightMatcher
	logger    *logging.Logger
}

func NewBackfillService(
	fetcher PageFetcher,
	eventRepo event.Repository,
	fightRepo fight.Repository,
	matcher *FightMatcher,
	logger *logging.Logger,
) *BackfillService {
	if logger == nil {
		logger = logging.Default()
	}
	return &BackfillService{
		fetcher:   fetcher,
		eventRepo: eventRepo,
		fightRepo: fightRepo,
		matcher:   matcher,
		logger:    logger,
	}
}

// Run backfills the requested events, or every COMPLETED event when no IDs
// are given, fanning the per-event work out over a bounded pool.
func (s *BackfillService) Run(ctx context.Context, input BackfillInput) (BackfillResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BackfillService.Run")
	defer span.End()

	if s.fetcher == nil {
		return BackfillResult{}, fmt.Errorf("%w: page fetcher is not configured", ErrDependencyUnavailable)
	}

	workerCount := input.Workers
	if workerCount <= 0 {
		workerCount = defaultBackfillWorkers
	}
	if workerCount > maxBackfillWorkers {
		workerCount = maxBackfillWorkers
	}

	targets, err := s.resolveTargets(ctx, input.EventIDs)
	if err != nil {
		return BackfillResult{}, err
	}
	if len(targets) == 0 {
		return BackfillResult{}, nil
	}

	results := make(chan BackfillTaskResult, len(targets))

	var successCount atomic.Int32
	var skippedCount atomic.Int32
	var failedCount atomic.Int32

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BackfillResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for _, target := range targets {
		target := target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row := BackfillTaskResult{EventID: target.ID}

			filled, status, message := s.backfillEvent(ctx, target)
			row.FightsFilled = filled
			row.Status = status
			row.Message = message
			row.DurationMs = time.Since(start).Milliseconds()

			switch status {
			case backfillStatusSuccess:
				successCount.Add(1)
			case backfillStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			results <- row
		}); err != nil {
			workers.Done()
			return BackfillResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(results)

	result := BackfillResult{}
	for row := range results {
		result.Tasks = append(result.Tasks, row)
	}
	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].EventID < result.Tasks[j].EventID
	})

	result.SuccessCount = int(successCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	result.FailedCount = int(failedCount.Load())
	return result, nil
}

func (s *BackfillService) resolveTargets(ctx context.Context, eventIDs []string) ([]event.Event, error) {
	if len(eventIDs) == 0 {
		targets, err := s.eventRepo.ListByStatus(ctx, event.StatusComplete)
		if err != nil {
			return nil, fmt.Errorf("list completed events: %w", err)
		}
		return targets, nil
	}

	targets := make([]event.Event, 0, len(eventIDs))
	for _, id := range eventIDs {
		target, exists, err := s.eventRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("get event %s: %w", id, err)
		}
		if !exists {
			return nil, fmt.Errorf("%w: event=%s", ErrNotFound, id)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func (s *BackfillService) backfillEvent(ctx context.Context, target event.Event) (int, string, string) {
	fights, err := s.fightRepo.ListByEvent(ctx, target.ID)
	if err != nil {
		return 0, backfillStatusFailed, err.Error()
	}

	pending := 0
	for _, f := range fights {
		if fight.NormalizeStatus(f.Status) == fight.StatusCompleted && !f.HasResult() {
			pending++
		}
	}
	if pending == 0 {
		return 0, backfillStatusSkipped, "no completed fights missing results"
	}
	if target.SourceURL == "" {
		return 0, backfillStatusSkipped, "event has no source url"
	}

	source, ok := scrape.SourceFor(target.Promotion)
	if !ok {
		return 0, backfillStatusSkipped, fmt.Sprintf("no page strategy for promotion %q", target.Promotion)
	}

	markup, err := s.fetcher.FetchPage(ctx, target.SourceURL)
	if err != nil {
		return 0, backfillStatusFailed, fmt.Sprintf("fetch source page: %v", err)
	}

	snapshot := scrape.NewExtractor(source, s.logger).Extract(markup)
	matched, _ := s.matcher.Match(snapshot.Fights, fights)

	filled := 0
	for _, pair := range matched {
		if fight.NormalizeStatus(pair.Fight.Status) != fight.StatusCompleted || pair.Fight.HasResult() {
			continue
		}
		if pair.Observation.Result == nil || pair.Observation.Result.IsEmpty() {
			continue
		}
		wrote, err := s.fillResult(ctx, pair.Fight, *pair.Observation.Result)
		if err != nil {
			return filled, backfillStatusFailed, err.Error()
		}
		if wrote {
			filled++
		}
	}

	if filled == 0 {
		return 0, backfillStatusSkipped, "source page exposed no new result detail"
	}
	return filled, backfillStatusSuccess, ""
}

// fillResult writes only fields that are still empty; settled detail on a
// completed fight is never overwritten.
func (s *BackfillService) fillResult(ctx context.Context, current fight.Fight, result scrape.ResultObservation) (bool, error) {
	update := fight.Update{}
	if winner := resolveWinnerName(current, result.WinnerRawName); winner != "" && current.WinnerName == "" {
		update.WinnerName = &winner
	}
	if result.Method != "" && current.Method == "" {
		method := result.Method
		update.Method = &method
	}
	if result.Round != nil && current.ResultRound == nil {
		round := *result.Round
		update.ResultRound = &round
	}
	if result.Time != "" && current.ResultTime == "" {
		resultTime := result.Time
		update.ResultTime = &resultTime
	}
	if len(result.Scorecards) > 0 && len(current.Scorecards) == 0 {
		update.Scorecards = result.Scorecards
	}
	if update.IsZero() {
		return false, nil
	}

	if err := s.fightRepo.Update(ctx, current.ID, update); err != nil {
		return false, fmt.Errorf("backfill fight result fight=%s: %w", current.ID, err)
	}
	s.logger.InfoContext(ctx, "backfilled fight result",
		"fight_id", current.ID,
		"event_id", current.EventID,
	)
	return true, nil
}
