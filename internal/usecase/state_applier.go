package usecase

import (
	"context"
	"fmt"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/platform/personname"
)

// StateApplier turns a ChangeSet into the minimal persisted-field updates
// under the monotonic UPCOMING -> LIVE -> COMPLETED machine. Backward or
// no-op transitions are skipped silently: re-observing settled data is the
// steady state of a polling pipeline, not an error.
type StateApplier struct {
	eventRepo        event.Repository
	fightRepo        fight.Repository
	completionSource string
	logger           *logging.Logger
}

func NewStateApplier(eventRepo event.Repository, fightRepo fight.Repository, completionSource string, logger *logging.Logger) *StateApplier {
	if completionSource == "" {
		completionSource = "live-tracker"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &StateApplier{
		eventRepo:        eventRepo,
		fightRepo:        fightRepo,
		completionSource: completionSource,
		logger:           logger,
	}
}

// Apply issues at most one persisted update per change and returns how many
// updates were actually written. Replaying the same ChangeSet against the
// resulting state writes nothing.
func (a *StateApplier) Apply(ctx context.Context, eventID string, changeSet ChangeSet, matched []MatchedFight) (int, error) {
	if changeSet.Baseline || len(changeSet.Changes) == 0 {
		return 0, nil
	}

	fightsByID := make(map[string]fight.Fight, len(matched))
	for _, pair := range matched {
		fightsByID[pair.Fight.ID] = pair.Fight
	}

	applied := 0
	for _, change := range changeSet.Changes {
		wrote, err := a.applyOne(ctx, eventID, change, fightsByID)
		if err != nil {
			return applied, err
		}
		if wrote {
			applied++
		}
	}

	return applied, nil
}

func (a *StateApplier) applyOne(ctx context.Context, eventID string, change Change, fightsByID map[string]fight.Fight) (bool, error) {
	switch change.Kind {
	case ChangeEventStarted:
		return a.applyEventStatus(ctx, eventID, event.StatusLive, false)
	case ChangeEventCompleted:
		return a.applyEventStatus(ctx, eventID, event.StatusComplete, true)
	case ChangeFightStarted:
		return a.applyFightStarted(ctx, change, fightsByID)
	case ChangeFightCompleted:
		return a.applyFightCompleted(ctx, change, fightsByID)
	case ChangeRoundAdvanced:
		// Rounds are not persisted outside a final result; surfaced for
		// logging and downstream consumers only.
		a.logger.InfoContext(ctx, "round advanced", "fight_id", change.FightID, "round", change.Round)
		return false, nil
	default:
		return false, nil
	}
}

// MarkEventComplete closes the event row directly, bypassing the diff. The
// tracker needs this when the very first snapshot of a session already reads
// complete: a baseline produces no changes to apply, yet the event must not
// stay open in persistence. Idempotent like every other applier write.
func (a *StateApplier) MarkEventComplete(ctx context.Context, eventID string) (bool, error) {
	return a.applyEventStatus(ctx, eventID, event.StatusComplete, true)
}

func (a *StateApplier) applyEventStatus(ctx context.Context, eventID, status string, stampSource bool) (bool, error) {
	current, exists, err := a.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		return false, fmt.Errorf("get event for status update: %w", err)
	}
	if !exists {
		return false, fmt.Errorf("%w: event=%s", ErrNotFound, eventID)
	}

	update := event.Update{}
	if event.NormalizeStatus(current.Status) != status && !event.IsComplete(current.Status) {
		update.Status = &status
	}
	if stampSource && current.CompletionSource == "" {
		source := a.completionSource
		update.CompletionSource = &source
	}
	if update.IsZero() {
		return false, nil
	}

	if err := a.eventRepo.Update(ctx, eventID, update); err != nil {
		return false, fmt.Errorf("update event status event=%s: %w", eventID, err)
	}
	return true, nil
}

func (a *StateApplier) applyFightStarted(ctx context.Context, change Change, fightsByID map[string]fight.Fight) (bool, error) {
	current, ok := fightsByID[change.FightID]
	if !ok {
		return false, nil
	}
	if !fight.IsForwardTransition(current.Status, fight.StatusLive) {
		return false, nil
	}

	status := fight.StatusLive
	if err := a.fightRepo.Update(ctx, change.FightID, fight.Update{Status: &status}); err != nil {
		return false, fmt.Errorf("update fight to live fight=%s: %w", change.FightID, err)
	}
	current.Status = status
	fightsByID[change.FightID] = current
	return true, nil
}

// applyFightCompleted writes the status transition and whatever result detail
// was extracted as one unit. Once a fight is COMPLETED it is closed to
// further updates, so a later, possibly noisier observation can never
// overwrite a settled result. That is policy, not an oversight.
func (a *StateApplier) applyFightCompleted(ctx context.Context, change Change, fightsByID map[string]fight.Fight) (bool, error) {
	current, ok := fightsByID[change.FightID]
	if !ok {
		return false, nil
	}
	if fight.NormalizeStatus(current.Status) == fight.StatusCompleted {
		return false, nil
	}
	if !fight.IsForwardTransition(current.Status, fight.StatusCompleted) {
		return false, nil
	}

	status := fight.StatusCompleted
	update := fight.Update{Status: &status}
	if change.Result != nil {
		if winner := resolveWinnerName(current, change.Result.WinnerRawName); winner != "" && current.WinnerName == "" {
			update.WinnerName = &winner
		}
		if change.Result.Method != "" && current.Method == "" {
			method := change.Result.Method
			update.Method = &method
		}
		if change.Result.Round != nil && current.ResultRound == nil {
			round := *change.Result.Round
			update.ResultRound = &round
		}
		if change.Result.Time != "" && current.ResultTime == "" {
			resultTime := change.Result.Time
			update.ResultTime = &resultTime
		}
		if len(change.Result.Scorecards) > 0 && len(current.Scorecards) == 0 {
			update.Scorecards = change.Result.Scorecards
		}
	}

	if err := a.fightRepo.Update(ctx, change.FightID, update); err != nil {
		return false, fmt.Errorf("update fight to completed fight=%s: %w", change.FightID, err)
	}
	current.Status = status
	fightsByID[change.FightID] = current
	return true, nil
}

// resolveWinnerName maps the scraped winner text onto one of the persisted
// fighter display names so the stored winner always matches a stored fighter.
func resolveWinnerName(current fight.Fight, winnerRaw string) string {
	if winnerRaw == "" {
		return ""
	}
	winnerKey := personname.LastNameKey(winnerRaw)
	if winnerKey == "" {
		return ""
	}
	for _, candidate := range []string{current.FighterA, current.FighterB} {
		if personname.LastNameKey(candidate) == winnerKey {
			return candidate
		}
	}
	return ""
}
