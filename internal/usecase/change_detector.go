package usecase

import (
	"github.com/cagewatch/live-tracker/internal/scrape"
)

type ChangeKind string

const (
	ChangeEventStarted   ChangeKind = "event_started"
	ChangeEventCompleted ChangeKind = "event_completed"
	ChangeFightStarted   ChangeKind = "fight_started"
	ChangeFightCompleted ChangeKind = "fight_completed"
	ChangeRoundAdvanced  ChangeKind = "round_advanced"
)

// Change is one discrete, human-nameable transition detected between two
// snapshots. FightID/Order are empty for event-level changes.
type Change struct {
	Kind    ChangeKind
	FightID string
	Order   int
	Round   int
	Result  *scrape.ResultObservation
}

// ChangeSet is the ordered unit of idempotent application. Baseline marks the
// first scrape of a tracking session: it establishes the reference snapshot
// and deliberately carries no discrete changes, so starting a tracker against
// an event already in progress does not fire an "everything just happened"
// burst.
type ChangeSet struct {
	Baseline bool
	Changes  []Change
}

// ChangeDetector diffs consecutive snapshots of the same event.
type ChangeDetector struct{}

func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Diff emits event-level edges first, then per-fight changes in observation
// order, then event completion last. Fights observed for the first time are
// treated as already in their observed state and not retroactively diffed.
func (d *ChangeDetector) Diff(previous *scrape.Snapshot, current scrape.Snapshot, matched []MatchedFight) ChangeSet {
	if previous == nil {
		return ChangeSet{Baseline: true}
	}

	out := ChangeSet{}
	if current.HasStarted && !previous.HasStarted {
		out.Changes = append(out.Changes, Change{Kind: ChangeEventStarted})
	}

	prevByKey := make(map[string]scrape.FightObservation, len(previous.Fights))
	for _, obs := range previous.Fights {
		prevByKey[obs.PairKey()] = obs
	}

	for _, pair := range matched {
		prev, seenBefore := prevByKey[pair.Observation.PairKey()]
		if !seenBefore {
			continue
		}
		cur := pair.Observation

		if cur.StatusHint == scrape.HintLive && prev.StatusHint == scrape.HintUpcoming {
			out.Changes = append(out.Changes, Change{
				Kind:    ChangeFightStarted,
				FightID: pair.Fight.ID,
				Order:   pair.Fight.OrderOnCard,
			})
		}
		if cur.StatusHint == scrape.HintComplete && prev.StatusHint != scrape.HintComplete {
			out.Changes = append(out.Changes, Change{
				Kind:    ChangeFightCompleted,
				FightID: pair.Fight.ID,
				Order:   pair.Fight.OrderOnCard,
				Result:  cur.Result,
			})
		}
		if cur.CurrentRound != nil && (prev.CurrentRound == nil || *prev.CurrentRound != *cur.CurrentRound) {
			out.Changes = append(out.Changes, Change{
				Kind:    ChangeRoundAdvanced,
				FightID: pair.Fight.ID,
				Order:   pair.Fight.OrderOnCard,
				Round:   *cur.CurrentRound,
			})
		}
	}

	if current.IsComplete && !previous.IsComplete {
		out.Changes = append(out.Changes, Change{Kind: ChangeEventCompleted})
	}

	return out
}
