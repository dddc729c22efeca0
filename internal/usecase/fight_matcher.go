package usecase

import (
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/scrape"
)

// MatchedFight pairs a scraped observation with the persisted fight it refers
// to. The persisted value is the one read at the start of the tick, so change
// application can compare against it without a second read.
type MatchedFight struct {
	Observation scrape.FightObservation
	Fight       fight.Fight
}

// FightMatcher resolves observations to persisted fights by unordered
// last-name pairing. Source pages render bouts in their own order and with
// their own naming conventions, so matching is permutation- and
// case-insensitive and tolerates missing observations.
type FightMatcher struct {
	logger *logging.Logger
}

func NewFightMatcher(logger *logging.Logger) *FightMatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &FightMatcher{logger: logger}
}

// Match pairs each observation with at most one persisted fight; first match
// wins and a persisted fight is consumed once per tick. Unmatched
// observations are reported back and dropped, they never fail the tick.
func (m *FightMatcher) Match(observations []scrape.FightObservation, fights []fight.Fight) ([]MatchedFight, []scrape.FightObservation) {
	matched := make([]MatchedFight, 0, len(observations))
	var unmatched []scrape.FightObservation
	used := make(map[string]struct{}, len(fights))

	for _, obs := range observations {
		key := obs.PairKey()
		found := false
		for _, candidate := range fights {
			if _, taken := used[candidate.ID]; taken {
				continue
			}
			if scrape.PairKey(candidate.FighterA, candidate.FighterB) != key {
				continue
			}
			used[candidate.ID] = struct{}{}
			matched = append(matched, MatchedFight{Observation: obs, Fight: candidate})
			found = true
			break
		}
		if !found {
			m.logger.Debug("observation did not match any persisted fight",
				"side_a", obs.SideA.RawName,
				"side_b", obs.SideB.RawName,
			)
			unmatched = append(unmatched, obs)
		}
	}

	return matched, unmatched
}
