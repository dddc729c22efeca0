package scrape

import (
	"sort"
	"time"

	"github.com/cagewatch/live-tracker/internal/platform/personname"
)

// Per-fight and event status hints as read off the page. These are
// observations, not persisted statuses.
const (
	HintUpcoming = "upcoming"
	HintLive     = "live"
	HintComplete = "complete"
)

// Snapshot is one point-in-time structured reading of a source page. It is
// produced fresh on every poll tick and never mutated.
type Snapshot struct {
	EventStatus string
	HasStarted  bool
	IsComplete  bool
	Fights      []FightObservation
	ScrapedAt   time.Time
}

// FightObservation is a single scraped bout. Order is 1 for the main event,
// ascending toward the earlier prelims.
type FightObservation struct {
	Order        int
	StatusHint   string
	SideA        PersonObservation
	SideB        PersonObservation
	CurrentRound *int
	Result       *ResultObservation
	IsTitleFight bool
	WeightClass  string
}

type PersonObservation struct {
	RawName  string
	IsWinner bool
	Record   string
}

// ResultObservation carries whatever result detail could be extracted. All
// fields are optional; a value with neither winner nor method is noise and is
// never attached to an observation.
type ResultObservation struct {
	WinnerRawName string
	Method        string
	Round         *int
	Time          string
	Scorecards    []string
}

func (r ResultObservation) IsEmpty() bool {
	return r.WinnerRawName == "" && r.Method == ""
}

// PairKey identifies a bout by its two corners' last names regardless of
// side order, so snapshots scraped in different card orders still line up.
func (f FightObservation) PairKey() string {
	return PairKey(f.SideA.RawName, f.SideB.RawName)
}

func PairKey(nameA, nameB string) string {
	keys := []string{personname.LastNameKey(nameA), personname.LastNameKey(nameB)}
	sort.Strings(keys)
	return keys[0] + "|" + keys[1]
}
