package fight

import "strings"

const (
	StatusUpcoming  = "UPCOMING"
	StatusLive      = "LIVE"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

// Victory method codes as persisted. Empty string means not yet known.
const (
	MethodKO   = "KO"
	MethodTKO  = "TKO"
	MethodUD   = "UD"
	MethodSD   = "SD"
	MethodMD   = "MD"
	MethodRTD  = "RTD"
	MethodDQ   = "DQ"
	MethodNC   = "NC"
	MethodDraw = "DRAW"
	MethodSub  = "SUB"
)

// Fight is one bout on a card. OrderOnCard is 1 for the main event and grows
// toward the earlier prelims.
type Fight struct {
	ID          string
	EventID     string
	OrderOnCard int
	FighterA    string
	FighterB    string
	Status      string
	WinnerName  string
	Method      string
	ResultRound *int
	ResultTime  string
	Scorecards  []string
	Notified    bool
}

// HasResult reports whether any result detail has been persisted. A completed
// fight without a result is "complete, details pending".
func (f Fight) HasResult() bool {
	return f.WinnerName != "" || f.Method != ""
}

func NormalizeStatus(value string) string {
	status := strings.ToUpper(strings.TrimSpace(value))
	if status == "" {
		return StatusUpcoming
	}
	return status
}

func statusRank(status string) int {
	switch NormalizeStatus(status) {
	case StatusUpcoming:
		return 0
	case StatusLive:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// IsForwardTransition reports whether moving from one status to the other
// advances the UPCOMING -> LIVE -> COMPLETED chain. Cancelled fights and
// unknown statuses never transition.
func IsForwardTransition(from, to string) bool {
	fromRank := statusRank(from)
	toRank := statusRank(to)
	if fromRank < 0 || toRank < 0 {
		return false
	}
	return toRank > fromRank
}
