package scrape

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cagewatch/live-tracker/internal/platform/personname"
)

var (
	winnerLeadRe = regexp.MustCompile(`(?i)([\p{L}'’.\- ]+?)\s+(?:wins|defeats|def\.|beats)\b`)
	timeRe       = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	scorecardRe  = regexp.MustCompile(`\b(\d{2,3}-\d{2,3})\b`)

	// Tested in order: the explicit "round N" form beats the terser ones.
	roundRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bround\s*(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\br(\d{1,2})\b`),
		regexp.MustCompile(`(?i)\brd\.?\s*(\d{1,2})\b`),
	}
)

func isDecisionMethod(method string) bool {
	switch method {
	case "UD", "SD", "MD", "DRAW":
		return true
	default:
		return false
	}
}

// extractResult pulls whatever result detail the text carries for a fight
// judged complete. Returns nil when neither a winner nor a method can be
// read, so a bare completion still transitions status downstream with the
// details left pending.
func extractResult(text string, sideA, sideB PersonObservation, src Source) *ResultObservation {
	out := ResultObservation{}

	switch {
	case sideA.IsWinner:
		out.WinnerRawName = sideA.RawName
	case sideB.IsWinner:
		out.WinnerRawName = sideB.RawName
	default:
		out.WinnerRawName = inferWinnerFromLead(text, sideA, sideB)
	}

	for _, candidate := range src.MethodPatterns {
		if candidate.Pattern.MatchString(text) {
			out.Method = candidate.Method
			break
		}
	}

	out.Round = parseRound(text)
	if match := timeRe.FindStringSubmatch(text); match != nil {
		out.Time = match[1]
	}
	if isDecisionMethod(out.Method) {
		out.Scorecards = scorecardRe.FindAllString(text, -1)
	}

	if out.IsEmpty() {
		return nil
	}
	return &out
}

// inferWinnerFromLead reads a "<name> wins/defeats ..." phrase and assigns it
// to the corner it names, by exact folded comparison first and last-name
// substring second. First substring match wins, which can mis-assign when one
// last name contains the other; kept as-is until the sources stop requiring
// the permissive fallback.
func inferWinnerFromLead(text string, sideA, sideB PersonObservation) string {
	match := winnerLeadRe.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	candidate := personname.FoldKey(match[1])
	if candidate == "" {
		return ""
	}

	for _, side := range []PersonObservation{sideA, sideB} {
		if side.RawName == "" {
			continue
		}
		if candidate == personname.FoldKey(side.RawName) {
			return side.RawName
		}
	}
	for _, side := range []PersonObservation{sideA, sideB} {
		key := personname.LastNameKey(side.RawName)
		if key != "" && strings.Contains(candidate, key) {
			return side.RawName
		}
	}

	return ""
}

func parseRound(text string) *int {
	for _, re := range roundRes {
		match := re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		value, err := strconv.Atoi(match[1])
		if err != nil || value < 1 {
			continue
		}
		return &value
	}
	return nil
}
