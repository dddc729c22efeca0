package scrape

import "regexp"

// MethodPattern pairs a persisted method code with the text pattern that
// detects it. Patterns are tested in declaration order and the first match
// wins: knockout variants must come before decisions because several method
// keywords are substrings of longer ones.
type MethodPattern struct {
	Method  string
	Pattern *regexp.Regexp
}

// Source is the per-promotion strategy object: selector candidates, status
// keyword lists and the method table. The extraction engine itself is shared;
// each promotion page only differs in these knobs.
type Source struct {
	Name             string
	FightSelectors   []string
	CornerSelectors  []string
	NameSelectors    []string
	WinnerClasses    []string
	LiveKeywords     []string
	CompleteKeywords []string
	EventLiveWords   []string
	EventDoneWords   []string
	TitleWords       []string
	WeightClassRe    *regexp.Regexp
	MethodPatterns   []MethodPattern
}

func defaultMethodPatterns() []MethodPattern {
	return []MethodPattern{
		{Method: "KO", Pattern: regexp.MustCompile(`(?i)\bk\.?o\.?\b|\bknocked\s+out\b|\bby\s+knockout\b`)},
		{Method: "TKO", Pattern: regexp.MustCompile(`(?i)\btko\b|\btechnical\s+knockout\b|referee\s+stoppage`)},
		{Method: "UD", Pattern: regexp.MustCompile(`(?i)unanimous\s+decision|\bud\b`)},
		{Method: "SD", Pattern: regexp.MustCompile(`(?i)split\s+decision|\bsd\b`)},
		{Method: "MD", Pattern: regexp.MustCompile(`(?i)majority\s+decision|\bmd\b`)},
		{Method: "RTD", Pattern: regexp.MustCompile(`(?i)\brtd\b|retir(?:ed|ement)|corner\s+stoppage`)},
		{Method: "DQ", Pattern: regexp.MustCompile(`(?i)\bdq\b|disqualif`)},
		{Method: "NC", Pattern: regexp.MustCompile(`(?i)no\s+contest|\bnc\b`)},
		{Method: "DRAW", Pattern: regexp.MustCompile(`(?i)\bdraw\b`)},
		{Method: "SUB", Pattern: regexp.MustCompile(`(?i)submission|\bsub\b|tap(?:ped)?\s*out`)},
	}
}

// MMASource reads cage-promotion event pages.
func MMASource() Source {
	return Source{
		Name: "mma",
		FightSelectors: []string{
			"div.c-listing-fight",
			"li.fight-card-bout",
			"div.fight-card .bout",
			"div[data-fight-id]",
		},
		CornerSelectors: []string{
			"div.c-listing-fight__corner",
			".corner",
			".fighter",
		},
		NameSelectors: []string{
			".c-listing-fight__corner-name",
			".fighter-name",
			"h3",
		},
		WinnerClasses:    []string{"win", "winner", "c-listing-fight__corner--win"},
		LiveKeywords:     []string{"live", "in progress", "currently"},
		CompleteKeywords: []string{"final", "winner", "wins", "defeats", "def.", "decision", "finish"},
		EventLiveWords:   []string{"live now", "in progress", "main card live"},
		EventDoneWords:   []string{"final results", "event complete", "post-fight"},
		TitleWords:       []string{"title", "championship", "belt"},
		WeightClassRe:    regexp.MustCompile(`(?i)\b((?:light\s+)?(?:heavy|middle|welter|light|feather|bantam|fly|straw)weight)\b`),
		MethodPatterns:   defaultMethodPatterns(),
	}
}

// BoxingSource reads boxing-promotion event pages. Same engine, different
// markup conventions and a scorecard-heavy vocabulary.
func BoxingSource() Source {
	return Source{
		Name: "boxing",
		FightSelectors: []string{
			"div.fight-card__bout",
			"article.bout",
			"tr.bout-row",
			"div[data-bout]",
		},
		CornerSelectors: []string{
			".boxer",
			".corner",
			"td.fighter",
		},
		NameSelectors: []string{
			".boxer-name",
			".name",
			"h3",
		},
		WinnerClasses:    []string{"winner", "won", "bout-winner"},
		LiveKeywords:     []string{"live", "underway", "in the ring"},
		CompleteKeywords: []string{"final", "winner", "wins", "scorecard", "stoppage"},
		EventLiveWords:   []string{"live now", "underway", "main event live"},
		EventDoneWords:   []string{"full results", "card complete", "post-fight"},
		TitleWords:       []string{"title", "world championship", "belt"},
		WeightClassRe:    regexp.MustCompile(`(?i)\b((?:super\s+|light\s+)?(?:heavy|cruiser|middle|welter|light|feather|bantam|fly)weight)\b`),
		MethodPatterns:   defaultMethodPatterns(),
	}
}

// SourceFor maps a persisted promotion code to its strategy.
func SourceFor(promotion string) (Source, bool) {
	switch promotion {
	case "mma", "ufc":
		return MMASource(), true
	case "boxing":
		return BoxingSource(), true
	default:
		return Source{}, false
	}
}
