package scrape

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
)

var (
	recordRe    = regexp.MustCompile(`\b\d{1,2}-\d{1,2}(?:-\d{1,2})?\b`)
	liveRoundRe = regexp.MustCompile(`(?i)\bround\s*(\d{1,2})\b`)
	vsLineRe    = regexp.MustCompile(`(?i)^(.{2,60}?)\s+vs\.?\s+(.{2,60})$`)
	vsBodyRe    = regexp.MustCompile(`([\p{Lu}][\p{L}'’.\-]+(?:\s+[\p{Lu}][\p{L}'’.\-]+){0,3})\s+[vV][sS]\.?\s+([\p{Lu}][\p{L}'’.\-]+(?:\s+[\p{Lu}][\p{L}'’.\-]+){0,3})`)
)

// Extractor turns raw page markup into a Snapshot using the tiered strategy:
// structured selectors, then "X vs Y" container lines, then a free-text scan
// of the whole body. Each tier runs only when the previous one found nothing.
type Extractor struct {
	src    Source
	logger *logging.Logger
	now    func() time.Time
}

func NewExtractor(src Source, logger *logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{src: src, logger: logger, now: time.Now}
}

// Extract never fails. Unparseable markup yields an empty upcoming snapshot,
// which downstream stages treat as "no change".
func (e *Extractor) Extract(markup string) Snapshot {
	snap := Snapshot{EventStatus: HintUpcoming, ScrapedAt: e.now()}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		e.logger.Warn("parse page markup failed", "source", e.src.Name, "error", err)
		return snap
	}

	fights := e.structuredFights(doc)
	if len(fights) == 0 {
		fights = e.patternFights(doc)
	}
	if len(fights) == 0 {
		fights = e.freeTextFights(doc)
	}
	snap.Fights = fights

	pageText := strings.ToLower(squashSpace(doc.Text()))
	switch {
	case containsAny(pageText, e.src.EventDoneWords):
		snap.EventStatus = HintComplete
		snap.IsComplete = true
		snap.HasStarted = true
	case containsAny(pageText, e.src.EventLiveWords):
		snap.EventStatus = HintLive
		snap.HasStarted = true
	}
	for _, item := range fights {
		if item.StatusHint != HintUpcoming {
			snap.HasStarted = true
		}
	}

	return snap
}

func (e *Extractor) structuredFights(doc *goquery.Document) []FightObservation {
	var containers *goquery.Selection
	for _, selector := range e.src.FightSelectors {
		found := doc.Find(selector)
		if found.Length() > 0 {
			containers = found
			break
		}
	}
	if containers == nil {
		return nil
	}

	out := make([]FightObservation, 0, containers.Length())
	containers.Each(func(_ int, container *goquery.Selection) {
		sideA, sideB, ok := e.corners(container)
		if !ok {
			return
		}
		obs := FightObservation{
			Order:      len(out) + 1,
			StatusHint: HintUpcoming,
			SideA:      sideA,
			SideB:      sideB,
		}
		e.classify(&obs, squashSpace(container.Text()))
		out = append(out, obs)
	})

	return out
}

func (e *Extractor) corners(container *goquery.Selection) (PersonObservation, PersonObservation, bool) {
	for _, selector := range e.src.CornerSelectors {
		found := container.Find(selector)
		if found.Length() < 2 {
			continue
		}
		return e.corner(found.Eq(0)), e.corner(found.Eq(1)), true
	}
	return PersonObservation{}, PersonObservation{}, false
}

func (e *Extractor) corner(sel *goquery.Selection) PersonObservation {
	out := PersonObservation{}

	for _, selector := range e.src.NameSelectors {
		name := squashSpace(sel.Find(selector).First().Text())
		if name != "" {
			out.RawName = name
			break
		}
	}
	text := squashSpace(sel.Text())
	if out.RawName == "" {
		out.RawName = recordRe.ReplaceAllString(text, "")
		out.RawName = squashSpace(out.RawName)
	}
	if record := recordRe.FindString(text); record != "" {
		out.Record = record
	}

	class, _ := sel.Attr("class")
	out.IsWinner = hasAnyClass(class, e.src.WinnerClasses) ||
		strings.Contains(strings.ToLower(text), "winner")

	return out
}

func (e *Extractor) patternFights(doc *goquery.Document) []FightObservation {
	var out []FightObservation
	seen := make(map[string]struct{})

	doc.Find("li, tr, p, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		line := squashSpace(sel.Text())
		match := vsLineRe.FindStringSubmatch(line)
		if match == nil {
			return
		}
		obs := FightObservation{
			Order:      len(out) + 1,
			StatusHint: HintUpcoming,
			SideA:      PersonObservation{RawName: cleanScrapedName(match[1])},
			SideB:      PersonObservation{RawName: cleanScrapedName(match[2])},
		}
		if obs.SideA.RawName == "" || obs.SideB.RawName == "" {
			return
		}
		key := obs.PairKey()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		e.classify(&obs, line)
		out = append(out, obs)
	})

	return out
}

// freeTextFights is the last-resort tier: placeholder observations for every
// distinct "X vs Y" occurrence in the body, in document order.
func (e *Extractor) freeTextFights(doc *goquery.Document) []FightObservation {
	body := squashSpace(doc.Find("body").Text())
	matches := vsBodyRe.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	var out []FightObservation
	seen := make(map[string]struct{})
	for _, match := range matches {
		obs := FightObservation{
			Order:      len(out) + 1,
			StatusHint: HintUpcoming,
			SideA:      PersonObservation{RawName: cleanScrapedName(match[1])},
			SideB:      PersonObservation{RawName: cleanScrapedName(match[2])},
		}
		key := obs.PairKey()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, obs)
	}

	return out
}

func (e *Extractor) classify(obs *FightObservation, text string) {
	lower := strings.ToLower(text)
	hasWinnerFlag := obs.SideA.IsWinner || obs.SideB.IsWinner

	switch {
	case hasWinnerFlag || containsAny(lower, e.src.CompleteKeywords):
		obs.StatusHint = HintComplete
		obs.Result = extractResult(text, obs.SideA, obs.SideB, e.src)
	case containsAny(lower, e.src.LiveKeywords) || liveRoundRe.MatchString(text):
		obs.StatusHint = HintLive
		if match := liveRoundRe.FindStringSubmatch(text); match != nil {
			if value, err := strconv.Atoi(match[1]); err == nil && value >= 1 {
				obs.CurrentRound = &value
			}
		}
	}

	obs.IsTitleFight = containsAny(lower, e.src.TitleWords)
	if e.src.WeightClassRe != nil {
		if match := e.src.WeightClassRe.FindStringSubmatch(text); match != nil {
			obs.WeightClass = match[1]
		}
	}
}

func cleanScrapedName(raw string) string {
	return squashSpace(recordRe.ReplaceAllString(raw, ""))
}

func containsAny(lower string, words []string) bool {
	for _, word := range words {
		if word != "" && strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

func hasAnyClass(classAttr string, wanted []string) bool {
	if classAttr == "" {
		return false
	}
	for _, class := range strings.Fields(classAttr) {
		for _, candidate := range wanted {
			if strings.EqualFold(class, candidate) {
				return true
			}
		}
	}
	return false
}

func squashSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
