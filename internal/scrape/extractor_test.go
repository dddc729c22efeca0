package scrape

import (
	"testing"
)

const structuredCardMarkup = `
<html><body>
<div class="c-listing-fight">
  <div class="c-listing-fight__corner c-listing-fight__corner--win">
    <h3 class="c-listing-fight__corner-name">Jon "Bones" Jones</h3>
    <span class="record">27-1</span>
  </div>
  <div class="c-listing-fight__corner">
    <h3 class="c-listing-fight__corner-name">Ciryl Gane</h3>
    <span class="record">11-2</span>
  </div>
  <p>Final: Jones defeats Gane by submission Round 1 2:04 — heavyweight title bout</p>
</div>
<div class="c-listing-fight">
  <div class="c-listing-fight__corner">
    <h3 class="c-listing-fight__corner-name">Alex Pereira</h3>
  </div>
  <div class="c-listing-fight__corner">
    <h3 class="c-listing-fight__corner-name">Jamahal Hill</h3>
  </div>
  <p>Light heavyweight bout</p>
</div>
</body></html>`

func TestExtract_StructuredTier(t *testing.T) {
	snap := NewExtractor(MMASource(), nil).Extract(structuredCardMarkup)

	if len(snap.Fights) != 2 {
		t.Fatalf("expected 2 fights, got %d", len(snap.Fights))
	}

	main := snap.Fights[0]
	if main.SideA.RawName != `Jon "Bones" Jones` {
		t.Fatalf("unexpected side A name: %q", main.SideA.RawName)
	}
	if !main.SideA.IsWinner {
		t.Fatal("winner class not detected on side A")
	}
	if main.SideA.Record != "27-1" {
		t.Fatalf("unexpected record: %q", main.SideA.Record)
	}
	if main.StatusHint != HintComplete {
		t.Fatalf("expected complete hint, got %q", main.StatusHint)
	}
	if main.Result == nil {
		t.Fatal("expected a result on the completed fight")
	}
	if main.Result.WinnerRawName != `Jon "Bones" Jones` {
		t.Fatalf("unexpected winner: %q", main.Result.WinnerRawName)
	}
	if main.Result.Method != "SUB" {
		t.Fatalf("unexpected method: %q", main.Result.Method)
	}
	if !main.IsTitleFight {
		t.Fatal("title bout not flagged")
	}
	if main.WeightClass == "" {
		t.Fatal("weight class not detected")
	}

	second := snap.Fights[1]
	if second.Order != 2 {
		t.Fatalf("unexpected order: %d", second.Order)
	}
	if second.StatusHint != HintUpcoming {
		t.Fatalf("expected upcoming hint, got %q", second.StatusHint)
	}
	if second.Result != nil {
		t.Fatal("upcoming fight should carry no result")
	}

	if !snap.HasStarted {
		t.Fatal("a completed fight implies the event has started")
	}
}

func TestExtract_LiveFightCarriesRound(t *testing.T) {
	markup := `
<html><body>
<div class="c-listing-fight">
  <div class="c-listing-fight__corner"><h3 class="c-listing-fight__corner-name">Islam Makhachev</h3></div>
  <div class="c-listing-fight__corner"><h3 class="c-listing-fight__corner-name">Dustin Poirier</h3></div>
  <p>Live now: Round 3 in progress</p>
</div>
</body></html>`

	snap := NewExtractor(MMASource(), nil).Extract(markup)
	if len(snap.Fights) != 1 {
		t.Fatalf("expected 1 fight, got %d", len(snap.Fights))
	}
	obs := snap.Fights[0]
	if obs.StatusHint != HintLive {
		t.Fatalf("expected live hint, got %q", obs.StatusHint)
	}
	if obs.CurrentRound == nil || *obs.CurrentRound != 3 {
		t.Fatalf("expected round 3, got %v", obs.CurrentRound)
	}
}

func TestExtract_PatternTierWhenNoContainers(t *testing.T) {
	markup := `
<html><body>
<ul>
  <li>Tyson Fury vs Oleksandr Usyk</li>
  <li>Anthony Joshua vs. Daniel Dubois</li>
  <li>Doors open at 6pm</li>
</ul>
</body></html>`

	snap := NewExtractor(BoxingSource(), nil).Extract(markup)
	if len(snap.Fights) != 2 {
		t.Fatalf("expected 2 fights, got %d", len(snap.Fights))
	}
	if snap.Fights[0].SideA.RawName != "Tyson Fury" || snap.Fights[0].SideB.RawName != "Oleksandr Usyk" {
		t.Fatalf("unexpected names: %+v", snap.Fights[0])
	}
}

func TestExtract_FreeTextFallbackDeduplicates(t *testing.T) {
	markup := `
<html><body>
<div><span>Tonight: Jon Jones vs Ciryl Gane headlines. Earlier reports on Jon Jones vs Ciryl Gane
confirmed. Also on the card, Alex Pereira vs Jamahal Hill.</span></div>
</body></html>`

	snap := NewExtractor(MMASource(), nil).Extract(markup)
	if len(snap.Fights) != 2 {
		t.Fatalf("expected 2 deduplicated fights, got %d", len(snap.Fights))
	}
	if snap.Fights[0].StatusHint != HintUpcoming {
		t.Fatalf("placeholders must be upcoming, got %q", snap.Fights[0].StatusHint)
	}
}

func TestExtract_UnparseablePageYieldsEmptyUpcomingSnapshot(t *testing.T) {
	snap := NewExtractor(MMASource(), nil).Extract("")
	if len(snap.Fights) != 0 {
		t.Fatalf("expected no fights, got %d", len(snap.Fights))
	}
	if snap.EventStatus != HintUpcoming || snap.HasStarted || snap.IsComplete {
		t.Fatalf("unexpected snapshot state: %+v", snap)
	}
}

func TestExtract_EventStatusFromPageText(t *testing.T) {
	markup := `
<html><body>
<h1>Full results — card complete</h1>
<div class="fight-card__bout">
  <div class="boxer winner"><h3 class="boxer-name">Tyson Fury</h3></div>
  <div class="boxer"><h3 class="boxer-name">Oleksandr Usyk</h3></div>
  <p>Fury wins by split decision 115-113 112-116 114-113</p>
</div>
</body></html>`

	snap := NewExtractor(BoxingSource(), nil).Extract(markup)
	if !snap.IsComplete || !snap.HasStarted {
		t.Fatalf("event completion not detected: %+v", snap)
	}
	if snap.EventStatus != HintComplete {
		t.Fatalf("unexpected event status: %q", snap.EventStatus)
	}
}
