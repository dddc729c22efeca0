package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/infrastructure/repository/memory"
	"github.com/cagewatch/live-tracker/internal/usecase"
)

const testInternalToken = "test-internal-token"

type stubFetcher struct{ markup string }

func (f stubFetcher) FetchPage(context.Context, string) (string, error) {
	return f.markup, nil
}

const trackerTestPage = `<html><body>
<div class="c-listing-fight">
  <div class="c-listing-fight__corner"><span class="c-listing-fight__corner-name">Jon Jones</span></div>
  <div class="c-listing-fight__corner"><span class="c-listing-fight__corner-name">Tom Aspinall</span></div>
</div>
</body></html>`

func newTestRouter(t *testing.T) (http.Handler, *usecase.TrackerService) {
	t.Helper()

	eventRepo := memory.NewEventRepository([]event.Event{
		{ID: "ev1", Name: "Vegas Fight Night", Promotion: "mma", SourceURL: "https://example.com/ev1", Status: event.StatusUpcoming},
	})
	fightRepo := memory.NewFightRepository([]fight.Fight{
		{ID: "f1", EventID: "ev1", OrderOnCard: 1, FighterA: "Jon Jones", FighterB: "Tom Aspinall", Status: fight.StatusUpcoming},
	})
	rawRepo := memory.NewRawSnapshotRepository()
	fetcher := stubFetcher{markup: trackerTestPage}

	matcher := usecase.NewFightMatcher(nil)
	trackerService := usecase.NewTrackerService(
		fetcher,
		eventRepo,
		fightRepo,
		rawRepo,
		matcher,
		usecase.NewChangeDetector(),
		usecase.NewStateApplier(eventRepo, fightRepo, "httpapi-test", nil),
		usecase.NewCardNotifier(fightRepo, usecase.NewNoopAlertSender(), nil),
		nil,
	)
	t.Cleanup(trackerService.StopAll)

	backfillService := usecase.NewBackfillService(fetcher, eventRepo, fightRepo, matcher, nil)
	handler := NewHandler(usecase.NewCardService(eventRepo, fightRepo), trackerService, backfillService, HandlerDefaults{}, nil)

	return NewRouter(handler, nil, []string{"*"}, testInternalToken), trackerService
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()
	var envelope googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response envelope: %v", err)
	}
	return envelope
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if envelope := decodeEnvelope(t, rec); envelope.Error != nil {
		t.Fatalf("unexpected error body: %+v", envelope.Error)
	}
}

func TestListEventsAndFights(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list events: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/ev1/fights", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list fights: expected 200, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events/missing/fights", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown event: expected 404, got %d", rec.Code)
	}
}

func TestListEventsRejectsUnknownStatus(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/events?status=bogus", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestStartTrackerRequiresInternalToken(t *testing.T) {
	router, _ := newTestRouter(t)

	body := `{"event_id":"ev1"}`

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/trackers", strings.NewReader(body)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: expected 401, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/trackers", strings.NewReader(body))
	req.Header.Set("X-Internal-Token", "wrong")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: expected 401, got %d", rec.Code)
	}
}

func TestTrackerLifecycleOverHTTP(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/trackers", strings.NewReader(`{"event_id":"ev1"}`))
	req.Header.Set("X-Internal-Token", testInternalToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start tracker: expected 201, got %d body=%s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trackers/ev1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("tracker status: expected 200, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/trackers", strings.NewReader(`{"event_id":"ev1"}`))
	req.Header.Set("X-Internal-Token", testInternalToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate start: expected 409, got %d body=%s", rec.Code, rec.Body.String())
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/trackers/ev1", nil)
	req.Header.Set("X-Internal-Token", testInternalToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("stop tracker: expected 204, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/trackers/ev1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("stopped tracker status: expected 404, got %d", rec.Code)
	}
}

func TestStartTrackerValidation(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/trackers", strings.NewReader(`{"source_url":"https://example.com/x"}`))
	req.Header.Set("X-Internal-Token", testInternalToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing event id: expected 400, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/v1/trackers", strings.NewReader(`{"event_id":"missing"}`))
	req.Header.Set("X-Internal-Token", testInternalToken)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown event: expected 404, got %d", rec.Code)
	}
}
