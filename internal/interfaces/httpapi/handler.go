package httpapi

import (
	"fmt"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"

	"github.com/cagewatch/live-tracker/internal/domain/event"
	"github.com/cagewatch/live-tracker/internal/domain/fight"
	"github.com/cagewatch/live-tracker/internal/platform/logging"
	"github.com/cagewatch/live-tracker/internal/usecase"
)

// HandlerDefaults are applied when a request leaves a tunable unset.
type HandlerDefaults struct {
	TrackInterval   time.Duration
	BackfillWorkers int
}

type Handler struct {
	cardService     *usecase.CardService
	trackerService  *usecase.TrackerService
	backfillService *usecase.BackfillService
	defaults        HandlerDefaults
	logger          *logging.Logger
	validator       *validator.Validate
}

func NewHandler(
	cardService *usecase.CardService,
	trackerService *usecase.TrackerService,
	backfillService *usecase.BackfillService,
	defaults HandlerDefaults,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		cardService:     cardService,
		trackerService:  trackerService,
		backfillService: backfillService,
		defaults:        defaults,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

type eventDTO struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Promotion        string    `json:"promotion"`
	SourceURL        string    `json:"source_url,omitempty"`
	Status           string    `json:"status"`
	CompletionSource string    `json:"completion_source,omitempty"`
	StartsAt         time.Time `json:"starts_at"`
}

type fightDTO struct {
	ID          string   `json:"id"`
	EventID     string   `json:"event_id"`
	OrderOnCard int      `json:"order_on_card"`
	FighterA    string   `json:"fighter_a"`
	FighterB    string   `json:"fighter_b"`
	Status      string   `json:"status"`
	WinnerName  string   `json:"winner_name,omitempty"`
	Method      string   `json:"method,omitempty"`
	ResultRound *int     `json:"result_round,omitempty"`
	ResultTime  string   `json:"result_time,omitempty"`
	Scorecards  []string `json:"scorecards,omitempty"`
	Notified    bool     `json:"notified"`
}

func toEventDTO(item event.Event) eventDTO {
	return eventDTO{
		ID:               item.ID,
		Name:             item.Name,
		Promotion:        item.Promotion,
		SourceURL:        item.SourceURL,
		Status:           item.Status,
		CompletionSource: item.CompletionSource,
		StartsAt:         item.StartsAt,
	}
}

func toFightDTO(item fight.Fight) fightDTO {
	return fightDTO{
		ID:          item.ID,
		EventID:     item.EventID,
		OrderOnCard: item.OrderOnCard,
		FighterA:    item.FighterA,
		FighterB:    item.FighterB,
		Status:      item.Status,
		WinnerName:  item.WinnerName,
		Method:      item.Method,
		ResultRound: item.ResultRound,
		ResultTime:  item.ResultTime,
		Scorecards:  item.Scorecards,
		Notified:    item.Notified,
	}
}

func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListEvents")
	defer span.End()

	events, err := h.cardService.ListEvents(ctx, r.URL.Query().Get("status"))
	if err != nil {
		h.logger.ErrorContext(ctx, "list events failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, item := range events {
		out = append(out, toEventDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEvent")
	defer span.End()

	item, err := h.cardService.GetEvent(ctx, r.PathValue("eventID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, toEventDTO(item))
}

func (h *Handler) ListFightsByEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFightsByEvent")
	defer span.End()

	fights, err := h.cardService.ListFights(ctx, r.PathValue("eventID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	out := make([]fightDTO, 0, len(fights))
	for _, item := range fights {
		out = append(out, toFightDTO(item))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

type startTrackerRequest struct {
	EventID         string `json:"event_id" validate:"required"`
	SourceURL       string `json:"source_url" validate:"omitempty,url"`
	IntervalSeconds int    `json:"interval_seconds" validate:"omitempty,min=5,max=3600"`
}

func (h *Handler) StartTracker(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartTracker")
	defer span.End()

	var req startTrackerRequest
	if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validator.StructCtx(ctx, req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}

	interval := time.Duration(req.IntervalSeconds) * time.Second
	if interval == 0 {
		interval = h.defaults.TrackInterval
	}
	cfg := usecase.TrackerConfig{
		EventID:   req.EventID,
		SourceURL: req.SourceURL,
		Interval:  interval,
	}
	if err := h.trackerService.Start(ctx, cfg); err != nil {
		h.logger.ErrorContext(ctx, "start tracker failed", "event_id", req.EventID, "error", err)
		writeError(ctx, w, err)
		return
	}

	status, running := h.trackerService.Status(req.EventID)
	if !running {
		// First tick already saw the event complete and shut the session down.
		writeSuccess(ctx, w, http.StatusOK, map[string]any{
			"event_id": req.EventID,
			"finished": true,
		})
		return
	}
	writeSuccess(ctx, w, http.StatusCreated, status)
}

func (h *Handler) StopTracker(w http.ResponseWriter, r *http.Request) {
	_, span := startSpan(r.Context(), "httpapi.Handler.StopTracker")
	defer span.End()

	h.trackerService.Stop(r.PathValue("eventID"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetTrackerStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTrackerStatus")
	defer span.End()

	eventID := r.PathValue("eventID")
	status, exists := h.trackerService.Status(eventID)
	if !exists {
		writeError(ctx, w, fmt.Errorf("%w: no tracker for event=%s", usecase.ErrNotFound, eventID))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, status)
}

func (h *Handler) ListTrackers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTrackers")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.trackerService.List())
}

func (h *Handler) RunBackfill(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunBackfill")
	defer span.End()

	var input usecase.BackfillInput
	if r.ContentLength > 0 {
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(ctx, w, fmt.Errorf("%w: decode request body: %v", usecase.ErrInvalidInput, err))
			return
		}
	}
	if err := h.validator.StructCtx(ctx, input); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err))
		return
	}
	if input.Workers == 0 {
		input.Workers = h.defaults.BackfillWorkers
	}

	result, err := h.backfillService.Run(ctx, input)
	if err != nil {
		h.logger.ErrorContext(ctx, "backfill run failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, result)
}
