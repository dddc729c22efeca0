package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/events", handler.ListEvents)
	mux.HandleFunc("GET /v1/events/{eventID}", handler.GetEvent)
	mux.HandleFunc("GET /v1/events/{eventID}/fights", handler.ListFightsByEvent)
	mux.HandleFunc("GET /v1/trackers", handler.ListTrackers)
	mux.HandleFunc("GET /v1/trackers/{eventID}", handler.GetTrackerStatus)
}

func registerControlRoutes(mux *http.ServeMux, handler *Handler, internalToken string) {
	mux.Handle("POST /v1/trackers", RequireInternalToken(internalToken, http.HandlerFunc(handler.StartTracker)))
	mux.Handle("DELETE /v1/trackers/{eventID}", RequireInternalToken(internalToken, http.HandlerFunc(handler.StopTracker)))
	mux.Handle("POST /v1/internal/backfill", RequireInternalToken(internalToken, http.HandlerFunc(handler.RunBackfill)))
}
