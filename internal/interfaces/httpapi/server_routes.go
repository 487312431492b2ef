package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerResultRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/results", handler.ListResults)
	mux.HandleFunc("GET /v1/results/{leagueKey}", handler.GetResult)
	mux.HandleFunc("GET /v1/progress", handler.GetProgress)
	mux.HandleFunc("GET /v1/leagues/states", handler.ListLeagueStates)
}

func registerRefreshRoutes(mux *http.ServeMux, handler *Handler, refreshToken string) {
	mux.Handle("POST /v1/refresh", RequireRefreshToken(refreshToken, http.HandlerFunc(handler.TriggerRefresh)))
}
