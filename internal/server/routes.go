package server

import (
	"net/http"
)

func SetupRoutes(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health)
	mux.HandleFunc("POST /datasets", h.UploadDataset)
	mux.HandleFunc("POST /sessions/{id}/query", h.Query)
	mux.HandleFunc("GET /sessions/{id}/export", h.Export)

	return mux
}
