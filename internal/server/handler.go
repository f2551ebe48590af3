package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"ledgerchat/internal/export"
	"ledgerchat/internal/ingest"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/query"
	"ledgerchat/internal/session"
	"ledgerchat/internal/storage"
)

const maxUploadBytes = 32 << 20

type Sessions interface {
	Upload(ctx context.Context, filename string, content []byte) (session.Upload, error)
	Ask(ctx context.Context, sessionID, prompt string) (query.Response, error)
	CurrentFilter(sessionID string) (*ledger.Table, error)
}

type Handler struct {
	Sessions Sessions
	logger   *zap.Logger

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from the map once no request holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

type uploadResponse struct {
	SessionID string   `json:"session_id"`
	DatasetID string   `json:"dataset_id"`
	Rows      int      `json:"rows"`
	Columns   []string `json:"columns"`
	Reused    bool     `json:"reused"`
}

type queryRequest struct {
	Prompt string `json:"prompt"`
}

type queryResponse struct {
	Answer  string       `json:"answer"`
	Intent  query.Intent `json:"intent"`
	Rule    string       `json:"rule"`
	Columns []string     `json:"columns,omitempty"`
	Rows    [][]string   `json:"rows,omitempty"`
}

func NewHandler(sessions Sessions, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{Sessions: sessions, logger: logger, locks: map[string]*sessionLock{}}
}

// lock serialises prompts of one session; different sessions run in parallel.
func (h *Handler) lock(sessionID string) func() {
	h.mu.Lock()
	l, ok := h.locks[sessionID]
	if !ok {
		l = &sessionLock{}
		h.locks[sessionID] = l
	}
	l.refs++
	h.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		h.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(h.locks, sessionID)
		}
		h.mu.Unlock()
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) UploadDataset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "Expected a multipart form with a 'file' field", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing 'file' field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "Failed to read upload", http.StatusBadRequest)
		return
	}

	up, err := h.Sessions.Upload(r.Context(), header.Filename, content)
	if err != nil {
		if isIngestError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("upload failed", zap.String("file", header.Filename), zap.Error(err))
		http.Error(w, "Failed to store dataset", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		SessionID: up.SessionID,
		DatasetID: up.Dataset.ID,
		Rows:      up.Table.Len(),
		Columns:   up.Table.Columns,
		Reused:    up.Reused,
	})
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON body; expected {\"prompt\": \"...\"}", http.StatusBadRequest)
		return
	}

	unlock := h.lock(sessionID)
	resp, err := h.Sessions.Ask(r.Context(), sessionID, req.Prompt)
	unlock()
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}

	out := queryResponse{Answer: resp.Answer, Intent: resp.Intent, Rule: resp.Rule}
	if resp.Result != nil {
		out.Columns = resp.Result.Columns
		out.Rows = make([][]string, 0, resp.Result.Len())
		for _, rec := range resp.Result.Rows {
			out.Rows = append(out.Rows, resp.Result.Values(rec))
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	unlock := h.lock(sessionID)
	current, err := h.Sessions.CurrentFilter(sessionID)
	unlock()
	if err != nil {
		h.writeSessionError(w, sessionID, err)
		return
	}
	if current == nil {
		http.Error(w, "No current filter. Run a filtering query first.", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sessionID+".xlsx"))
	if err := export.WriteTable(current, w); err != nil {
		h.logger.Error("export failed", zap.String("session", sessionID), zap.Error(err))
	}
}

func (h *Handler) writeSessionError(w http.ResponseWriter, sessionID string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}
	h.logger.Error("session request failed", zap.String("session", sessionID), zap.Error(err))
	http.Error(w, "Failed to process request", http.StatusInternalServerError)
}

func isIngestError(err error) bool {
	return errors.Is(err, ingest.ErrEmptyUpload) ||
		errors.Is(err, ingest.ErrNoHeader) ||
		errors.Is(err, ingest.ErrNoKnownColumns) ||
		errors.Is(err, ingest.ErrUnsupportedFormat)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
