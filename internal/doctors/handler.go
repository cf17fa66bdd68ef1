package doctors

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// Handler serves the doctors directory.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// List handles GET /doctors with optional specialty and search filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Specialty: q.Get("specialty"),
		Search:    q.Get("search"),
	}

	ds, err := h.repo.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch doctors")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"doctors": ds,
		"total":   len(ds),
	})
}

// GetByID handles GET /doctors/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	d, err := h.repo.Get(r.Context(), id)
	if err == ErrNotFound {
		writeError(w, http.StatusNotFound, "Doctor not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to fetch doctor", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch doctor")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"doctor":  d,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
