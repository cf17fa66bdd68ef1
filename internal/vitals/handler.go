package vitals

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/ronakwanjari/medibot-platform/pkg/logging"
)

// Handler serves the vitals log.
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

// Save handles POST /vitals.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	var req SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON in request body")
		return
	}
	if strings.TrimSpace(req.PatientID) == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	reading, err := h.repo.Save(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to save vitals", "patient", req.PatientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save vitals data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    reading,
	})
}

// List handles GET /vitals?patientId=...&limit=N.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	patientID := q.Get("patientId")
	if patientID == "" {
		writeError(w, http.StatusBadRequest, "patientId is required")
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	readings, err := h.repo.List(r.Context(), patientID, limit)
	if err != nil {
		h.logger.Error("failed to list vitals", "patient", patientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch vitals data")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"vitals":  readings,
		"total":   len(readings),
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
