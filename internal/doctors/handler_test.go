package doctors

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDirectoryRouter(t *testing.T) http.Handler {
	t.Helper()
	repo := NewInMemoryRepository()
	require.NoError(t, Seed(context.Background(), repo))
	h := NewHandler(repo, nil)
	r := chi.NewRouter()
	r.Get("/doctors", h.List)
	r.Get("/doctors/{id}", h.GetByID)
	return r
}

func TestDoctorsEndpoint(t *testing.T) {
	router := newDirectoryRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors?specialty=cardiology", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool      `json:"success"`
		Doctors []*Doctor `json:"doctors"`
		Total   int       `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "Cardiology", resp.Doctors[0].Specialty)
}

func TestDoctorByIDEndpoint(t *testing.T) {
	router := newDirectoryRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool    `json:"success"`
		Doctor  *Doctor `json:"doctor"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Doctor)
	assert.Equal(t, "Dr. Michael Chen", resp.Doctor.Name)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doctors/404", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
