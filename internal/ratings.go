package internal

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"vira-api/internal/models"
	"vira-api/internal/rating"

	"github.com/go-chi/chi/v5"
)

type submitRatingRequest struct {
	VendorID string `json:"vendorId"`
	Rating   int    `json:"rating"`
}

// submitProjectRating records a team rating for a project and refreshes
// the vendor's aggregate in the same transaction. Responds with the
// vendor as stored after the update.
func (s *Server) submitProjectRating(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "id")

	var in submitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if strings.TrimSpace(in.VendorID) == "" {
		http.Error(w, "vendorId is required", 400)
		return
	}
	if in.Rating < 1 || in.Rating > 5 {
		http.Error(w, "rating must be between 1 and 5", 400)
		return
	}

	_, err := s.Aggregator.Submit(r.Context(), projectID, in.VendorID, in.Rating)
	switch {
	case errors.Is(err, rating.ErrProjectNotFound):
		http.Error(w, "project not found", http.StatusNotFound)
		return
	case errors.Is(err, rating.ErrVendorNotFound):
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), 500)
		return
	}

	var v models.Vendor
	err = scanVendor(s.DB.QueryRowContext(r.Context(),
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, in.VendorID), &v)
	if err == sql.ErrNoRows {
		http.Error(w, "vendor not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, v)
}
