package internal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"vira-api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const vendorColumns = `id, name, location, rating, review_count, services, contact_email, notes, image_url, created_at, updated_at`

func scanVendor(row interface{ Scan(...interface{}) error }, v *models.Vendor, extra ...interface{}) error {
	var services pq.StringArray
	dest := []interface{}{&v.ID, &v.Name, &v.Location, &v.Rating, &v.ReviewCount, &services,
		&v.ContactEmail, &v.Notes, &v.ImageURL, &v.CreatedAt, &v.UpdatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	v.Services = []string(services)
	return nil
}

// LIST with basic filters & pagination
func (s *Server) listVendors(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	// optional text search on name
	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	// optional service filter (membership in the services array)
	if svc := strings.TrimSpace(r.URL.Query().Get("service")); svc != "" {
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(services)", arg))
		args = append(args, svc)
		arg++
	}

	whereClause := ""
	if len(clauses) > 0 {
		whereClause = " WHERE " + strings.Join(clauses, " AND ")
	}

	// Build the main query with COUNT(*) OVER() to get total count
	sqlStr := fmt.Sprintf(`
		SELECT %s,
		       COUNT(*) OVER() as total_count
		FROM vendors%s`, vendorColumns, whereClause)

	allowedSort := map[string]string{
		"id":         "id",
		"name":       "name",
		"rating":     "rating",
		"created_at": "created_at",
		"updated_at": "updated_at",
	}
	sqlStr += buildOrderBy(params.sort, allowedSort)
	sqlStr += fmt.Sprintf(" LIMIT %d OFFSET %d", params.limit, params.offset)

	rows, err := s.DB.QueryContext(r.Context(), sqlStr, args...)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	defer rows.Close()

	vendors := []interface{}{}
	var totalCount int
	for rows.Next() {
		var v models.Vendor
		if err := scanVendor(rows, &v, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		vendors = append(vendors, v)
	}

	sendListResponse(w, vendors, totalCount, params)
}

func (s *Server) getVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var v models.Vendor
	err := scanVendor(s.DB.QueryRowContext(r.Context(),
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id), &v)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// createVendor inserts a new vendor. Rating and review count are
// derived fields and always start at zero regardless of input.
func (s *Server) createVendor(w http.ResponseWriter, r *http.Request) {
	var in models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", 400)
		return
	}

	var out models.Vendor
	err := scanVendor(s.DB.QueryRowContext(r.Context(), `
		INSERT INTO vendors (id, name, location, services, contact_email, notes, image_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+vendorColumns,
		uuid.NewString(), in.Name, nullIfEmpty(in.Location), pq.StringArray(in.Services),
		nullIfEmpty(in.ContactEmail), nullIfEmpty(in.Notes), nullIfEmpty(in.ImageURL)), &out)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) updateVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.Vendor
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	type set struct {
		sql string
		val interface{}
	}
	sets := make([]set, 0, 6)
	if strings.TrimSpace(in.Name) != "" {
		sets = append(sets, set{"name = $%d", in.Name})
	}
	if in.Location != nil {
		sets = append(sets, set{"location = $%d", nullIfEmpty(in.Location)})
	}
	if in.Services != nil {
		sets = append(sets, set{"services = $%d", pq.StringArray(in.Services)})
	}
	if in.ContactEmail != nil {
		sets = append(sets, set{"contact_email = $%d", nullIfEmpty(in.ContactEmail)})
	}
	if in.Notes != nil {
		sets = append(sets, set{"notes = $%d", nullIfEmpty(in.Notes)})
	}
	if in.ImageURL != nil {
		sets = append(sets, set{"image_url = $%d", nullIfEmpty(in.ImageURL)})
	}
	if len(sets) == 0 {
		http.Error(w, "no fields to update", 400)
		return
	}

	args := make([]interface{}, 0, len(sets)+1)
	sqlStr := "UPDATE vendors SET "
	for i, sset := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf(sset.sql, i+1)
		args = append(args, sset.val)
	}
	sqlStr += fmt.Sprintf(", updated_at = now() WHERE id = $%d RETURNING %s", len(args)+1, vendorColumns)
	args = append(args, id)

	var out models.Vendor
	if err := scanVendor(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteVendor(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM vendors WHERE id = $1`, id)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fetchAllVendors loads the full vendor list, used as model context by
// the AI endpoints.
func (s *Server) fetchAllVendors(r *http.Request) ([]models.Vendor, error) {
	rows, err := s.DB.QueryContext(r.Context(),
		`SELECT `+vendorColumns+` FROM vendors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []models.Vendor
	for rows.Next() {
		var v models.Vendor
		if err := scanVendor(rows, &v); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}
