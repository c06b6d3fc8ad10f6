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
)

const projectColumns = `id, name, description, status, budget, start_date, end_date, vendor_id, client_id, team_rating, created_at, updated_at`

func scanProject(row interface{ Scan(...interface{}) error }, p *models.Project, extra ...interface{}) error {
	dest := []interface{}{&p.ID, &p.Name, &p.Description, &p.Status, &p.Budget,
		&p.StartDate, &p.EndDate, &p.VendorID, &p.ClientID, &p.TeamRating, &p.CreatedAt, &p.UpdatedAt}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", arg, arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}
	if v := strings.TrimSpace(r.URL.Query().Get("vendor_id")); v != "" {
		clauses = append(clauses, fmt.Sprintf("vendor_id = $%d", arg))
		args = append(args, v)
		arg++
	}
	if c := strings.TrimSpace(r.URL.Query().Get("client_id")); c != "" {
		clauses = append(clauses, fmt.Sprintf("client_id = $%d", arg))
		args = append(args, c)
		arg++
	}
	if st := strings.TrimSpace(r.URL.Query().Get("status")); st != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", arg))
		args = append(args, st)
		arg++
	}

	sqlStr := fmt.Sprintf(`
		SELECT %s,
		       COUNT(*) OVER() as total_count
		FROM projects`, projectColumns)
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}

	allowedSort := map[string]string{
		"id":         "id",
		"name":       "name",
		"status":     "status",
		"budget":     "budget",
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

	projects := []interface{}{}
	var totalCount int
	for rows.Next() {
		var p models.Project
		if err := scanProject(rows, &p, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		projects = append(projects, p)
	}

	sendListResponse(w, projects, totalCount, params)
}

func (s *Server) getProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var p models.Project
	err := scanProject(s.DB.QueryRowContext(r.Context(),
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id), &p)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// createProject inserts a new project. Status defaults to Planning.
// The team rating is derived state and cannot be set here.
func (s *Server) createProject(w http.ResponseWriter, r *http.Request) {
	var in models.Project
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", 400)
		return
	}
	if in.Status == "" {
		in.Status = "Planning"
	}
	if !models.IsValidProjectStatus(in.Status) {
		http.Error(w, "invalid status, must be one of: "+strings.Join(models.ValidProjectStatuses, ", "), 400)
		return
	}
	if in.Budget < 0 {
		http.Error(w, "budget must not be negative", 400)
		return
	}

	var out models.Project
	err := scanProject(s.DB.QueryRowContext(r.Context(), `
		INSERT INTO projects (id, name, description, status, budget, start_date, end_date, vendor_id, client_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+projectColumns,
		uuid.NewString(), in.Name, in.Description, in.Status, in.Budget,
		nullIfEmpty(in.StartDate), nullIfEmpty(in.EndDate),
		nullIfEmpty(in.VendorID), nullIfEmpty(in.ClientID)), &out)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

// projectPatch distinguishes absent fields from zero values on update.
type projectPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Budget      *float64 `json:"budget"`
	StartDate   *string  `json:"startDate"`
	EndDate     *string  `json:"endDate"`
	VendorID    *string  `json:"vendorId"`
	ClientID    *string  `json:"clientId"`
}

func (s *Server) updateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in projectPatch
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}

	type set struct {
		sql string
		val interface{}
	}
	sets := make([]set, 0, 8)
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			http.Error(w, "name must not be empty", 400)
			return
		}
		sets = append(sets, set{"name = $%d", *in.Name})
	}
	if in.Description != nil {
		sets = append(sets, set{"description = $%d", *in.Description})
	}
	if in.Status != nil {
		if !models.IsValidProjectStatus(*in.Status) {
			http.Error(w, "invalid status, must be one of: "+strings.Join(models.ValidProjectStatuses, ", "), 400)
			return
		}
		sets = append(sets, set{"status = $%d", *in.Status})
	}
	if in.Budget != nil {
		if *in.Budget < 0 {
			http.Error(w, "budget must not be negative", 400)
			return
		}
		sets = append(sets, set{"budget = $%d", *in.Budget})
	}
	if in.StartDate != nil {
		sets = append(sets, set{"start_date = $%d", nullIfEmpty(in.StartDate)})
	}
	if in.EndDate != nil {
		sets = append(sets, set{"end_date = $%d", nullIfEmpty(in.EndDate)})
	}
	if in.VendorID != nil {
		sets = append(sets, set{"vendor_id = $%d", nullIfEmpty(in.VendorID)})
	}
	if in.ClientID != nil {
		sets = append(sets, set{"client_id = $%d", nullIfEmpty(in.ClientID)})
	}
	if len(sets) == 0 {
		http.Error(w, "no fields to update", 400)
		return
	}

	args := make([]interface{}, 0, len(sets)+1)
	sqlStr := "UPDATE projects SET "
	for i, sset := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf(sset.sql, i+1)
		args = append(args, sset.val)
	}
	sqlStr += fmt.Sprintf(", updated_at = now() WHERE id = $%d RETURNING %s", len(args)+1, projectColumns)
	args = append(args, id)

	var out models.Project
	if err := scanProject(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM projects WHERE id = $1`, id)
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
