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

const clientColumns = `id, name, contact_person, contact_email, industry, notes, logo_url, created_at, updated_at`

func scanClient(row interface{ Scan(...interface{}) error }, c *models.Client, extra ...interface{}) error {
	dest := []interface{}{&c.ID, &c.Name, &c.ContactPerson, &c.ContactEmail,
		&c.Industry, &c.Notes, &c.LogoURL, &c.CreatedAt, &c.UpdatedAt}
	dest = append(dest, extra...)
	return row.Scan(dest...)
}

func (s *Server) listClients(w http.ResponseWriter, r *http.Request) {
	params := parseListParams(r)

	clauses := []string{}
	args := []interface{}{}
	arg := 1

	if params.q != "" {
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR industry ILIKE $%d)", arg, arg))
		args = append(args, "%"+params.q+"%")
		arg++
	}

	sqlStr := fmt.Sprintf(`
		SELECT %s,
		       COUNT(*) OVER() as total_count
		FROM clients`, clientColumns)
	if len(clauses) > 0 {
		sqlStr += " WHERE " + strings.Join(clauses, " AND ")
	}

	allowedSort := map[string]string{
		"id":         "id",
		"name":       "name",
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

	clients := []interface{}{}
	var totalCount int
	for rows.Next() {
		var c models.Client
		if err := scanClient(rows, &c, &totalCount); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		clients = append(clients, c)
	}

	sendListResponse(w, clients, totalCount, params)
}

func (s *Server) getClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var c models.Client
	err := scanClient(s.DB.QueryRowContext(r.Context(),
		`SELECT `+clientColumns+` FROM clients WHERE id = $1`, id), &c)
	if err == sql.ErrNoRows {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) createClient(w http.ResponseWriter, r *http.Request) {
	var in models.Client
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid JSON", 400)
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		http.Error(w, "name is required", 400)
		return
	}

	var out models.Client
	err := scanClient(s.DB.QueryRowContext(r.Context(), `
		INSERT INTO clients (id, name, contact_person, contact_email, industry, notes, logo_url)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING `+clientColumns,
		uuid.NewString(), in.Name, nullIfEmpty(in.ContactPerson), nullIfEmpty(in.ContactEmail),
		nullIfEmpty(in.Industry), nullIfEmpty(in.Notes), nullIfEmpty(in.LogoURL)), &out)
	if err != nil {
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

func (s *Server) updateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in models.Client
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
	if in.ContactPerson != nil {
		sets = append(sets, set{"contact_person = $%d", nullIfEmpty(in.ContactPerson)})
	}
	if in.ContactEmail != nil {
		sets = append(sets, set{"contact_email = $%d", nullIfEmpty(in.ContactEmail)})
	}
	if in.Industry != nil {
		sets = append(sets, set{"industry = $%d", nullIfEmpty(in.Industry)})
	}
	if in.Notes != nil {
		sets = append(sets, set{"notes = $%d", nullIfEmpty(in.Notes)})
	}
	if in.LogoURL != nil {
		sets = append(sets, set{"logo_url = $%d", nullIfEmpty(in.LogoURL)})
	}
	if len(sets) == 0 {
		http.Error(w, "no fields to update", 400)
		return
	}

	args := make([]interface{}, 0, len(sets)+1)
	sqlStr := "UPDATE clients SET "
	for i, sset := range sets {
		if i > 0 {
			sqlStr += ", "
		}
		sqlStr += fmt.Sprintf(sset.sql, i+1)
		args = append(args, sset.val)
	}
	sqlStr += fmt.Sprintf(", updated_at = now() WHERE id = $%d RETURNING %s", len(args)+1, clientColumns)
	args = append(args, id)

	var out models.Client
	if err := scanClient(s.DB.QueryRowContext(r.Context(), sqlStr, args...), &out); err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), 500)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) deleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.DB.ExecContext(r.Context(), `DELETE FROM clients WHERE id = $1`, id)
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
