package rating

import (
	"context"
	"database/sql"
	"fmt"
)

// SQLRunner executes submissions against Postgres. Each InTx call is
// one transaction; the vendor's project rows are locked for the
// duration so concurrent submissions for the same vendor cannot
// interleave reads and writes and lose an update.
type SQLRunner struct {
	db *sql.DB
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db}
}

func (r *SQLRunner) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin rating transaction: %w", err)
	}

	if err := fn(&sqlStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit rating transaction: %w", err)
	}
	return nil
}

type sqlStore struct {
	tx *sql.Tx
}

func (s *sqlStore) SetProjectRating(ctx context.Context, projectID string, stars int) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE projects SET team_rating = $1, updated_at = now() WHERE id = $2`,
		stars, projectID)
	if err != nil {
		return fmt.Errorf("set project rating: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set project rating: %w", err)
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

func (s *sqlStore) ProjectRatingsByVendor(ctx context.Context, vendorID string) ([]ProjectRating, error) {
	rows, err := s.tx.QueryContext(ctx,
		`SELECT id, team_rating FROM projects WHERE vendor_id = $1 FOR UPDATE`,
		vendorID)
	if err != nil {
		return nil, fmt.Errorf("load vendor project ratings: %w", err)
	}
	defer rows.Close()

	var ratings []ProjectRating
	for rows.Next() {
		var pr ProjectRating
		var stars sql.NullInt64
		if err := rows.Scan(&pr.ProjectID, &stars); err != nil {
			return nil, fmt.Errorf("scan project rating: %w", err)
		}
		if stars.Valid {
			v := int(stars.Int64)
			pr.TeamRating = &v
		}
		ratings = append(ratings, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load vendor project ratings: %w", err)
	}
	return ratings, nil
}

func (s *sqlStore) SetVendorAggregate(ctx context.Context, vendorID string, agg Aggregate) error {
	res, err := s.tx.ExecContext(ctx,
		`UPDATE vendors SET rating = $1, review_count = $2, updated_at = now() WHERE id = $3`,
		agg.Rating, agg.ReviewCount, vendorID)
	if err != nil {
		return fmt.Errorf("set vendor aggregate: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set vendor aggregate: %w", err)
	}
	if n == 0 {
		return ErrVendorNotFound
	}
	return nil
}
