// Package rating implements the rating submission path: writing a
// project's team rating and recomputing the owning vendor's aggregate
// rating and review count in one atomic transaction.
package rating

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

var (
	// ErrProjectNotFound is returned when the rated project does not exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrVendorNotFound is returned when the target vendor does not exist.
	ErrVendorNotFound = errors.New("vendor not found")
)

// ProjectRating is one project's team rating as seen inside the
// submission transaction. TeamRating is nil for unrated projects.
type ProjectRating struct {
	ProjectID  string
	TeamRating *int
}

// Aggregate is a vendor's derived rating state.
type Aggregate struct {
	Rating      float64
	ReviewCount int
}

// Store performs the individual reads and writes of one submission.
// All calls happen inside a single transaction; writes must not be
// visible outside it until the runner commits.
type Store interface {
	SetProjectRating(ctx context.Context, projectID string, stars int) error
	ProjectRatingsByVendor(ctx context.Context, vendorID string) ([]ProjectRating, error)
	SetVendorAggregate(ctx context.Context, vendorID string, agg Aggregate) error
}

// TxRunner runs fn against a Store whose writes commit together or not
// at all.
type TxRunner interface {
	InTx(ctx context.Context, fn func(Store) error) error
}

// Aggregator submits project ratings and keeps vendor aggregates
// consistent with them.
type Aggregator struct {
	runner TxRunner
	logger *zap.Logger
}

func NewAggregator(runner TxRunner, logger *zap.Logger) *Aggregator {
	return &Aggregator{runner: runner, logger: logger}
}

// Submit sets stars (1-5) as the team rating of projectID and
// recomputes vendorID's aggregate from all of its rated projects.
//
// Precondition: projectID and vendorID exist; stars is 1..5.
// Postcondition: the project's teamRating equals stars, the vendor's
// rating equals the 2-decimal-rounded average over its projects with a
// positive team rating and reviewCount equals their count; with no such
// projects the aggregate is reset to 0/0. On any error no write is
// visible.
func (a *Aggregator) Submit(ctx context.Context, projectID, vendorID string, stars int) (Aggregate, error) {
	if projectID == "" {
		return Aggregate{}, errors.New("project id is required")
	}
	if vendorID == "" {
		return Aggregate{}, errors.New("vendor id is required")
	}
	if stars < 1 || stars > 5 {
		return Aggregate{}, fmt.Errorf("rating must be between 1 and 5, got %d", stars)
	}

	var agg Aggregate
	err := a.runner.InTx(ctx, func(s Store) error {
		if err := s.SetProjectRating(ctx, projectID, stars); err != nil {
			return err
		}

		ratings, err := s.ProjectRatingsByVendor(ctx, vendorID)
		if err != nil {
			return err
		}

		// The just-written rating is authoritative: overwrite it in the
		// read set, or synthesize an entry when the rated project is not
		// assigned to this vendor.
		found := false
		for i := range ratings {
			if ratings[i].ProjectID == projectID {
				v := stars
				ratings[i].TeamRating = &v
				found = true
				break
			}
		}
		if !found {
			v := stars
			ratings = append(ratings, ProjectRating{ProjectID: projectID, TeamRating: &v})
		}

		var rated []int
		for _, r := range ratings {
			if r.TeamRating != nil && *r.TeamRating > 0 {
				rated = append(rated, *r.TeamRating)
			}
		}

		agg = computeAggregate(rated)
		return s.SetVendorAggregate(ctx, vendorID, agg)
	})
	if err != nil {
		return Aggregate{}, err
	}

	a.logger.Info("rating submitted",
		zap.String("project_id", projectID),
		zap.String("vendor_id", vendorID),
		zap.Int("stars", stars),
		zap.Float64("vendor_rating", agg.Rating),
		zap.Int("review_count", agg.ReviewCount),
	)

	return agg, nil
}

// computeAggregate averages the given star values rounded to 2
// decimals. An empty set resets the aggregate to 0/0 rather than
// dividing by zero.
func computeAggregate(stars []int) Aggregate {
	if len(stars) == 0 {
		return Aggregate{}
	}
	sum := 0
	for _, s := range stars {
		sum += s
	}
	avg := float64(sum) / float64(len(stars))
	return Aggregate{
		Rating:      math.Round(avg*100) / 100,
		ReviewCount: len(stars),
	}
}
