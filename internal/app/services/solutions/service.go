package solutions

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/metrics"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// CreateInput carries the fields accepted when listing a solution.
type CreateInput struct {
	Title         string
	Description   string
	Category      string
	Stage         string
	FundingStatus string
	// PriceETH defaults to solution.DefaultPriceETH when nil.
	PriceETH *decimal.Decimal
}

// Service manages the solutions catalog.
type Service struct {
	store storage.SolutionStore
	log   *logger.Logger
}

// New constructs a solutions service.
func New(store storage.SolutionStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("solutions")
	}
	return &Service{store: store, log: log}
}

// Create validates and persists a new listing. creatorID is the caller's
// identity and may be nil.
func (s *Service) Create(ctx context.Context, in CreateInput, creatorID *int64) (solution.Solution, error) {
	sol := solution.Solution{
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Stage:         in.Stage,
		FundingStatus: in.FundingStatus,
		PriceETH:      solution.DefaultPriceETH,
		CreatorID:     creatorID,
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"title", sol.Title},
		{"description", sol.Description},
		{"category", sol.Category},
		{"stage", sol.Stage},
		{"funding_status", sol.FundingStatus},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return solution.Solution{}, apperrors.MissingFields(missing...)
	}
	if in.PriceETH != nil {
		if in.PriceETH.IsNegative() {
			return solution.Solution{}, apperrors.Validation("price_eth must not be negative")
		}
		sol.PriceETH = *in.PriceETH
	}

	created, err := s.store.CreateSolution(ctx, sol)
	if err != nil {
		return solution.Solution{}, apperrors.Internal("failed to create solution", err)
	}
	metrics.RecordListingCreated("solution")
	s.log.WithField("solution_id", created.ID).
		WithField("category", created.Category).
		Info("solution listed")
	return created, nil
}

// List returns listings matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter storage.SolutionFilter) ([]solution.Solution, error) {
	list, err := s.store.ListSolutions(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to list solutions", err)
	}
	return list, nil
}

// Get fetches a single listing.
func (s *Service) Get(ctx context.Context, id int64) (solution.Solution, error) {
	sol, err := s.store.GetSolution(ctx, id)
	if err != nil {
		return solution.Solution{}, s.mapErr(id, "failed to load solution", err)
	}
	return sol, nil
}

// RecordView adds one view and returns the new total.
func (s *Service) RecordView(ctx context.Context, id int64) (int64, error) {
	views, err := s.store.IncrementSolutionViews(ctx, id)
	if err != nil {
		return 0, s.mapErr(id, "failed to record view", err)
	}
	metrics.RecordSolutionActivity("view")
	return views, nil
}

// RecordPurchase adds one purchase and returns the new total. No payment is
// taken.
func (s *Service) RecordPurchase(ctx context.Context, id int64) (int64, error) {
	purchases, err := s.store.IncrementSolutionPurchases(ctx, id)
	if err != nil {
		return 0, s.mapErr(id, "failed to record purchase", err)
	}
	metrics.RecordSolutionActivity("purchase")
	s.log.WithField("solution_id", id).WithField("purchases", purchases).Info("solution purchased")
	return purchases, nil
}

func (s *Service) mapErr(id int64, msg string, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.NotFound("solution", id, err)
	}
	return apperrors.Internal(msg, err)
}
