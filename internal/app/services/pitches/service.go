package pitches

import (
	"context"
	"strings"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/pitch"
	"github.com/innovatorsofhonour/innovators/internal/app/metrics"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// SubmitInput carries the fields of a pitch application form.
type SubmitInput struct {
	CompanyName   string
	FounderName   string
	Email         string
	Phone         string
	CompanyStage  string
	Industry      string
	FundingAmount string
}

// Service accepts pitch applications.
type Service struct {
	store storage.PitchStore
	log   *logger.Logger
}

// New constructs a pitch application service.
func New(store storage.PitchStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("pitches")
	}
	return &Service{store: store, log: log}
}

// Submit validates and stores an application in the pending state.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (pitch.Application, error) {
	app := pitch.Application{
		CompanyName:   in.CompanyName,
		FounderName:   in.FounderName,
		Email:         in.Email,
		Phone:         optional(in.Phone),
		CompanyStage:  in.CompanyStage,
		Industry:      in.Industry,
		FundingAmount: optional(in.FundingAmount),
		Status:        pitch.StatusPending,
	}

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"company_name", app.CompanyName},
		{"founder_name", app.FounderName},
		{"email", app.Email},
		{"company_stage", app.CompanyStage},
		{"industry", app.Industry},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return pitch.Application{}, apperrors.MissingFields(missing...)
	}
	if !strings.Contains(app.Email, "@") {
		return pitch.Application{}, apperrors.Validation("email must be a valid address")
	}

	created, err := s.store.CreatePitchApplication(ctx, app)
	if err != nil {
		return pitch.Application{}, apperrors.Internal("failed to submit application", err)
	}
	metrics.RecordListingCreated("pitch_application")
	s.log.WithField("application_id", created.ID).
		WithField("industry", created.Industry).
		Info("pitch application received")
	return created, nil
}

// List returns every application, newest first.
func (s *Service) List(ctx context.Context) ([]pitch.Application, error) {
	list, err := s.store.ListPitchApplications(ctx)
	if err != nil {
		return nil, apperrors.Internal("failed to list applications", err)
	}
	return list, nil
}

func optional(v string) *string {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return &v
}
