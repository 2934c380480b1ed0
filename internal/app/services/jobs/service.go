package jobs

import (
	"context"
	"strings"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/metrics"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// CreateInput carries the fields accepted when posting a job.
type CreateInput struct {
	Title        string
	Company      string
	Location     string
	JobType      string
	Description  string
	SalaryRange  string
	Requirements string
	Benefits     string
	Remote       bool
}

// Service manages the hiring board.
type Service struct {
	store storage.JobStore
	log   *logger.Logger
}

// New constructs a jobs service.
func New(store storage.JobStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("jobs")
	}
	return &Service{store: store, log: log}
}

// Create validates and persists a job posting. employerID may be nil.
func (s *Service) Create(ctx context.Context, in CreateInput, employerID *int64) (job.Job, error) {
	j := job.Job{
		Title:        in.Title,
		Company:      in.Company,
		Location:     in.Location,
		JobType:      in.JobType,
		Description:  in.Description,
		SalaryRange:  optional(in.SalaryRange),
		Requirements: optional(in.Requirements),
		Benefits:     optional(in.Benefits),
		Remote:       in.Remote,
		EmployerID:   employerID,
	}

	var missing []string
	if blank(j.Title) {
		missing = append(missing, "title")
	}
	if blank(j.Company) {
		missing = append(missing, "company")
	}
	if blank(j.Location) {
		missing = append(missing, "location")
	}
	if blank(j.JobType) {
		missing = append(missing, "job_type")
	}
	if blank(j.Description) {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return job.Job{}, apperrors.MissingFields(missing...)
	}

	created, err := s.store.CreateJob(ctx, j)
	if err != nil {
		return job.Job{}, apperrors.Internal("failed to create job", err)
	}
	metrics.RecordListingCreated("job")
	s.log.WithField("job_id", created.ID).
		WithField("company", created.Company).
		Info("job posted")
	return created, nil
}

// List returns postings matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter storage.JobFilter) ([]job.Job, error) {
	list, err := s.store.ListJobs(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to list jobs", err)
	}
	return list, nil
}

// Truthy interprets a query flag such as remote=1. Empty, 0, false, off and no
// are false; any other value is true.
func Truthy(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "0", "false", "off", "no":
		return false
	default:
		return true
	}
}

func blank(v string) bool {
	return strings.TrimSpace(v) == ""
}

// optional keeps v as sent unless it is blank.
func optional(v string) *string {
	if blank(v) {
		return nil
	}
	return &v
}
