// Package search answers the site-wide search box and the headline counters.
package search

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// Scope selects which catalogs a search covers.
type Scope string

const (
	ScopeAll       Scope = "all"
	ScopeSolutions Scope = "solutions"
	ScopeJobs      Scope = "jobs"
	ScopeCourses   Scope = "courses"
)

const (
	resultLimit       = 10
	descriptionLength = 100
	ellipsis          = "..."
)

// Stats are live counts shown on the home page.
type Stats struct {
	Members   int64
	Solutions int64
	Jobs      int64
	Courses   int64
	Events    int64
}

// Results holds one slice per searched catalog. A nil slice means the
// catalog was not searched.
type Results struct {
	Solutions []solution.Solution
	Jobs      []job.Job
	Courses   []course.Course
}

// Stores groups the catalogs the service reads.
type Stores struct {
	Users     storage.UserStore
	Solutions storage.SolutionStore
	Jobs      storage.JobStore
	Courses   storage.CourseStore
	Events    storage.EventStore
}

// Service runs read-only queries across catalogs.
type Service struct {
	stores Stores
	log    *logger.Logger
	now    func() time.Time
}

// New constructs a search service.
func New(stores Stores, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("search")
	}
	return &Service{
		stores: stores,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the reference time for counting future events.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Stats counts members, listings and future events. Each count is read
// independently.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var (
		out Stats
		err error
	)
	if out.Members, err = s.stores.Users.CountUsers(ctx); err != nil {
		return Stats{}, apperrors.Internal("failed to count members", err)
	}
	if out.Solutions, err = s.stores.Solutions.CountSolutions(ctx); err != nil {
		return Stats{}, apperrors.Internal("failed to count solutions", err)
	}
	if out.Jobs, err = s.stores.Jobs.CountJobs(ctx); err != nil {
		return Stats{}, apperrors.Internal("failed to count jobs", err)
	}
	if out.Courses, err = s.stores.Courses.CountCourses(ctx); err != nil {
		return Stats{}, apperrors.Internal("failed to count courses", err)
	}
	if out.Events, err = s.stores.Events.CountEventsAfter(ctx, s.now()); err != nil {
		return Stats{}, apperrors.Internal("failed to count events", err)
	}
	return out, nil
}

// Search matches query against titles and descriptions in the selected
// scope. An empty scope searches everything; an unknown scope searches
// nothing.
func (s *Service) Search(ctx context.Context, query string, scope Scope) (Results, error) {
	scope = Scope(strings.ToLower(strings.TrimSpace(string(scope))))
	if scope == "" {
		scope = ScopeAll
	}

	var (
		out Results
		err error
	)
	if scope == ScopeAll || scope == ScopeSolutions {
		out.Solutions, err = s.stores.Solutions.ListSolutions(ctx, storage.SolutionFilter{Query: query, Limit: resultLimit})
		if err != nil {
			return Results{}, apperrors.Internal("failed to search solutions", err)
		}
		for i := range out.Solutions {
			out.Solutions[i].Description = Truncate(out.Solutions[i].Description, descriptionLength)
		}
	}
	if scope == ScopeAll || scope == ScopeJobs {
		out.Jobs, err = s.stores.Jobs.ListJobs(ctx, storage.JobFilter{Query: query, Limit: resultLimit})
		if err != nil {
			return Results{}, apperrors.Internal("failed to search jobs", err)
		}
	}
	if scope == ScopeAll || scope == ScopeCourses {
		out.Courses, err = s.stores.Courses.ListCourses(ctx, storage.CourseFilter{Query: query, Limit: resultLimit})
		if err != nil {
			return Results{}, apperrors.Internal("failed to search courses", err)
		}
	}

	s.log.WithField("scope", scope).
		WithField("solutions", len(out.Solutions)).
		WithField("jobs", len(out.Jobs)).
		WithField("courses", len(out.Courses)).
		Debug("search served")
	return out, nil
}

// Truncate shortens text to at most n runes followed by an ellipsis. Text
// already within n runes is returned unchanged.
func Truncate(text string, n int) string {
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	runes := []rune(text)
	return string(runes[:n]) + ellipsis
}
