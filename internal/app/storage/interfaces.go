package storage

import (
	"context"
	"errors"
	"time"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/pitch"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/user"
)

var (
	// ErrNotFound is returned when a referenced row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyRegistered is returned when a user registers twice for an event.
	ErrAlreadyRegistered = errors.New("already registered for event")
	// ErrEventFull is returned when an event has no seats left.
	ErrEventFull = errors.New("event is at capacity")
)

// AllValues is the filter value that disables a filter. It is matched exactly.
const AllValues = "all"

// MatchAll reports whether a filter value means "no restriction".
func MatchAll(value string) bool {
	return value == "" || value == AllValues
}

// SolutionFilter narrows a solution listing. Results are ordered newest first.
type SolutionFilter struct {
	Category      string
	Stage         string
	FundingStatus string
	// Query matches title or description by substring.
	Query string
	Limit int
}

// JobFilter narrows a job listing. Results are ordered newest first.
type JobFilter struct {
	JobType    string
	Location   string
	RemoteOnly bool
	Query      string
	Limit      int
}

// CourseFilter narrows a course listing. Results are ordered newest first.
type CourseFilter struct {
	Category string
	Query    string
	Limit    int
}

// EventFilter narrows an event listing. Results are ordered by date, soonest first.
type EventFilter struct {
	Types []event.Type
	// After keeps only events dated strictly later than this instant.
	After *time.Time
	Limit int
}

// Fixtures is the demo data written by the seeding routine. Solutions and
// jobs are attributed to Owner once it has been inserted.
type Fixtures struct {
	Owner     user.User
	Solutions []solution.Solution
	Jobs      []job.Job
	Courses   []course.Course
	Events    []event.Event
}

// UserStore persists members.
type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUser(ctx context.Context, id int64) (user.User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// SolutionStore persists catalog listings.
type SolutionStore interface {
	CreateSolution(ctx context.Context, s solution.Solution) (solution.Solution, error)
	GetSolution(ctx context.Context, id int64) (solution.Solution, error)
	ListSolutions(ctx context.Context, filter SolutionFilter) ([]solution.Solution, error)
	CountSolutions(ctx context.Context) (int64, error)
	// IncrementSolutionViews atomically adds one view and returns the new total.
	IncrementSolutionViews(ctx context.Context, id int64) (int64, error)
	// IncrementSolutionPurchases atomically adds one purchase and returns the new total.
	IncrementSolutionPurchases(ctx context.Context, id int64) (int64, error)
}

// JobStore persists job listings.
type JobStore interface {
	CreateJob(ctx context.Context, j job.Job) (job.Job, error)
	ListJobs(ctx context.Context, filter JobFilter) ([]job.Job, error)
	CountJobs(ctx context.Context) (int64, error)
}

// CourseStore persists courses.
type CourseStore interface {
	CreateCourse(ctx context.Context, c course.Course) (course.Course, error)
	ListCourses(ctx context.Context, filter CourseFilter) ([]course.Course, error)
	CountCourses(ctx context.Context) (int64, error)
}

// EventStore persists events and their registrations.
type EventStore interface {
	CreateEvent(ctx context.Context, e event.Event) (event.Event, error)
	GetEvent(ctx context.Context, id int64) (event.Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]event.Event, error)
	CountEventsAfter(ctx context.Context, after time.Time) (int64, error)
	// Register inserts the registration and bumps the event's registered
	// counter as one unit. It returns ErrNotFound, ErrEventFull or
	// ErrAlreadyRegistered without writing anything.
	Register(ctx context.Context, reg event.Registration) (event.Registration, event.Event, error)
	ListRegistrations(ctx context.Context, eventID int64) ([]event.Registration, error)
}

// PitchStore persists pitch applications.
type PitchStore interface {
	CreatePitchApplication(ctx context.Context, app pitch.Application) (pitch.Application, error)
	ListPitchApplications(ctx context.Context) ([]pitch.Application, error)
}

// SeedStore writes demo data into an empty store.
type SeedStore interface {
	// SeedIfEmpty writes fixtures in one unit when no users exist. It reports
	// whether anything was written.
	SeedIfEmpty(ctx context.Context, fixtures Fixtures) (bool, error)
}

// Pinger reports store reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
