package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/pitch"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/user"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu            sync.RWMutex
	nextID        map[string]int64
	now           func() time.Time
	users         map[int64]user.User
	usersByEmail  map[string]int64
	solutions     map[int64]solution.Solution
	jobs          map[int64]job.Job
	courses       map[int64]course.Course
	events        map[int64]event.Event
	registrations map[int64][]event.Registration
	pitches       map[int64]pitch.Application
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SolutionStore = (*Store)(nil)
var _ storage.JobStore = (*Store)(nil)
var _ storage.CourseStore = (*Store)(nil)
var _ storage.EventStore = (*Store)(nil)
var _ storage.PitchStore = (*Store)(nil)
var _ storage.SeedStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:        make(map[string]int64),
		now:           func() time.Time { return time.Now().UTC() },
		users:         make(map[int64]user.User),
		usersByEmail:  make(map[string]int64),
		solutions:     make(map[int64]solution.Solution),
		jobs:          make(map[int64]job.Job),
		courses:       make(map[int64]course.Course),
		events:        make(map[int64]event.Event),
		registrations: make(map[int64][]event.Registration),
		pitches:       make(map[int64]pitch.Application),
	}
}

// WithClock overrides the creation timestamp source. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

func (s *Store) nextIDLocked(table string) int64 {
	s.nextID[table]++
	return s.nextID[table]
}

func (s *Store) stampLocked(createdAt time.Time) time.Time {
	if createdAt.IsZero() {
		return s.now()
	}
	return createdAt.UTC()
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// UserStore implementation ----------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createUserLocked(u)
}

func (s *Store) createUserLocked(u user.User) (user.User, error) {
	key := strings.ToLower(strings.TrimSpace(u.Email))
	if _, exists := s.usersByEmail[key]; exists {
		return user.User{}, fmt.Errorf("user with email %s already exists", u.Email)
	}
	if u.Role == "" {
		u.Role = user.RoleMember
	}
	u.ID = s.nextIDLocked("users")
	u.CreatedAt = s.stampLocked(u.CreatedAt)
	s.users[u.ID] = u
	s.usersByEmail[key] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id int64) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) CountUsers(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

// SolutionStore implementation ------------------------------------------------

func (s *Store) CreateSolution(_ context.Context, sol solution.Solution) (solution.Solution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createSolutionLocked(sol), nil
}

func (s *Store) createSolutionLocked(sol solution.Solution) solution.Solution {
	sol.ID = s.nextIDLocked("solutions")
	sol.CreatedAt = s.stampLocked(sol.CreatedAt)
	s.solutions[sol.ID] = sol
	return sol
}

func (s *Store) GetSolution(_ context.Context, id int64) (solution.Solution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sol, ok := s.solutions[id]
	if !ok {
		return solution.Solution{}, storage.ErrNotFound
	}
	return sol, nil
}

func (s *Store) ListSolutions(_ context.Context, filter storage.SolutionFilter) ([]solution.Solution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []solution.Solution
	for _, sol := range s.solutions {
		if !equalsFilter(filter.Category, sol.Category) ||
			!equalsFilter(filter.Stage, sol.Stage) ||
			!equalsFilter(filter.FundingStatus, sol.FundingStatus) ||
			!matchesText(filter.Query, sol.Title, sol.Description) {
			continue
		}
		result = append(result, sol)
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].CreatedAt, result[i].ID, result[j].CreatedAt, result[j].ID)
	})
	return limit(result, filter.Limit), nil
}

func (s *Store) CountSolutions(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.solutions)), nil
}

func (s *Store) IncrementSolutionViews(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sol, ok := s.solutions[id]
	if !ok {
		return 0, storage.ErrNotFound
	}
	sol.Views++
	s.solutions[id] = sol
	return sol.Views, nil
}

func (s *Store) IncrementSolutionPurchases(_ context.Context, id int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sol, ok := s.solutions[id]
	if !ok {
		return 0, storage.ErrNotFound
	}
	sol.Purchases++
	s.solutions[id] = sol
	return sol.Purchases, nil
}

// JobStore implementation -----------------------------------------------------

func (s *Store) CreateJob(_ context.Context, j job.Job) (job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createJobLocked(j), nil
}

func (s *Store) createJobLocked(j job.Job) job.Job {
	j.ID = s.nextIDLocked("jobs")
	j.CreatedAt = s.stampLocked(j.CreatedAt)
	s.jobs[j.ID] = j
	return j
}

func (s *Store) ListJobs(_ context.Context, filter storage.JobFilter) ([]job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []job.Job
	for _, j := range s.jobs {
		if !equalsFilter(filter.JobType, j.JobType) {
			continue
		}
		if filter.Location != "" && !strings.Contains(j.Location, filter.Location) {
			continue
		}
		if filter.RemoteOnly && !j.Remote {
			continue
		}
		if !matchesText(filter.Query, j.Title, j.Description) {
			continue
		}
		result = append(result, j)
	}
	sort.Slice(result, func(i, k int) bool {
		return newerFirst(result[i].CreatedAt, result[i].ID, result[k].CreatedAt, result[k].ID)
	})
	return limit(result, filter.Limit), nil
}

func (s *Store) CountJobs(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.jobs)), nil
}

// CourseStore implementation --------------------------------------------------

func (s *Store) CreateCourse(_ context.Context, c course.Course) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createCourseLocked(c), nil
}

func (s *Store) createCourseLocked(c course.Course) course.Course {
	c.ID = s.nextIDLocked("courses")
	c.CreatedAt = s.stampLocked(c.CreatedAt)
	s.courses[c.ID] = c
	return c
}

func (s *Store) ListCourses(_ context.Context, filter storage.CourseFilter) ([]course.Course, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []course.Course
	for _, c := range s.courses {
		if !equalsFilter(filter.Category, c.Category) || !matchesText(filter.Query, c.Title, c.Description) {
			continue
		}
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].CreatedAt, result[i].ID, result[j].CreatedAt, result[j].ID)
	})
	return limit(result, filter.Limit), nil
}

func (s *Store) CountCourses(context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.courses)), nil
}

// EventStore implementation ---------------------------------------------------

func (s *Store) CreateEvent(_ context.Context, e event.Event) (event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEventLocked(e), nil
}

func (s *Store) createEventLocked(e event.Event) event.Event {
	if e.Capacity == 0 {
		e.Capacity = event.DefaultCapacity
	}
	e.ID = s.nextIDLocked("events")
	e.CreatedAt = s.stampLocked(e.CreatedAt)
	s.events[e.ID] = e
	return e
}

func (s *Store) GetEvent(_ context.Context, id int64) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	if !ok {
		return event.Event{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) ListEvents(_ context.Context, filter storage.EventFilter) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []event.Event
	for _, e := range s.events {
		if len(filter.Types) > 0 && !containsType(filter.Types, e.Type) {
			continue
		}
		if filter.After != nil && !e.Date.After(*filter.After) {
			continue
		}
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return limit(result, filter.Limit), nil
}

func (s *Store) CountEventsAfter(_ context.Context, after time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.events {
		if e.Date.After(after) {
			n++
		}
	}
	return n, nil
}

func (s *Store) Register(_ context.Context, reg event.Registration) (event.Registration, event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	evt, ok := s.events[reg.EventID]
	if !ok {
		return event.Registration{}, event.Event{}, storage.ErrNotFound
	}
	if reg.UserID != nil {
		for _, existing := range s.registrations[reg.EventID] {
			if existing.UserID != nil && *existing.UserID == *reg.UserID {
				return event.Registration{}, event.Event{}, storage.ErrAlreadyRegistered
			}
		}
	}
	if evt.Full() {
		return event.Registration{}, event.Event{}, storage.ErrEventFull
	}

	if reg.Type == "" {
		reg.Type = event.DefaultRegistrationType
	}
	reg.ID = s.nextIDLocked("registrations")
	reg.CreatedAt = s.stampLocked(reg.CreatedAt)
	s.registrations[reg.EventID] = append(s.registrations[reg.EventID], reg)

	evt.Registered++
	s.events[evt.ID] = evt
	return reg, evt, nil
}

func (s *Store) ListRegistrations(_ context.Context, eventID int64) ([]event.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regs := s.registrations[eventID]
	out := make([]event.Registration, len(regs))
	copy(out, regs)
	return out, nil
}

// PitchStore implementation ---------------------------------------------------

func (s *Store) CreatePitchApplication(_ context.Context, app pitch.Application) (pitch.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if app.Status == "" {
		app.Status = pitch.StatusPending
	}
	app.ID = s.nextIDLocked("pitch_applications")
	app.CreatedAt = s.stampLocked(app.CreatedAt)
	s.pitches[app.ID] = app
	return app, nil
}

func (s *Store) ListPitchApplications(context.Context) ([]pitch.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]pitch.Application, 0, len(s.pitches))
	for _, app := range s.pitches {
		result = append(result, app)
	}
	sort.Slice(result, func(i, j int) bool {
		return newerFirst(result[i].CreatedAt, result[i].ID, result[j].CreatedAt, result[j].ID)
	})
	return result, nil
}

// SeedStore implementation ----------------------------------------------------

func (s *Store) SeedIfEmpty(_ context.Context, fixtures storage.Fixtures) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.users) > 0 {
		return false, nil
	}

	owner, err := s.createUserLocked(fixtures.Owner)
	if err != nil {
		return false, err
	}
	for _, sol := range fixtures.Solutions {
		sol.CreatorID = &owner.ID
		s.createSolutionLocked(sol)
	}
	for _, j := range fixtures.Jobs {
		j.EmployerID = &owner.ID
		s.createJobLocked(j)
	}
	for _, c := range fixtures.Courses {
		s.createCourseLocked(c)
	}
	for _, e := range fixtures.Events {
		s.createEventLocked(e)
	}
	return true, nil
}

// helpers ---------------------------------------------------------------------

func equalsFilter(filter, value string) bool {
	return storage.MatchAll(filter) || filter == value
}

func matchesText(query string, fields ...string) bool {
	if query == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(f, query) {
			return true
		}
	}
	return false
}

func containsType(types []event.Type, t event.Type) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func newerFirst(aTime time.Time, aID int64, bTime time.Time, bID int64) bool {
	if !aTime.Equal(bTime) {
		return aTime.After(bTime)
	}
	return aID > bID
}

func limit[T any](items []T, n int) []T {
	if items == nil {
		return []T{}
	}
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}
