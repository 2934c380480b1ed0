package app

import (
	"context"

	"github.com/innovatorsofhonour/innovators/internal/app/seed"
	"github.com/innovatorsofhonour/innovators/internal/app/services/courses"
	"github.com/innovatorsofhonour/innovators/internal/app/services/events"
	"github.com/innovatorsofhonour/innovators/internal/app/services/jobs"
	"github.com/innovatorsofhonour/innovators/internal/app/services/pitches"
	"github.com/innovatorsofhonour/innovators/internal/app/services/search"
	"github.com/innovatorsofhonour/innovators/internal/app/services/solutions"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	"github.com/innovatorsofhonour/innovators/internal/app/storage/memory"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// Stores encapsulates persistence dependencies. Nil stores default to the
// in-memory implementation.
type Stores struct {
	Users     storage.UserStore
	Solutions storage.SolutionStore
	Jobs      storage.JobStore
	Courses   storage.CourseStore
	Events    storage.EventStore
	Pitches   storage.PitchStore
	Seed      storage.SeedStore
	Pinger    storage.Pinger
}

// Application ties domain services together.
type Application struct {
	pinger storage.Pinger

	Users     storage.UserStore
	Solutions *solutions.Service
	Jobs      *jobs.Service
	Courses   *courses.Service
	Events    *events.Service
	Pitches   *pitches.Service
	Search    *search.Service
	Seeder    *seed.Seeder
}

// New builds a fully initialised application with the provided stores.
func New(stores Stores, log *logger.Logger) (*Application, error) {
	if log == nil {
		log = logger.NewDefault("app")
	}

	mem := memory.New()
	if stores.Users == nil {
		stores.Users = mem
	}
	if stores.Solutions == nil {
		stores.Solutions = mem
	}
	if stores.Jobs == nil {
		stores.Jobs = mem
	}
	if stores.Courses == nil {
		stores.Courses = mem
	}
	if stores.Events == nil {
		stores.Events = mem
	}
	if stores.Pitches == nil {
		stores.Pitches = mem
	}
	if stores.Seed == nil {
		stores.Seed = mem
	}
	if stores.Pinger == nil {
		stores.Pinger = mem
	}

	return &Application{
		pinger:    stores.Pinger,
		Users:     stores.Users,
		Solutions: solutions.New(stores.Solutions, log),
		Jobs:      jobs.New(stores.Jobs, log),
		Courses:   courses.New(stores.Courses, log),
		Events:    events.New(stores.Events, log),
		Pitches:   pitches.New(stores.Pitches, log),
		Search: search.New(search.Stores{
			Users:     stores.Users,
			Solutions: stores.Solutions,
			Jobs:      stores.Jobs,
			Courses:   stores.Courses,
			Events:    stores.Events,
		}, log),
		Seeder: seed.New(stores.Seed, log),
	}, nil
}

// Ping reports whether the backing store is reachable.
func (a *Application) Ping(ctx context.Context) error {
	return a.pinger.Ping(ctx)
}
