package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/metrics"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

const (
	programsLimit  = 5
	investorsLimit = 3
)

// Service manages events and registrations.
type Service struct {
	store storage.EventStore
	log   *logger.Logger
	now   func() time.Time
}

// New constructs an events service.
func New(store storage.EventStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("events")
	}
	return &Service{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the reference time for "upcoming" queries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Upcoming returns every future event, soonest first.
func (s *Service) Upcoming(ctx context.Context) ([]event.Event, error) {
	return s.upcoming(ctx, nil, 0)
}

// Programs returns the next webinars and workshops.
func (s *Service) Programs(ctx context.Context) ([]event.Event, error) {
	return s.upcoming(ctx, []event.Type{event.TypeWebinar, event.TypeWorkshop}, programsLimit)
}

// PitchEvents returns the next pitch nights shown to investors.
func (s *Service) PitchEvents(ctx context.Context) ([]event.Event, error) {
	return s.upcoming(ctx, []event.Type{event.TypePitch}, investorsLimit)
}

// NextFellowship returns the soonest fellowship gathering. ok is false when
// none is scheduled.
func (s *Service) NextFellowship(ctx context.Context) (evt event.Event, ok bool, err error) {
	list, err := s.upcoming(ctx, []event.Type{event.TypeFellowship}, 1)
	if err != nil || len(list) == 0 {
		return event.Event{}, false, err
	}
	return list[0], true, nil
}

func (s *Service) upcoming(ctx context.Context, types []event.Type, limit int) ([]event.Event, error) {
	now := s.now()
	list, err := s.store.ListEvents(ctx, storage.EventFilter{Types: types, After: &now, Limit: limit})
	if err != nil {
		return nil, apperrors.Internal("failed to list events", err)
	}
	return list, nil
}

// Register records a seat for userID (nil for anonymous callers) on the event.
// The registration row and the counter increment happen together or not at
// all.
func (s *Service) Register(ctx context.Context, eventID int64, regType string, userID *int64) (event.Registration, error) {
	if eventID <= 0 {
		return event.Registration{}, apperrors.MissingFields("event_id")
	}
	regType = strings.TrimSpace(regType)
	if regType == "" {
		regType = event.DefaultRegistrationType
	}

	reg, evt, err := s.store.Register(ctx, event.Registration{EventID: eventID, UserID: userID, Type: regType})
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		metrics.RecordRegistration("not_found")
		return event.Registration{}, apperrors.NotFound("event", eventID, err)
	case errors.Is(err, storage.ErrEventFull):
		metrics.RecordRegistration("full")
		return event.Registration{}, apperrors.Conflict("event is full", err)
	case errors.Is(err, storage.ErrAlreadyRegistered):
		metrics.RecordRegistration("duplicate")
		return event.Registration{}, apperrors.Conflict("already registered for this event", err)
	default:
		metrics.RecordRegistration("error")
		return event.Registration{}, apperrors.Internal("failed to register for event", err)
	}

	metrics.RecordRegistration("ok")
	s.log.WithField("event_id", eventID).
		WithField("registration_id", reg.ID).
		WithField("registered", evt.Registered).
		Info("event registration recorded")
	return reg, nil
}
