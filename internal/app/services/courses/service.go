package courses

import (
	"context"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	apperrors "github.com/innovatorsofhonour/innovators/internal/errors"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

// Service exposes the course catalog. Courses are only created by seeding.
type Service struct {
	store storage.CourseStore
	log   *logger.Logger
}

// New constructs a courses service.
func New(store storage.CourseStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("courses")
	}
	return &Service{store: store, log: log}
}

// List returns courses matching the filter, newest first.
func (s *Service) List(ctx context.Context, filter storage.CourseFilter) ([]course.Course, error) {
	list, err := s.store.ListCourses(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal("failed to list courses", err)
	}
	return list, nil
}
