// Package seed populates an empty store with the demo catalog shown on first
// launch.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/user"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
	"github.com/innovatorsofhonour/innovators/pkg/logger"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

type document struct {
	Owner struct {
		Email string `yaml:"email"`
		Name  string `yaml:"name"`
		Role  string `yaml:"role"`
	} `yaml:"owner"`
	Solutions []struct {
		Title         string `yaml:"title"`
		Description   string `yaml:"description"`
		Category      string `yaml:"category"`
		Stage         string `yaml:"stage"`
		FundingStatus string `yaml:"funding_status"`
		PriceETH      string `yaml:"price_eth"`
	} `yaml:"solutions"`
	Jobs []struct {
		Title       string `yaml:"title"`
		Company     string `yaml:"company"`
		Location    string `yaml:"location"`
		JobType     string `yaml:"job_type"`
		SalaryRange string `yaml:"salary_range"`
		Description string `yaml:"description"`
		Remote      bool   `yaml:"remote"`
		Featured    bool   `yaml:"featured"`
	} `yaml:"jobs"`
	Courses []struct {
		Title       string `yaml:"title"`
		Category    string `yaml:"category"`
		Instructor  string `yaml:"instructor"`
		Description string `yaml:"description"`
		Duration    string `yaml:"duration"`
		Level       string `yaml:"level"`
		Price       string `yaml:"price"`
		Rating      string `yaml:"rating"`
		Students    int64  `yaml:"students"`
		Featured    bool   `yaml:"featured"`
	} `yaml:"courses"`
	Events []struct {
		Title       string `yaml:"title"`
		Type        string `yaml:"event_type"`
		Description string `yaml:"description"`
		DaysFromNow int    `yaml:"days_from_now"`
		Location    string `yaml:"location"`
		Capacity    int64  `yaml:"capacity"`
		Price       string `yaml:"price"`
		Speaker     string `yaml:"speaker"`
	} `yaml:"events"`
}

// Seeder writes the demo catalog through a SeedStore.
type Seeder struct {
	store         storage.SeedStore
	log           *logger.Logger
	now           func() time.Time
	adminPassword string
}

// New constructs a seeder for the given store.
func New(store storage.SeedStore, log *logger.Logger) *Seeder {
	if log == nil {
		log = logger.NewDefault("seed")
	}
	return &Seeder{
		store: store,
		log:   log,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithAdminPassword sets the plaintext password hashed onto the seeded admin.
func (s *Seeder) WithAdminPassword(password string) *Seeder {
	s.adminPassword = password
	return s
}

// WithClock overrides the reference time used for event dates.
func (s *Seeder) WithClock(now func() time.Time) *Seeder {
	s.now = now
	return s
}

// Run seeds the store when it holds no users and reports whether it wrote.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	fixtures, err := Load(fixturesYAML, s.now())
	if err != nil {
		return false, err
	}
	if s.adminPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(s.adminPassword), bcrypt.DefaultCost)
		if err != nil {
			return false, fmt.Errorf("hash admin password: %w", err)
		}
		fixtures.Owner.PasswordHash = string(hash)
	}

	wrote, err := s.store.SeedIfEmpty(ctx, fixtures)
	if err != nil {
		return false, fmt.Errorf("seed store: %w", err)
	}
	if !wrote {
		s.log.Debug("store already populated; skipping seed")
		return false, nil
	}
	s.log.WithField("solutions", len(fixtures.Solutions)).
		WithField("jobs", len(fixtures.Jobs)).
		WithField("courses", len(fixtures.Courses)).
		WithField("events", len(fixtures.Events)).
		Info("seeded demo data")
	return true, nil
}

// Load parses a fixtures document. Event dates are offsets from now.
func Load(data []byte, now time.Time) (storage.Fixtures, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return storage.Fixtures{}, fmt.Errorf("parse fixtures: %w", err)
	}
	if strings.TrimSpace(doc.Owner.Email) == "" {
		return storage.Fixtures{}, fmt.Errorf("fixtures: owner email is required")
	}

	out := storage.Fixtures{
		Owner: user.User{
			Email: doc.Owner.Email,
			Name:  doc.Owner.Name,
			Role:  user.Role(doc.Owner.Role),
		},
	}

	for _, s := range doc.Solutions {
		price, err := amount(s.PriceETH, solution.DefaultPriceETH)
		if err != nil {
			return storage.Fixtures{}, fmt.Errorf("solution %q: %w", s.Title, err)
		}
		out.Solutions = append(out.Solutions, solution.Solution{
			Title:         s.Title,
			Description:   s.Description,
			Category:      s.Category,
			Stage:         s.Stage,
			FundingStatus: s.FundingStatus,
			PriceETH:      price,
		})
	}

	for _, j := range doc.Jobs {
		out.Jobs = append(out.Jobs, job.Job{
			Title:       j.Title,
			Company:     j.Company,
			Location:    j.Location,
			JobType:     j.JobType,
			SalaryRange: optional(j.SalaryRange),
			Description: j.Description,
			Remote:      j.Remote,
			Featured:    j.Featured,
		})
	}

	for _, c := range doc.Courses {
		price, err := amount(c.Price, decimal.Zero)
		if err != nil {
			return storage.Fixtures{}, fmt.Errorf("course %q price: %w", c.Title, err)
		}
		rating, err := amount(c.Rating, decimal.Zero)
		if err != nil {
			return storage.Fixtures{}, fmt.Errorf("course %q rating: %w", c.Title, err)
		}
		out.Courses = append(out.Courses, course.Course{
			Title:       c.Title,
			Category:    c.Category,
			Instructor:  c.Instructor,
			Description: c.Description,
			Duration:    optional(c.Duration),
			Level:       optional(c.Level),
			Price:       price,
			Rating:      rating,
			Students:    c.Students,
			Featured:    c.Featured,
		})
	}

	for _, e := range doc.Events {
		price, err := amount(e.Price, decimal.Zero)
		if err != nil {
			return storage.Fixtures{}, fmt.Errorf("event %q: %w", e.Title, err)
		}
		out.Events = append(out.Events, event.Event{
			Title:       e.Title,
			Type:        event.Type(e.Type),
			Description: e.Description,
			Date:        now.AddDate(0, 0, e.DaysFromNow),
			Location:    optional(e.Location),
			Capacity:    e.Capacity,
			Price:       price,
			Speaker:     optional(e.Speaker),
		})
	}
	return out, nil
}

func amount(raw string, fallback decimal.Decimal) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	return decimal.NewFromString(raw)
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
