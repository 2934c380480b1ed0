package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/pitch"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/user"
	"github.com/innovatorsofhonour/innovators/internal/app/storage"
)

// seedLockKey serialises concurrent seeding attempts across processes.
const seedLockKey = 72_410_001

const uniqueViolation = "23505"

// Store implements the storage interfaces backed by PostgreSQL.
type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.SolutionStore = (*Store)(nil)
var _ storage.JobStore = (*Store)(nil)
var _ storage.CourseStore = (*Store)(nil)
var _ storage.EventStore = (*Store)(nil)
var _ storage.PitchStore = (*Store)(nil)
var _ storage.SeedStore = (*Store)(nil)
var _ storage.Pinger = (*Store)(nil)

// New creates a Store using the provided database handle.
func New(db *sqlx.DB) *Store {
	return &Store{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Ping checks database reachability.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) stamp(t time.Time) time.Time {
	if t.IsZero() {
		return s.now()
	}
	return t.UTC()
}

func (s *Store) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := s.db.GetContext(ctx, &n, s.db.Rebind(query), args...); err != nil {
		return 0, err
	}
	return n, nil
}

// --- UserStore --------------------------------------------------------------

const userColumns = `id, email, name, password_hash, role, created_at`

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	return s.createUser(ctx, s.db, u)
}

func (s *Store) createUser(ctx context.Context, q sqlx.ExtContext, u user.User) (user.User, error) {
	if u.Role == "" {
		u.Role = user.RoleMember
	}
	u.CreatedAt = s.stamp(u.CreatedAt)
	err := sqlx.GetContext(ctx, q, &u.ID, q.Rebind(`
		INSERT INTO users (email, name, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`), u.Email, u.Name, u.PasswordHash, u.Role, u.CreatedAt)
	if err != nil {
		return user.User{}, err
	}
	return u, nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (user.User, error) {
	var u user.User
	err := s.db.GetContext(ctx, &u, s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	if err != nil {
		return user.User{}, notFound(err)
	}
	return u, nil
}

func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM users`)
}

// --- SolutionStore ----------------------------------------------------------

const solutionColumns = `id, title, description, category, stage, funding_status, price_eth,
	creator_id, file_path, nft_token_id, views, purchases, created_at`

func (s *Store) CreateSolution(ctx context.Context, sol solution.Solution) (solution.Solution, error) {
	return s.createSolution(ctx, s.db, sol)
}

func (s *Store) createSolution(ctx context.Context, q sqlx.ExtContext, sol solution.Solution) (solution.Solution, error) {
	sol.CreatedAt = s.stamp(sol.CreatedAt)
	err := sqlx.GetContext(ctx, q, &sol.ID, q.Rebind(`
		INSERT INTO solutions (title, description, category, stage, funding_status, price_eth,
			creator_id, file_path, nft_token_id, views, purchases, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), sol.Title, sol.Description, sol.Category, sol.Stage, sol.FundingStatus, sol.PriceETH,
		sol.CreatorID, sol.FilePath, sol.NFTTokenID, sol.Views, sol.Purchases, sol.CreatedAt)
	if err != nil {
		return solution.Solution{}, err
	}
	return sol, nil
}

func (s *Store) GetSolution(ctx context.Context, id int64) (solution.Solution, error) {
	var sol solution.Solution
	err := s.db.GetContext(ctx, &sol, s.db.Rebind(`SELECT `+solutionColumns+` FROM solutions WHERE id = ?`), id)
	if err != nil {
		return solution.Solution{}, notFound(err)
	}
	return sol, nil
}

func (s *Store) ListSolutions(ctx context.Context, filter storage.SolutionFilter) ([]solution.Solution, error) {
	var w where
	w.equals("category", filter.Category)
	w.equals("stage", filter.Stage)
	w.equals("funding_status", filter.FundingStatus)
	w.contains(filter.Query, "title", "description")

	query := `SELECT ` + solutionColumns + ` FROM solutions` + w.sql() +
		` ORDER BY created_at DESC, id DESC` + limitClause(filter.Limit)

	result := []solution.Solution{}
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), w.args...); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CountSolutions(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM solutions`)
}

func (s *Store) IncrementSolutionViews(ctx context.Context, id int64) (int64, error) {
	return s.increment(ctx, "views", id)
}

func (s *Store) IncrementSolutionPurchases(ctx context.Context, id int64) (int64, error) {
	return s.increment(ctx, "purchases", id)
}

// increment performs the read-modify-write in one statement so concurrent
// callers never lose an update.
func (s *Store) increment(ctx context.Context, column string, id int64) (int64, error) {
	var total int64
	query := fmt.Sprintf(`UPDATE solutions SET %[1]s = %[1]s + 1 WHERE id = ? RETURNING %[1]s`, column)
	if err := s.db.GetContext(ctx, &total, s.db.Rebind(query), id); err != nil {
		return 0, notFound(err)
	}
	return total, nil
}

// --- JobStore ---------------------------------------------------------------

const jobColumns = `id, title, company, location, job_type, salary_range, description, requirements,
	benefits, remote, featured, employer_id, applications, created_at`

func (s *Store) CreateJob(ctx context.Context, j job.Job) (job.Job, error) {
	return s.createJob(ctx, s.db, j)
}

func (s *Store) createJob(ctx context.Context, q sqlx.ExtContext, j job.Job) (job.Job, error) {
	j.CreatedAt = s.stamp(j.CreatedAt)
	err := sqlx.GetContext(ctx, q, &j.ID, q.Rebind(`
		INSERT INTO jobs (title, company, location, job_type, salary_range, description, requirements,
			benefits, remote, featured, employer_id, applications, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), j.Title, j.Company, j.Location, j.JobType, j.SalaryRange, j.Description, j.Requirements,
		j.Benefits, j.Remote, j.Featured, j.EmployerID, j.Applications, j.CreatedAt)
	if err != nil {
		return job.Job{}, err
	}
	return j, nil
}

func (s *Store) ListJobs(ctx context.Context, filter storage.JobFilter) ([]job.Job, error) {
	var w where
	w.equals("job_type", filter.JobType)
	if filter.Location != "" {
		w.add("strpos(location, ?) > 0", filter.Location)
	}
	if filter.RemoteOnly {
		w.add("remote = ?", true)
	}
	w.contains(filter.Query, "title", "description")

	query := `SELECT ` + jobColumns + ` FROM jobs` + w.sql() +
		` ORDER BY created_at DESC, id DESC` + limitClause(filter.Limit)

	result := []job.Job{}
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), w.args...); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CountJobs(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM jobs`)
}

// --- CourseStore ------------------------------------------------------------

const courseColumns = `id, title, category, instructor, description, duration, level, price, rating,
	students, featured, created_at`

func (s *Store) CreateCourse(ctx context.Context, c course.Course) (course.Course, error) {
	return s.createCourse(ctx, s.db, c)
}

func (s *Store) createCourse(ctx context.Context, q sqlx.ExtContext, c course.Course) (course.Course, error) {
	c.CreatedAt = s.stamp(c.CreatedAt)
	err := sqlx.GetContext(ctx, q, &c.ID, q.Rebind(`
		INSERT INTO courses (title, category, instructor, description, duration, level, price, rating,
			students, featured, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), c.Title, c.Category, c.Instructor, c.Description, c.Duration, c.Level, c.Price, c.Rating,
		c.Students, c.Featured, c.CreatedAt)
	if err != nil {
		return course.Course{}, err
	}
	return c, nil
}

func (s *Store) ListCourses(ctx context.Context, filter storage.CourseFilter) ([]course.Course, error) {
	var w where
	w.equals("category", filter.Category)
	w.contains(filter.Query, "title", "description")

	query := `SELECT ` + courseColumns + ` FROM courses` + w.sql() +
		` ORDER BY created_at DESC, id DESC` + limitClause(filter.Limit)

	result := []course.Course{}
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), w.args...); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CountCourses(ctx context.Context) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM courses`)
}

// --- EventStore -------------------------------------------------------------

const eventColumns = `id, title, event_type, description, "date", location, capacity, registered,
	price, speaker, agenda, created_at`

func (s *Store) CreateEvent(ctx context.Context, e event.Event) (event.Event, error) {
	return s.createEvent(ctx, s.db, e)
}

func (s *Store) createEvent(ctx context.Context, q sqlx.ExtContext, e event.Event) (event.Event, error) {
	if e.Capacity == 0 {
		e.Capacity = event.DefaultCapacity
	}
	e.CreatedAt = s.stamp(e.CreatedAt)
	err := sqlx.GetContext(ctx, q, &e.ID, q.Rebind(`
		INSERT INTO events (title, event_type, description, "date", location, capacity, registered,
			price, speaker, agenda, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), e.Title, e.Type, e.Description, e.Date.UTC(), e.Location, e.Capacity, e.Registered,
		e.Price, e.Speaker, e.Agenda, e.CreatedAt)
	if err != nil {
		return event.Event{}, err
	}
	return e, nil
}

func (s *Store) GetEvent(ctx context.Context, id int64) (event.Event, error) {
	var e event.Event
	err := s.db.GetContext(ctx, &e, s.db.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ?`), id)
	if err != nil {
		return event.Event{}, notFound(err)
	}
	return e, nil
}

func (s *Store) ListEvents(ctx context.Context, filter storage.EventFilter) ([]event.Event, error) {
	var w where
	if len(filter.Types) > 0 {
		types := make([]string, len(filter.Types))
		for i, t := range filter.Types {
			types[i] = string(t)
		}
		w.add("event_type = ANY(?)", pq.Array(types))
	}
	if filter.After != nil {
		w.add(`"date" > ?`, filter.After.UTC())
	}

	query := `SELECT ` + eventColumns + ` FROM events` + w.sql() +
		` ORDER BY "date" ASC, id ASC` + limitClause(filter.Limit)

	result := []event.Event{}
	if err := s.db.SelectContext(ctx, &result, s.db.Rebind(query), w.args...); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) CountEventsAfter(ctx context.Context, after time.Time) (int64, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM events WHERE "date" > ?`, after.UTC())
}

// Register locks the event row, checks capacity, inserts the registration and
// bumps the counter inside one transaction.
func (s *Store) Register(ctx context.Context, reg event.Registration) (event.Registration, event.Event, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return event.Registration{}, event.Event{}, err
	}
	defer tx.Rollback() //nolint:errcheck

	var evt event.Event
	err = tx.GetContext(ctx, &evt, tx.Rebind(`SELECT `+eventColumns+` FROM events WHERE id = ? FOR UPDATE`), reg.EventID)
	if err != nil {
		return event.Registration{}, event.Event{}, notFound(err)
	}
	if evt.Full() {
		return event.Registration{}, event.Event{}, storage.ErrEventFull
	}

	if reg.Type == "" {
		reg.Type = event.DefaultRegistrationType
	}
	reg.CreatedAt = s.stamp(reg.CreatedAt)
	err = tx.GetContext(ctx, &reg.ID, tx.Rebind(`
		INSERT INTO registrations (event_id, user_id, registration_type, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`), reg.EventID, reg.UserID, reg.Type, reg.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return event.Registration{}, event.Event{}, storage.ErrAlreadyRegistered
		}
		return event.Registration{}, event.Event{}, err
	}

	err = tx.GetContext(ctx, &evt.Registered, tx.Rebind(`
		UPDATE events SET registered = registered + 1 WHERE id = ? RETURNING registered
	`), reg.EventID)
	if err != nil {
		return event.Registration{}, event.Event{}, err
	}

	if err := tx.Commit(); err != nil {
		return event.Registration{}, event.Event{}, err
	}
	return reg, evt, nil
}

func (s *Store) ListRegistrations(ctx context.Context, eventID int64) ([]event.Registration, error) {
	result := []event.Registration{}
	err := s.db.SelectContext(ctx, &result, s.db.Rebind(`
		SELECT id, event_id, user_id, registration_type, created_at
		FROM registrations
		WHERE event_id = ?
		ORDER BY id
	`), eventID)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- PitchStore -------------------------------------------------------------

const pitchColumns = `id, company_name, founder_name, email, phone, company_stage, industry, funding_amount,
	pitch_deck_path, business_plan_path, financial_projections_path, status, created_at`

func (s *Store) CreatePitchApplication(ctx context.Context, app pitch.Application) (pitch.Application, error) {
	if app.Status == "" {
		app.Status = pitch.StatusPending
	}
	app.CreatedAt = s.stamp(app.CreatedAt)
	err := s.db.GetContext(ctx, &app.ID, s.db.Rebind(`
		INSERT INTO pitch_applications (company_name, founder_name, email, phone, company_stage, industry,
			funding_amount, pitch_deck_path, business_plan_path, financial_projections_path, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), app.CompanyName, app.FounderName, app.Email, app.Phone, app.CompanyStage, app.Industry,
		app.FundingAmount, app.PitchDeckPath, app.BusinessPlanPath, app.FinancialProjectionsPath, app.Status, app.CreatedAt)
	if err != nil {
		return pitch.Application{}, err
	}
	return app, nil
}

func (s *Store) ListPitchApplications(ctx context.Context) ([]pitch.Application, error) {
	result := []pitch.Application{}
	err := s.db.SelectContext(ctx, &result, `SELECT `+pitchColumns+` FROM pitch_applications ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// --- SeedStore --------------------------------------------------------------

func (s *Store) SeedIfEmpty(ctx context.Context, fixtures storage.Fixtures) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, tx.Rebind(`SELECT pg_advisory_xact_lock(?)`), seedLockKey); err != nil {
		return false, fmt.Errorf("acquire seed lock: %w", err)
	}

	var users int64
	if err := tx.GetContext(ctx, &users, `SELECT COUNT(*) FROM users`); err != nil {
		return false, err
	}
	if users > 0 {
		return false, nil
	}

	owner, err := s.createUser(ctx, tx, fixtures.Owner)
	if err != nil {
		return false, fmt.Errorf("seed user: %w", err)
	}
	for _, sol := range fixtures.Solutions {
		sol.CreatorID = &owner.ID
		if _, err := s.createSolution(ctx, tx, sol); err != nil {
			return false, fmt.Errorf("seed solution %q: %w", sol.Title, err)
		}
	}
	for _, j := range fixtures.Jobs {
		j.EmployerID = &owner.ID
		if _, err := s.createJob(ctx, tx, j); err != nil {
			return false, fmt.Errorf("seed job %q: %w", j.Title, err)
		}
	}
	for _, c := range fixtures.Courses {
		if _, err := s.createCourse(ctx, tx, c); err != nil {
			return false, fmt.Errorf("seed course %q: %w", c.Title, err)
		}
	}
	for _, e := range fixtures.Events {
		if _, err := s.createEvent(ctx, tx, e); err != nil {
			return false, fmt.Errorf("seed event %q: %w", e.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// --- helpers ----------------------------------------------------------------

// where accumulates AND-ed conditions written with ? placeholders.
type where struct {
	conds []string
	args  []any
}

func (w *where) add(cond string, args ...any) {
	w.conds = append(w.conds, cond)
	w.args = append(w.args, args...)
}

func (w *where) equals(column, value string) {
	if storage.MatchAll(value) {
		return
	}
	w.add(column+" = ?", value)
}

func (w *where) contains(query string, columns ...string) {
	if query == "" {
		return
	}
	parts := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, col := range columns {
		parts[i] = "strpos(" + col + ", ?) > 0"
		args[i] = query
	}
	w.add("("+strings.Join(parts, " OR ")+")", args...)
}

func (w *where) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func limitClause(n int) string {
	if n <= 0 {
		return ""
	}
	return fmt.Sprintf(" LIMIT %d", n)
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}
