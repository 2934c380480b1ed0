package job

import "time"

// Job is an open position advertised on the hiring board.
type Job struct {
	ID           int64     `db:"id"`
	Title        string    `db:"title"`
	Company      string    `db:"company"`
	Location     string    `db:"location"`
	JobType      string    `db:"job_type"`
	SalaryRange  *string   `db:"salary_range"`
	Description  string    `db:"description"`
	Requirements *string   `db:"requirements"`
	Benefits     *string   `db:"benefits"`
	Remote       bool      `db:"remote"`
	Featured     bool      `db:"featured"`
	EmployerID   *int64    `db:"employer_id"`
	Applications int64     `db:"applications"`
	CreatedAt    time.Time `db:"created_at"`
}
