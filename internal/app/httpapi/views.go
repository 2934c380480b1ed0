package httpapi

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/innovatorsofhonour/innovators/internal/app/domain/course"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/event"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/job"
	"github.com/innovatorsofhonour/innovators/internal/app/domain/solution"
)

// number renders a decimal as a bare JSON number.
func number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

type solutionView struct {
	ID            int64       `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	Category      string      `json:"category"`
	Stage         string      `json:"stage"`
	FundingStatus string      `json:"funding_status"`
	PriceETH      json.Number `json:"price_eth"`
	Views         int64       `json:"views"`
	Purchases     int64       `json:"purchases"`
	CreatedAt     time.Time   `json:"created_at"`
}

func newSolutionView(s solution.Solution) solutionView {
	return solutionView{
		ID:            s.ID,
		Title:         s.Title,
		Description:   s.Description,
		Category:      s.Category,
		Stage:         s.Stage,
		FundingStatus: s.FundingStatus,
		PriceETH:      number(s.PriceETH),
		Views:         s.Views,
		Purchases:     s.Purchases,
		CreatedAt:     s.CreatedAt,
	}
}

type jobView struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Company      string    `json:"company"`
	Location     string    `json:"location"`
	JobType      string    `json:"job_type"`
	SalaryRange  *string   `json:"salary_range"`
	Description  string    `json:"description"`
	Remote       bool      `json:"remote"`
	Featured     bool      `json:"featured"`
	Applications int64     `json:"applications"`
	CreatedAt    time.Time `json:"created_at"`
}

func newJobView(j job.Job) jobView {
	return jobView{
		ID:           j.ID,
		Title:        j.Title,
		Company:      j.Company,
		Location:     j.Location,
		JobType:      j.JobType,
		SalaryRange:  j.SalaryRange,
		Description:  j.Description,
		Remote:       j.Remote,
		Featured:     j.Featured,
		Applications: j.Applications,
		CreatedAt:    j.CreatedAt,
	}
}

type courseView struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Category    string      `json:"category"`
	Instructor  string      `json:"instructor"`
	Description string      `json:"description"`
	Duration    *string     `json:"duration"`
	Level       *string     `json:"level"`
	Price       json.Number `json:"price"`
	Rating      json.Number `json:"rating"`
	Students    int64       `json:"students"`
	Featured    bool        `json:"featured"`
}

func newCourseView(c course.Course) courseView {
	return courseView{
		ID:          c.ID,
		Title:       c.Title,
		Category:    c.Category,
		Instructor:  c.Instructor,
		Description: c.Description,
		Duration:    c.Duration,
		Level:       c.Level,
		Price:       number(c.Price),
		Rating:      number(c.Rating),
		Students:    c.Students,
		Featured:    c.Featured,
	}
}

type eventView struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	Type        event.Type  `json:"event_type"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	Location    *string     `json:"location"`
	Capacity    int64       `json:"capacity"`
	Registered  int64       `json:"registered"`
	Price       json.Number `json:"price"`
	Speaker     *string     `json:"speaker"`
}

func newEventView(e event.Event) eventView {
	return eventView{
		ID:          e.ID,
		Title:       e.Title,
		Type:        e.Type,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		Registered:  e.Registered,
		Price:       number(e.Price),
		Speaker:     e.Speaker,
	}
}

type statsView struct {
	Members   int64 `json:"members"`
	Solutions int64 `json:"solutions"`
	Jobs      int64 `json:"jobs"`
	Courses   int64 `json:"courses"`
	Events    int64 `json:"events"`
}

type searchSolutionView struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type searchJobView struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Company  string `json:"company"`
	Location string `json:"location"`
}

type searchCourseView struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Instructor string `json:"instructor"`
	Category   string `json:"category"`
}
