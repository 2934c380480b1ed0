package pitch

import "time"

// Status tracks review progress of an application.
type Status string

// StatusPending is assigned on submission. No further transitions exist yet.
const StatusPending Status = "pending"

// Application is a startup's request to pitch to investors. The document
// paths are opaque references supplied by an external upload step.
type Application struct {
	ID                       int64     `db:"id"`
	CompanyName              string    `db:"company_name"`
	FounderName              string    `db:"founder_name"`
	Email                    string    `db:"email"`
	Phone                    *string   `db:"phone"`
	CompanyStage             string    `db:"company_stage"`
	Industry                 string    `db:"industry"`
	FundingAmount            *string   `db:"funding_amount"`
	PitchDeckPath            *string   `db:"pitch_deck_path"`
	BusinessPlanPath         *string   `db:"business_plan_path"`
	FinancialProjectionsPath *string   `db:"financial_projections_path"`
	Status                   Status    `db:"status"`
	CreatedAt                time.Time `db:"created_at"`
}
