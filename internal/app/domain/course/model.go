package course

import (
	"time"

	"github.com/shopspring/decimal"
)

// Course is a learning track offered on the platform.
type Course struct {
	ID          int64           `db:"id"`
	Title       string          `db:"title"`
	Category    string          `db:"category"`
	Instructor  string          `db:"instructor"`
	Description string          `db:"description"`
	Duration    *string         `db:"duration"`
	Level       *string         `db:"level"`
	Price       decimal.Decimal `db:"price"`
	Rating      decimal.Decimal `db:"rating"`
	Students    int64           `db:"students"`
	Featured    bool            `db:"featured"`
	CreatedAt   time.Time       `db:"created_at"`
}
