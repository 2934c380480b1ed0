package solution

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultPriceETH applies when a listing is created without a price.
var DefaultPriceETH = decimal.RequireFromString("0.1")

// Solution is a listed startup or product, the primary catalog item.
type Solution struct {
	ID            int64           `db:"id"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	Category      string          `db:"category"`
	Stage         string          `db:"stage"`
	FundingStatus string          `db:"funding_status"`
	PriceETH      decimal.Decimal `db:"price_eth"`
	CreatorID     *int64          `db:"creator_id"`
	FilePath      *string         `db:"file_path"`
	NFTTokenID    *string         `db:"nft_token_id"`
	Views         int64           `db:"views"`
	Purchases     int64           `db:"purchases"`
	CreatedAt     time.Time       `db:"created_at"`
}

// Minted reports whether an NFT token has been recorded for the listing.
func (s Solution) Minted() bool {
	return s.NFTTokenID != nil && *s.NFTTokenID != ""
}
