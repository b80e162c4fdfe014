package advance

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type AdvanceRepository interface {
	Create(ctx context.Context, advance Advance) (Advance, error)
	GetByID(ctx context.Context, id string) (Advance, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AdvanceFilter) ([]Advance, int64, error)

	// TotalsBetween sums advances per employee for from <= date <= to.
	TotalsBetween(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error)
}
