package advance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Advance is a salary advance paid out before payday and deducted from the
// monthly net pay.
type Advance struct {
	ID         string
	EmployeeID string
	Amount     decimal.Decimal
	Date       time.Time
	Reason     *string
	CreatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	// DTO / Join
	EmployeeName      *string
	EmployeeMatricule *string
}
