package advance

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreateAdvanceRequest struct {
	EmployeeID string          `json:"employee_id"`
	Amount     decimal.Decimal `json:"amount"`
	Date       string          `json:"date"` // YYYY-MM-DD
	Reason     *string         `json:"reason,omitempty"`
}

func (r *CreateAdvanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "amount",
			Message: ErrAmountNotPositive.Error(),
		})
	}

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date is required",
		})
	} else if _, valid := validator.IsValidDate(r.Date); !valid {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		})
	}

	if r.Reason != nil && len(*r.Reason) > 255 {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason must not exceed 255 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AdvanceResponse struct {
	ID                string          `json:"id"`
	EmployeeID        string          `json:"employee_id"`
	EmployeeName      string          `json:"employee_name,omitempty"`
	EmployeeMatricule string          `json:"employee_matricule,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Date              string          `json:"date"`
	Reason            *string         `json:"reason,omitempty"`
	CreatedBy         *string         `json:"created_by,omitempty"`
	CreatedAt         string          `json:"created_at"`
}

type ListAdvanceResponse struct {
	TotalCount  int64             `json:"total_count"`
	TotalAmount decimal.Decimal   `json:"total_amount"`
	Page        int               `json:"page"`
	Limit       int               `json:"limit"`
	TotalPages  int               `json:"total_pages"`
	Showing     string            `json:"showing"`
	Advances    []AdvanceResponse `json:"advances"`
}

type AdvanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Month      int     `json:"month,omitempty"`
	Year       int     `json:"year,omitempty"`

	Page  int `json:"page"`
	Limit int `json:"limit"`
}

func (f *AdvanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be a positive number",
		})
	}
	if f.Page == 0 {
		f.Page = 1
	}

	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must be a positive number",
		})
	}
	if f.Limit == 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "limit",
			Message: "limit must not exceed 100",
		})
	}

	if (f.Month != 0 || f.Year != 0) && !validator.IsValidMonth(f.Month, f.Year) {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: "month and year must be given together (month 1-12)",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
