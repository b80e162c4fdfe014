package report

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// ========== EXPORT ==========

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to csv.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ========== DAILY REPORT ==========

type DailyReportRequest struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	Department *string `json:"department,omitempty"`
}

func (r *DailyReportRequest) Validate() error {
	var errs validator.ValidationErrors

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

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type DailyReport struct {
	Date    string           `json:"date"`
	Window  string           `json:"window"` // e.g. "08:00 +30min"
	Summary DailySummary     `json:"summary"`
	Rows    []DailyReportRow `json:"rows"`
}

type DailySummary struct {
	TotalEmployees int     `json:"total_employees"`
	Present        int     `json:"present"`
	Late           int     `json:"late"`
	Absent         int     `json:"absent"`
	TotalHours     float64 `json:"total_hours"`
	TotalOvertime  float64 `json:"total_overtime"`
}

type DailyReportRow struct {
	EmployeeID        string            `json:"employee_id"`
	Matricule         string            `json:"matricule"`
	FullName          string            `json:"full_name"`
	Department        string            `json:"department"`
	CheckInMorning    *string           `json:"check_in_morning"`
	CheckOutMorning   *string           `json:"check_out_morning"`
	CheckInAfternoon  *string           `json:"check_in_afternoon"`
	CheckOutAfternoon *string           `json:"check_out_afternoon"`
	Status            attendance.Status `json:"status"`
	HoursWorked       float64           `json:"hours_worked"`
	OvertimeHours     float64           `json:"overtime_hours"`
	Recorded          bool              `json:"recorded"`
}

// ========== MONTHLY REPORT ==========

type MonthlyReportRequest struct {
	Month      int     `json:"month"`
	Year       int     `json:"year"`
	Department *string `json:"department,omitempty"`
}

func (r *MonthlyReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Month < 1 || r.Month > 12 {
		errs = append(errs, validator.ValidationError{
			Field:   "month",
			Message: ErrInvalidMonth.Error(),
		})
	}

	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: ErrInvalidYear.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type MonthlyReport struct {
	Month              int                `json:"month"`
	Year               int                `json:"year"`
	Period             string             `json:"period"` // YYYY-MM
	OvertimeHourlyRate decimal.Decimal    `json:"overtime_hourly_rate"`
	Summary            MonthlySummary     `json:"summary"`
	Rows               []MonthlyReportRow `json:"rows"`
}

type MonthlySummary struct {
	TotalEmployees   int             `json:"total_employees"`
	TotalHours       float64         `json:"total_hours"`
	TotalOvertime    float64         `json:"total_overtime"`
	TotalBaseSalary  decimal.Decimal `json:"total_base_salary"`
	TotalOvertimePay decimal.Decimal `json:"total_overtime_pay"`
	TotalAdvances    decimal.Decimal `json:"total_advances"`
	TotalNetPay      decimal.Decimal `json:"total_net_pay"`
}

type MonthlyReportRow struct {
	EmployeeID    string          `json:"employee_id"`
	Matricule     string          `json:"matricule"`
	FullName      string          `json:"full_name"`
	Department    string          `json:"department"`
	ContractType  string          `json:"contract_type"`
	DaysPresent   int             `json:"days_present"`
	DaysLate      int             `json:"days_late"`
	DaysAbsent    int             `json:"days_absent"`
	TotalHours    float64         `json:"total_hours"`
	OvertimeHours float64         `json:"overtime_hours"`
	BaseSalary    decimal.Decimal `json:"base_salary"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	Advances      decimal.Decimal `json:"advances"`
	NetPay        decimal.Decimal `json:"net_pay"`
}
