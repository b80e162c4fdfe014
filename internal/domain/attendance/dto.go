package attendance

import (
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// SCAN
// ========================================

type ScanRequest struct {
	Code string `json:"code"`
}

func (r *ScanRequest) Validate() error {
	var errs validator.ValidationErrors

	r.Code = strings.TrimSpace(r.Code)
	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code is required",
		})
	} else if len(r.Code) > 64 {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "code must not exceed 64 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ScanResponse struct {
	Action       ScanAction         `json:"action"`
	Greeting     Greeting           `json:"greeting"`
	EmployeeID   string             `json:"employee_id"`
	EmployeeName string             `json:"employee_name"`
	Matricule    string             `json:"matricule"`
	Time         string             `json:"time"` // HH:MM
	Attendance   AttendanceResponse `json:"attendance"`
}

// ========================================
// CALCULATOR PREVIEW
// ========================================

type ComputeRequest struct {
	CheckIn  string `json:"check_in"`
	CheckOut string `json:"check_out"`
}

type ComputeResponse struct {
	Computation
	Window TimeWindow `json:"window"`
}

// ========================================
// ADMIN ENTRY / CORRECTION
// ========================================

type CreateAttendanceRequest struct {
	EmployeeID        string  `json:"employee_id"`
	Date              string  `json:"date"` // YYYY-MM-DD
	CheckInMorning    *string `json:"check_in_morning,omitempty"`
	CheckOutMorning   *string `json:"check_out_morning,omitempty"`
	CheckInAfternoon  *string `json:"check_in_afternoon,omitempty"`
	CheckOutAfternoon *string `json:"check_out_afternoon,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

func (r *CreateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
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

	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateAttendanceRequest replaces the time slots of a record. A nil slot is
// left untouched; an empty string clears it.
type UpdateAttendanceRequest struct {
	ID                string  `json:"-"`
	CheckInMorning    *string `json:"check_in_morning,omitempty"`
	CheckOutMorning   *string `json:"check_out_morning,omitempty"`
	CheckInAfternoon  *string `json:"check_in_afternoon,omitempty"`
	CheckOutAfternoon *string `json:"check_out_afternoon,omitempty"`
	Status            *string `json:"status,omitempty"`
	Notes             *string `json:"notes,omitempty"`
}

func (r *UpdateAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	// Only an absence without any check-in may have its status set by hand.
	if r.Status != nil && *r.Status != string(StatusAbsent) {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status can only be set to absent; other statuses are computed",
		})
	}

	if r.Notes != nil && len(*r.Notes) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "notes",
			Message: "notes must not exceed 500 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type AttendanceResponse struct {
	ID                 string  `json:"id"`
	EmployeeID         string  `json:"employee_id"`
	EmployeeName       string  `json:"employee_name,omitempty"`
	EmployeeMatricule  string  `json:"employee_matricule,omitempty"`
	EmployeeDepartment *string `json:"employee_department,omitempty"`
	Date               string  `json:"date"`
	CheckInMorning     *string `json:"check_in_morning"`
	CheckOutMorning    *string `json:"check_out_morning"`
	CheckInAfternoon   *string `json:"check_in_afternoon"`
	CheckOutAfternoon  *string `json:"check_out_afternoon"`
	Status             Status  `json:"status"`
	HoursWorked        float64 `json:"hours_worked"`
	OvertimeHours      float64 `json:"overtime_hours"`
	Notes              *string `json:"notes,omitempty"`
	State              string  `json:"state"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

type TodayResponse struct {
	Date       string              `json:"date"`
	State      string              `json:"state"`
	Attendance *AttendanceResponse `json:"attendance"`
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Showing     string               `json:"showing"`
	Attendances []AttendanceResponse `json:"attendances"`
}

// ========================================
// FILTER
// ========================================

type AttendanceFilter struct {
	// Search & Filter
	EmployeeID   *string `json:"employee_id,omitempty"`
	EmployeeName *string `json:"employee_name,omitempty"`
	Department   *string `json:"department,omitempty"`
	Date         *string `json:"date,omitempty"`       // YYYY-MM-DD
	StartDate    *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate      *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	Status       *string `json:"status,omitempty"`

	// Pagination
	Page  int `json:"page"`
	Limit int `json:"limit"`

	// Sorting
	SortBy    string `json:"sort_by"`    // date, employee_name, check_in, hours_worked, status
	SortOrder string `json:"sort_order"` // asc, desc
}

func (f *AttendanceFilter) Validate() error {
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

	if f.Status != nil {
		if !Status(*f.Status).Valid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of: present, late, absent",
			})
		}
	}

	for field, value := range map[string]*string{"date": f.Date, "start_date": f.StartDate, "end_date": f.EndDate} {
		if value != nil && *value != "" {
			if _, valid := validator.IsValidDate(*value); !valid {
				errs = append(errs, validator.ValidationError{
					Field:   field,
					Message: field + " must be in YYYY-MM-DD format",
				})
			}
		}
	}

	if f.SortBy != "" {
		validSortFields := []string{"date", "employee_name", "check_in", "hours_worked", "status"}
		if !validator.IsInSlice(f.SortBy, validSortFields) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_by",
				Message: "sort_by must be one of: date, employee_name, check_in, hours_worked, status",
			})
		}
	} else {
		f.SortBy = "date"
	}

	if f.SortOrder != "" {
		if !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
			errs = append(errs, validator.ValidationError{
				Field:   "sort_order",
				Message: "sort_order must be one of: asc, desc",
			})
		}
	} else {
		f.SortOrder = "desc"
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}
