package settings

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type UpdateSettingsRequest struct {
	WorkStart            string          `json:"work_start"` // HH:MM
	LateThresholdMinutes int             `json:"late_threshold_minutes"`
	AbsentThresholdHour  float64         `json:"absent_threshold_hour"`
	OvertimeStartHour    float64         `json:"overtime_start_hour"`
	OvertimeHourlyRate   decimal.Decimal `json:"overtime_hourly_rate"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	start, err := attendance.ParseTimeOfDay(r.WorkStart)
	if err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "work_start",
			Message: "work_start must be in HH:MM format",
		})
	}

	if r.LateThresholdMinutes < 0 || r.LateThresholdMinutes > 240 {
		errs = append(errs, validator.ValidationError{
			Field:   "late_threshold_minutes",
			Message: "late_threshold_minutes must be between 0 and 240",
		})
	}

	if r.AbsentThresholdHour <= 0 || r.AbsentThresholdHour > 24 {
		errs = append(errs, validator.ValidationError{
			Field:   "absent_threshold_hour",
			Message: "absent_threshold_hour must be between 0 and 24",
		})
	} else if err == nil && r.AbsentThresholdHour < start.Hours()+float64(r.LateThresholdMinutes)/60 {
		errs = append(errs, validator.ValidationError{
			Field:   "absent_threshold_hour",
			Message: "absent_threshold_hour must not be before the end of the late threshold",
		})
	}

	if r.OvertimeStartHour <= 0 || r.OvertimeStartHour > 24 {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_start_hour",
			Message: "overtime_start_hour must be between 0 and 24",
		})
	}

	if r.OvertimeHourlyRate.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   "overtime_hourly_rate",
			Message: "overtime_hourly_rate must not be negative",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Window builds the time window of a validated request.
func (r *UpdateSettingsRequest) Window() attendance.TimeWindow {
	start, _ := attendance.ParseTimeOfDay(r.WorkStart)
	return attendance.TimeWindow{
		StandardStart:        start,
		LateThresholdMinutes: r.LateThresholdMinutes,
		AbsentThresholdHour:  r.AbsentThresholdHour,
		OvertimeStartHour:    r.OvertimeStartHour,
	}
}

type SettingsResponse struct {
	WorkStart            string          `json:"work_start"`
	LateThresholdMinutes int             `json:"late_threshold_minutes"`
	LateCutoff           string          `json:"late_cutoff"`
	AbsentThresholdHour  float64         `json:"absent_threshold_hour"`
	OvertimeStartHour    float64         `json:"overtime_start_hour"`
	OvertimeHourlyRate   decimal.Decimal `json:"overtime_hourly_rate"`
	IsDefault            bool            `json:"is_default"`
	UpdatedAt            *string         `json:"updated_at,omitempty"`
}
