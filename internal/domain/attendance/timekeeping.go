package attendance

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeOfDay is a wall-clock time without a date.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay accepts "HH:MM" or "HH:MM:SS". Seconds are dropped.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeFormat, s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return TimeOfDay{}, fmt.Errorf("%w: invalid hour in %q", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: invalid minute in %q", ErrInvalidTimeFormat, s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return TimeOfDay{}, fmt.Errorf("%w: invalid second in %q", ErrInvalidTimeFormat, s)
		}
	}

	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

// TimeOfDayOf returns the wall-clock part of t in t's location.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}
}

// Hours returns the time as a fractional hour, e.g. 08:30 -> 8.5.
func (t TimeOfDay) Hours() float64 {
	return float64(t.Hour) + float64(t.Minute)/60
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Status is the attendance classification of a check-in.
type Status string

const (
	StatusNone    Status = ""
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusLate, StatusAbsent:
		return true
	}
	return false
}

// TimeWindow holds the thresholds used to classify a working day.
type TimeWindow struct {
	StandardStart        TimeOfDay `json:"standard_start"`
	LateThresholdMinutes int       `json:"late_threshold_minutes"`
	AbsentThresholdHour  float64   `json:"absent_threshold_hour"`
	OvertimeStartHour    float64   `json:"overtime_start_hour"`
}

// DefaultTimeWindow is 08:00 start, 30 minutes grace, absent after 09:00,
// overtime from 18:00.
func DefaultTimeWindow() TimeWindow {
	return TimeWindow{
		StandardStart:        TimeOfDay{Hour: 8},
		LateThresholdMinutes: 30,
		AbsentThresholdHour:  9,
		OvertimeStartHour:    18,
	}
}

// LateCutoff is the last fractional hour still counted as on time.
func (w TimeWindow) LateCutoff() float64 {
	return w.StandardStart.Hours() + float64(w.LateThresholdMinutes)/60
}

func (w TimeWindow) Validate() error {
	if w.StandardStart.Hour < 0 || w.StandardStart.Hour > 23 || w.StandardStart.Minute < 0 || w.StandardStart.Minute > 59 {
		return ErrInvalidTimeWindow
	}
	if w.LateThresholdMinutes < 0 {
		return ErrInvalidTimeWindow
	}
	if w.AbsentThresholdHour < 0 || w.AbsentThresholdHour > 24 {
		return ErrInvalidTimeWindow
	}
	if w.OvertimeStartHour < 0 || w.OvertimeStartHour > 24 {
		return ErrInvalidTimeWindow
	}
	return nil
}

// Computation is the derived state of one attendance day.
type Computation struct {
	Status        Status  `json:"status"`
	HoursWorked   float64 `json:"hours_worked"`
	OvertimeHours float64 `json:"overtime_hours"`
}

// StatusAt classifies a check-in. Thresholds are strict: a check-in exactly
// on the late cutoff is still present, exactly on the absent hour still late.
func StatusAt(checkIn TimeOfDay, w TimeWindow) Status {
	h := checkIn.Hours()
	switch {
	case h > w.AbsentThresholdHour:
		return StatusAbsent
	case h > w.LateCutoff():
		return StatusLate
	default:
		return StatusPresent
	}
}

// Compute derives status, worked hours and overtime. A nil checkIn yields the
// zero Computation. Overtime is a subset of HoursWorked, not deducted from it.
func Compute(checkIn, checkOut *TimeOfDay, w TimeWindow) Computation {
	if checkIn == nil {
		return Computation{}
	}

	result := Computation{Status: StatusAt(*checkIn, w)}
	if checkOut == nil {
		return result
	}

	in := checkIn.Hours()
	out := checkOut.Hours()
	result.HoursWorked = roundHours(math.Max(0, out-in))
	if out > w.OvertimeStartHour {
		result.OvertimeHours = roundHours(out - w.OvertimeStartHour)
	}
	return result
}

// ComputeAttendance is Compute over "HH:MM" strings. An empty string means the
// time was not recorded; anything else that fails to parse is an error.
func ComputeAttendance(checkIn, checkOut string, w TimeWindow) (Computation, error) {
	in, err := parseOptional(checkIn)
	if err != nil {
		return Computation{}, err
	}
	out, err := parseOptional(checkOut)
	if err != nil {
		return Computation{}, err
	}
	return Compute(in, out, w), nil
}

func parseOptional(s string) (*TimeOfDay, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := ParseTimeOfDay(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func roundHours(h float64) float64 {
	return math.Round(h*100) / 100
}
