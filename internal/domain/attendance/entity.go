package attendance

import (
	"time"
)

// Attendance is one employee's record for one calendar day. A day has a
// morning and an afternoon slot; the calculator works on the effective
// check-in and check-out across both.
type Attendance struct {
	ID                string
	EmployeeID        string
	Date              time.Time
	CheckInMorning    *TimeOfDay
	CheckOutMorning   *TimeOfDay
	CheckInAfternoon  *TimeOfDay
	CheckOutAfternoon *TimeOfDay
	Status            Status
	HoursWorked       float64
	OvertimeHours     float64
	Notes             *string
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// DTO / Join
	EmployeeName       *string
	EmployeeMatricule  *string
	EmployeeDepartment *string
}

// CheckIn returns the first recorded check-in of the day.
func (a *Attendance) CheckIn() *TimeOfDay {
	if a.CheckInMorning != nil {
		return a.CheckInMorning
	}
	return a.CheckInAfternoon
}

// CheckOut returns the last recorded check-out of the day.
func (a *Attendance) CheckOut() *TimeOfDay {
	if a.CheckOutAfternoon != nil {
		return a.CheckOutAfternoon
	}
	return a.CheckOutMorning
}

// Recompute refreshes the derived fields from the stored times.
func (a *Attendance) Recompute(w TimeWindow) {
	c := Compute(a.CheckIn(), a.CheckOut(), w)
	a.HoursWorked = c.HoursWorked
	a.OvertimeHours = c.OvertimeHours
	if c.Status != StatusNone {
		a.Status = c.Status
	} else if a.Status == StatusNone {
		a.Status = StatusAbsent
	}
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
