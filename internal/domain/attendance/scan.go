package attendance

import "time"

// ScanState is the lifecycle of one (employee, date) record.
type ScanState int

const (
	StateNoRecord ScanState = iota
	StateOpenCheckIn
	StateClosed
)

func (s ScanState) String() string {
	switch s {
	case StateOpenCheckIn:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "no_record"
	}
}

// StateOf reports the scan state of today's record. A record without any
// check-in (e.g. an admin-entered absence) still accepts a check-in.
func StateOf(existing *Attendance) ScanState {
	if existing == nil || existing.CheckIn() == nil {
		return StateNoRecord
	}
	if existing.CheckOut() == nil {
		return StateOpenCheckIn
	}
	return StateClosed
}

type ScanAction string

const (
	ScanCheckIn  ScanAction = "check_in"
	ScanCheckOut ScanAction = "check_out"
)

type Greeting string

const (
	GreetingMorning   Greeting = "morning"
	GreetingAfternoon Greeting = "afternoon"
)

// GreetingAt splits the day at 12:00.
func GreetingAt(now time.Time) Greeting {
	if now.Hour() < 12 {
		return GreetingMorning
	}
	return GreetingAfternoon
}

// ScanDecision is what a scan does to today's record. Record holds the
// resulting state, ready to be written.
type ScanDecision struct {
	Action   ScanAction
	Greeting Greeting
	From     ScanState
	Record   Attendance
}

// ResolveScan decides the effect of a scan at now for employeeID. now must
// already be in the business time zone.
func ResolveScan(employeeID string, existing *Attendance, now time.Time, w TimeWindow) (ScanDecision, error) {
	state := StateOf(existing)
	clock := TimeOfDayOf(now)
	decision := ScanDecision{Greeting: GreetingAt(now), From: state}

	switch state {
	case StateNoRecord:
		var rec Attendance
		if existing != nil {
			rec = *existing
		} else {
			rec = Attendance{EmployeeID: employeeID, Date: DateOnly(now)}
		}
		if clock.Hour < 12 {
			rec.CheckInMorning = &clock
		} else {
			rec.CheckInAfternoon = &clock
		}
		c := Compute(&clock, nil, w)
		rec.Status = c.Status
		rec.HoursWorked = 0
		rec.OvertimeHours = 0
		decision.Action = ScanCheckIn
		decision.Record = rec

	case StateOpenCheckIn:
		rec := *existing
		if clock.Hour < 12 {
			rec.CheckOutMorning = &clock
		} else {
			rec.CheckOutAfternoon = &clock
		}
		c := Compute(rec.CheckIn(), &clock, w)
		rec.HoursWorked = c.HoursWorked
		rec.OvertimeHours = c.OvertimeHours
		decision.Action = ScanCheckOut
		decision.Record = rec

	default:
		return ScanDecision{}, ErrAlreadyClosed
	}

	return decision, nil
}
