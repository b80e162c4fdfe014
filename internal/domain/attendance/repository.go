package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access methods for attendance records.
// (employee_id, date) is unique in storage.
type AttendanceRepository interface {
	// Create inserts a record, returning ErrAttendanceExists on a duplicate day.
	Create(ctx context.Context, attendance Attendance) (Attendance, error)

	// InsertIfAbsent inserts a record unless one already exists for the day.
	// inserted is false when another writer got there first.
	InsertIfAbsent(ctx context.Context, attendance Attendance) (created Attendance, inserted bool, err error)

	GetByID(ctx context.Context, id string) (Attendance, error)

	// GetByEmployeeAndDate returns nil when no record exists. With forUpdate the
	// row is locked until the surrounding transaction ends.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, forUpdate bool) (*Attendance, error)

	Update(ctx context.Context, attendance Attendance) error
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)

	// ListBetween returns every record with from <= date <= to, ordered by date.
	ListBetween(ctx context.Context, from, to time.Time) ([]Attendance, error)
}

// WindowProvider returns the currently configured time window.
type WindowProvider interface {
	Window(ctx context.Context) (TimeWindow, error)
}
