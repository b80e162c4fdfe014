package dashboard

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
)

// EmployeeCounts combines all employee summary counts in a single query
type EmployeeCounts struct {
	Total    int64
	Active   int64
	Inactive int64
	CDI      int64
	CDD      int64
}

type DashboardRepository interface {
	GetEmployeeCounts(ctx context.Context) (EmployeeCounts, error)

	// GetRecentAttendance returns the most recently touched records.
	GetRecentAttendance(ctx context.Context, limit int) ([]attendance.Attendance, error)
}
