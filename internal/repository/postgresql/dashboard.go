package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// GetEmployeeCounts returns total, active, inactive and contract split in a single query
func (r *dashboardRepositoryImpl) GetEmployeeCounts(ctx context.Context) (dashboard.EmployeeCounts, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			COUNT(*) as total,
			COALESCE(SUM(CASE WHEN is_active THEN 1 ELSE 0 END), 0) as active_count,
			COALESCE(SUM(CASE WHEN NOT is_active THEN 1 ELSE 0 END), 0) as inactive_count,
			COALESCE(SUM(CASE WHEN contract_type = 'CDI' THEN 1 ELSE 0 END), 0) as cdi,
			COALESCE(SUM(CASE WHEN contract_type = 'CDD' THEN 1 ELSE 0 END), 0) as cdd
		FROM employees
	`

	var counts dashboard.EmployeeCounts
	err := q.QueryRow(ctx, query).Scan(
		&counts.Total, &counts.Active, &counts.Inactive, &counts.CDI, &counts.CDD,
	)
	if err != nil {
		return dashboard.EmployeeCounts{}, fmt.Errorf("failed to get employee counts: %w", err)
	}
	return counts, nil
}

// GetRecentAttendance returns the latest touched records with employee names
func (r *dashboardRepositoryImpl) GetRecentAttendance(ctx context.Context, limit int) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + attendanceColumns + `,
			e.full_name, e.matricule, e.department
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE COALESCE(a.check_in_morning, a.check_in_afternoon) IS NOT NULL
		ORDER BY a.updated_at DESC
		LIMIT $1
	`

	rows, err := q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent attendance: %w", err)
	}
	defer rows.Close()

	return scanAttendanceRows(rows, true)
}
