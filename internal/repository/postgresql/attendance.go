package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	a.id, a.employee_id, a.date,
	to_char(a.check_in_morning, 'HH24:MI'), to_char(a.check_out_morning, 'HH24:MI'),
	to_char(a.check_in_afternoon, 'HH24:MI'), to_char(a.check_out_afternoon, 'HH24:MI'),
	a.status, a.hours_worked, a.overtime_hours, a.notes, a.created_at, a.updated_at`

// attendanceRow mirrors attendanceColumns; times come back as HH:MM text.
type attendanceRow struct {
	att                                     attendance.Attendance
	inMorning, outMorning, inAfter, outAfter *string
}

func (r *attendanceRow) dest() []any {
	return []any{
		&r.att.ID, &r.att.EmployeeID, &r.att.Date,
		&r.inMorning, &r.outMorning, &r.inAfter, &r.outAfter,
		&r.att.Status, &r.att.HoursWorked, &r.att.OvertimeHours, &r.att.Notes,
		&r.att.CreatedAt, &r.att.UpdatedAt,
	}
}

func (r *attendanceRow) toEntity() (attendance.Attendance, error) {
	var err error
	if r.att.CheckInMorning, err = parseClock(r.inMorning); err != nil {
		return attendance.Attendance{}, err
	}
	if r.att.CheckOutMorning, err = parseClock(r.outMorning); err != nil {
		return attendance.Attendance{}, err
	}
	if r.att.CheckInAfternoon, err = parseClock(r.inAfter); err != nil {
		return attendance.Attendance{}, err
	}
	if r.att.CheckOutAfternoon, err = parseClock(r.outAfter); err != nil {
		return attendance.Attendance{}, err
	}
	return r.att, nil
}

func parseClock(s *string) (*attendance.TimeOfDay, error) {
	if s == nil {
		return nil, nil
	}
	t, err := attendance.ParseTimeOfDay(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func clockArg(t *attendance.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func dateArg(t time.Time) string {
	return t.Format("2006-01-02")
}

// Create implements attendance.AttendanceRepository.
func (a *attendanceRepository) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	created, inserted, err := a.InsertIfAbsent(ctx, att)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if !inserted {
		return attendance.Attendance{}, attendance.ErrAttendanceExists
	}
	return created, nil
}

// InsertIfAbsent implements attendance.AttendanceRepository.
func (a *attendanceRepository) InsertIfAbsent(ctx context.Context, att attendance.Attendance) (attendance.Attendance, bool, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		WITH a AS (
			INSERT INTO attendances (
				employee_id, date, check_in_morning, check_out_morning,
				check_in_afternoon, check_out_afternoon, status, hours_worked, overtime_hours, notes
			)
			VALUES ($1, $2::date, $3::time, $4::time, $5::time, $6::time, $7, $8, $9, $10)
			ON CONFLICT (employee_id, date) DO NOTHING
			RETURNING *
		)
		SELECT ` + attendanceColumns + ` FROM a`

	var row attendanceRow
	err := q.QueryRow(ctx, query,
		att.EmployeeID,
		dateArg(att.Date),
		clockArg(att.CheckInMorning),
		clockArg(att.CheckOutMorning),
		clockArg(att.CheckInAfternoon),
		clockArg(att.CheckOutAfternoon),
		att.Status,
		att.HoursWorked,
		att.OvertimeHours,
		att.Notes,
	).Scan(row.dest()...)
	if err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, false, nil
		}
		if isForeignKeyViolation(err) {
			return attendance.Attendance{}, false, attendance.ErrUnknownEmployee
		}
		return attendance.Attendance{}, false, fmt.Errorf("failed to insert attendance: %w", err)
	}

	created, err := row.toEntity()
	if err != nil {
		return attendance.Attendance{}, false, err
	}
	return created, true, nil
}

// GetByID implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `,
			e.full_name, e.matricule, e.department
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.id = $1
	`

	var row attendanceRow
	dest := append(row.dest(), &row.att.EmployeeName, &row.att.EmployeeMatricule, &row.att.EmployeeDepartment)
	if err := q.QueryRow(ctx, query, id).Scan(dest...); err != nil {
		if err == pgx.ErrNoRows {
			return attendance.Attendance{}, attendance.ErrAttendanceNotFound
		}
		return attendance.Attendance{}, fmt.Errorf("failed to get attendance by id: %w", err)
	}
	return row.toEntity()
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time, forUpdate bool) (*attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `
		FROM attendances a
		WHERE a.employee_id = $1
		  AND a.date = $2::date
	`
	if forUpdate {
		query += " FOR UPDATE"
	}

	var row attendanceRow
	if err := q.QueryRow(ctx, query, employeeID, dateArg(date)).Scan(row.dest()...); err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // No existing attendance found
		}
		return nil, fmt.Errorf("failed to get attendance by employee and date: %w", err)
	}

	att, err := row.toEntity()
	if err != nil {
		return nil, err
	}
	return &att, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, att attendance.Attendance) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendances
		SET check_in_morning = $1::time, check_out_morning = $2::time,
			check_in_afternoon = $3::time, check_out_afternoon = $4::time,
			status = $5, hours_worked = $6, overtime_hours = $7, notes = $8,
			updated_at = NOW()
		WHERE id = $9
	`

	tag, err := q.Exec(ctx, query,
		clockArg(att.CheckInMorning),
		clockArg(att.CheckOutMorning),
		clockArg(att.CheckInAfternoon),
		clockArg(att.CheckOutAfternoon),
		att.Status,
		att.HoursWorked,
		att.OvertimeHours,
		att.Notes,
		att.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// Delete implements attendance.AttendanceRepository.
func (a *attendanceRepository) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, a.db)

	tag, err := q.Exec(ctx, `DELETE FROM attendances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}
	return nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	q := GetQuerier(ctx, a.db)

	// Build WHERE clause
	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND a.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}

	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		baseWhere += fmt.Sprintf(" AND (e.full_name ILIKE $%d OR e.matricule ILIKE $%d)", argIdx, argIdx)
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	if filter.Department != nil && *filter.Department != "" {
		baseWhere += fmt.Sprintf(" AND e.department = $%d", argIdx)
		args = append(args, *filter.Department)
		argIdx++
	}

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND a.date = $%d::date", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}

	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date >= $%d::date", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND a.date <= $%d::date", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND a.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendances: %w", err)
	}

	orderByField := "a.date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.full_name"
	case "check_in":
		orderByField = "COALESCE(a.check_in_morning, a.check_in_afternoon)"
	case "hours_worked":
		orderByField = "a.hours_worked"
	case "status":
		orderByField = "a.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT %s,
			e.full_name, e.matricule, e.department
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE %s
		ORDER BY %s %s, e.full_name ASC
		LIMIT $%d OFFSET $%d
	`, attendanceColumns, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query attendances: %w", err)
	}
	defer rows.Close()

	attendances, err := scanAttendanceRows(rows, true)
	if err != nil {
		return nil, 0, err
	}
	return attendances, total, nil
}

// ListBetween implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListBetween(ctx context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + attendanceColumns + `,
			e.full_name, e.matricule, e.department
		FROM attendances a
		JOIN employees e ON e.id = a.employee_id
		WHERE a.date BETWEEN $1::date AND $2::date
		ORDER BY a.date ASC, e.full_name ASC
	`

	rows, err := q.Query(ctx, query, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendances between dates: %w", err)
	}
	defer rows.Close()

	return scanAttendanceRows(rows, true)
}

func scanAttendanceRows(rows pgx.Rows, withEmployee bool) ([]attendance.Attendance, error) {
	attendances := []attendance.Attendance{}
	for rows.Next() {
		var row attendanceRow
		dest := row.dest()
		if withEmployee {
			dest = append(dest, &row.att.EmployeeName, &row.att.EmployeeMatricule, &row.att.EmployeeDepartment)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		att, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		attendances = append(attendances, att)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate attendances: %w", err)
	}
	return attendances, nil
}
