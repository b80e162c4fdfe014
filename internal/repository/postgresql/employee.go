package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	id, matricule, full_name, email, phone_number, position, department,
	contract_type, hire_date, base_salary, photo_url, is_active, created_at, updated_at`

func employeeDest(emp *employee.Employee) []any {
	return []any{
		&emp.ID, &emp.Matricule, &emp.FullName, &emp.Email, &emp.PhoneNumber,
		&emp.Position, &emp.Department, &emp.ContractType, &emp.HireDate,
		&emp.BaseSalary, &emp.PhotoURL, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
	}
}

// mapEmployeeWriteError turns unique violations into domain errors.
func mapEmployeeWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "employees_email_key":
			return employee.ErrEmailExists
		default:
			return employee.ErrMatriculeExists
		}
	}
	return err
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	var emp employee.Employee
	if err := q.QueryRow(ctx, query, id).Scan(employeeDest(&emp)...); err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by id: %w", err)
	}
	return emp, nil
}

// GetByMatricule implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByMatricule(ctx context.Context, matricule string) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE matricule = $1`

	var emp employee.Employee
	if err := q.QueryRow(ctx, query, matricule).Scan(employeeDest(&emp)...); err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by matricule: %w", err)
	}
	return emp, nil
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		INSERT INTO employees (
			matricule, full_name, email, phone_number, position, department,
			contract_type, hire_date, base_salary, photo_url, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + employeeColumns

	var created employee.Employee
	err := q.QueryRow(ctx, query,
		newEmployee.Matricule,
		newEmployee.FullName,
		newEmployee.Email,
		newEmployee.PhoneNumber,
		newEmployee.Position,
		newEmployee.Department,
		newEmployee.ContractType,
		newEmployee.HireDate,
		newEmployee.BaseSalary,
		newEmployee.PhotoURL,
		newEmployee.IsActive,
	).Scan(employeeDest(&created)...)
	if err != nil {
		if mapped := mapEmployeeWriteError(err); mapped != err {
			return employee.Employee{}, mapped
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET full_name = $1, email = $2, phone_number = $3, position = $4, department = $5,
			contract_type = $6, hire_date = $7, base_salary = $8, is_active = $9, updated_at = NOW()
		WHERE id = $10
	`

	tag, err := q.Exec(ctx, query,
		emp.FullName,
		emp.Email,
		emp.PhoneNumber,
		emp.Position,
		emp.Department,
		emp.ContractType,
		emp.HireDate,
		emp.BaseSalary,
		emp.IsActive,
		emp.ID,
	)
	if err != nil {
		if mapped := mapEmployeeWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("failed to update employee with id %s: %w", emp.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// UpdatePhoto implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) UpdatePhoto(ctx context.Context, id string, photoURL *string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET photo_url = $1, updated_at = NOW() WHERE id = $2`, photoURL, id)
	if err != nil {
		return fmt.Errorf("failed to update photo for employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete implements employee.EmployeeRepository. Attendance and advances
// cascade.
func (e *employeeRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	q := GetQuerier(ctx, e.db)

	var conditions []string
	var args []interface{}
	argIdx := 1

	if filter.Search != nil && *filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR matricule ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+*filter.Search+"%")
		argIdx++
	}
	if filter.Department != nil && *filter.Department != "" {
		conditions = append(conditions, fmt.Sprintf("department = $%d", argIdx))
		args = append(args, *filter.Department)
		argIdx++
	}
	if filter.ContractType != nil && *filter.ContractType != "" {
		conditions = append(conditions, fmt.Sprintf("contract_type = $%d", argIdx))
		args = append(args, *filter.ContractType)
		argIdx++
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", argIdx))
		args = append(args, *filter.IsActive)
		argIdx++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM employees "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	sortBy := "full_name"
	switch filter.SortBy {
	case "matricule", "hire_date", "department":
		sortBy = filter.SortBy
	}
	sortOrder := "ASC"
	if strings.ToLower(filter.SortOrder) == "desc" {
		sortOrder = "DESC"
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM employees %s ORDER BY %s %s, id ASC LIMIT $%d OFFSET $%d`,
		employeeColumns, where, sortBy, sortOrder, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees, err := scanEmployees(rows)
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// ListActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees WHERE is_active = TRUE ORDER BY full_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	return scanEmployees(rows)
}

func scanEmployees(rows pgx.Rows) ([]employee.Employee, error) {
	employees := []employee.Employee{}
	for rows.Next() {
		var emp employee.Employee
		if err := rows.Scan(employeeDest(&emp)...); err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}
