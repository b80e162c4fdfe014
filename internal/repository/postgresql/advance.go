package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type advanceRepositoryImpl struct {
	db *database.DB
}

func NewAdvanceRepository(db *database.DB) advance.AdvanceRepository {
	return &advanceRepositoryImpl{db: db}
}

const advanceColumns = `s.id, s.employee_id, s.amount, s.date, s.reason, s.created_by, s.created_at, s.updated_at`

func advanceDest(a *advance.Advance) []any {
	return []any{
		&a.ID, &a.EmployeeID, &a.Amount, &a.Date, &a.Reason, &a.CreatedBy, &a.CreatedAt, &a.UpdatedAt,
	}
}

// Create implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) Create(ctx context.Context, adv advance.Advance) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO salary_advances AS s (employee_id, amount, date, reason, created_by)
		VALUES ($1, $2, $3::date, $4, $5)
		RETURNING ` + advanceColumns

	var created advance.Advance
	err := q.QueryRow(ctx, query,
		adv.EmployeeID,
		adv.Amount,
		dateArg(adv.Date),
		adv.Reason,
		adv.CreatedBy,
	).Scan(advanceDest(&created)...)
	if err != nil {
		return advance.Advance{}, fmt.Errorf("failed to create salary advance: %w", err)
	}
	return created, nil
}

// GetByID implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) GetByID(ctx context.Context, id string) (advance.Advance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + advanceColumns + `, e.full_name, e.matricule
		FROM salary_advances s
		JOIN employees e ON e.id = s.employee_id
		WHERE s.id = $1
	`

	var found advance.Advance
	if err := q.QueryRow(ctx, query, id).Scan(append(advanceDest(&found), &found.EmployeeName, &found.EmployeeMatricule)...); err != nil {
		if err == pgx.ErrNoRows {
			return advance.Advance{}, advance.ErrAdvanceNotFound
		}
		return advance.Advance{}, fmt.Errorf("failed to get salary advance: %w", err)
	}
	return found, nil
}

// Delete implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM salary_advances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete salary advance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return advance.ErrAdvanceNotFound
	}
	return nil
}

// List implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) List(ctx context.Context, filter advance.AdvanceFilter) ([]advance.Advance, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "TRUE"
	args := []interface{}{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND s.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Month != 0 && filter.Year != 0 {
		baseWhere += fmt.Sprintf(" AND EXTRACT(MONTH FROM s.date) = $%d AND EXTRACT(YEAR FROM s.date) = $%d", argIdx, argIdx+1)
		args = append(args, filter.Month, filter.Year)
		argIdx += 2
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM salary_advances s WHERE `+baseWhere, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count salary advances: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	offset := (filter.Page - 1) * limit
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
		SELECT %s, e.full_name, e.matricule
		FROM salary_advances s
		JOIN employees e ON e.id = s.employee_id
		WHERE %s
		ORDER BY s.date DESC, s.created_at DESC
		LIMIT $%d OFFSET $%d
	`, advanceColumns, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list salary advances: %w", err)
	}
	defer rows.Close()

	advances := []advance.Advance{}
	for rows.Next() {
		var a advance.Advance
		if err := rows.Scan(append(advanceDest(&a), &a.EmployeeName, &a.EmployeeMatricule)...); err != nil {
			return nil, 0, fmt.Errorf("failed to scan salary advance: %w", err)
		}
		advances = append(advances, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate salary advances: %w", err)
	}
	return advances, total, nil
}

// TotalsBetween implements advance.AdvanceRepository.
func (r *advanceRepositoryImpl) TotalsBetween(ctx context.Context, from, to time.Time) (map[string]decimal.Decimal, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, SUM(amount)
		FROM salary_advances
		WHERE date BETWEEN $1::date AND $2::date
		GROUP BY employee_id
	`

	rows, err := q.Query(ctx, query, dateArg(from), dateArg(to))
	if err != nil {
		return nil, fmt.Errorf("failed to sum salary advances: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]decimal.Decimal)
	for rows.Next() {
		var employeeID string
		var sum decimal.Decimal
		if err := rows.Scan(&employeeID, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan advance total: %w", err)
		}
		totals[employeeID] = sum
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate advance totals: %w", err)
	}
	return totals, nil
}
