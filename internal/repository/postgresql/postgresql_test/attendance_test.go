package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createEmployee(t *testing.T, repo employee.EmployeeRepository, matricule string) employee.Employee {
	t.Helper()
	emp, err := repo.Create(context.Background(), employee.Employee{
		Matricule:    matricule,
		FullName:     "Test " + matricule,
		Position:     "Operator",
		Department:   "Production",
		ContractType: employee.ContractCDI,
		HireDate:     time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC),
		BaseSalary:   decimal.RequireFromString("3000"),
		IsActive:     true,
	})
	require.NoError(t, err)
	return emp
}

func TestEmployeeRepository_DuplicateMatricule(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewEmployeeRepository(db)

	createEmployee(t, repo, "EMP-001")
	_, err := repo.Create(context.Background(), employee.Employee{
		Matricule:    "EMP-001",
		FullName:     "Someone Else",
		Position:     "Operator",
		Department:   "Production",
		ContractType: employee.ContractCDD,
		HireDate:     time.Now(),
		IsActive:     true,
	})
	assert.ErrorIs(t, err, employee.ErrMatriculeExists)

	got, err := repo.GetByMatricule(context.Background(), "EMP-001")
	require.NoError(t, err)
	assert.True(t, got.BaseSalary.Equal(decimal.RequireFromString("3000")))
}

func TestAttendanceRepository_OneRecordPerDay(t *testing.T) {
	db := newTestDB(t)
	emp := createEmployee(t, postgresql.NewEmployeeRepository(db), "EMP-002")
	repo := postgresql.NewAttendanceRepository(db)
	ctx := context.Background()
	day := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	res, err := attendance.ResolveScan(emp.ID, nil, day.Add(8*time.Hour+10*time.Minute), attendance.DefaultTimeWindow())
	require.NoError(t, err)

	created, inserted, err := repo.InsertIfAbsent(ctx, res.Record)
	require.NoError(t, err)
	assert.True(t, inserted)

	_, inserted, err = repo.InsertIfAbsent(ctx, res.Record)
	require.NoError(t, err)
	assert.False(t, inserted)

	_, err = repo.Create(ctx, res.Record)
	assert.ErrorIs(t, err, attendance.ErrAttendanceExists)

	found, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day, false)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, created.ID, found.ID)
	require.NotNil(t, found.CheckInMorning)
	assert.Equal(t, "08:10", found.CheckInMorning.String())
	assert.Equal(t, attendance.StatusPresent, found.Status)

	none, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day.AddDate(0, 0, 1), false)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestAttendanceRepository_UpdateInTransaction(t *testing.T) {
	db := newTestDB(t)
	emp := createEmployee(t, postgresql.NewEmployeeRepository(db), "EMP-003")
	repo := postgresql.NewAttendanceRepository(db)
	tx := postgresql.NewTransactor(db)
	ctx := context.Background()
	day := time.Date(2025, time.March, 11, 0, 0, 0, 0, time.UTC)
	w := attendance.DefaultTimeWindow()

	in, err := attendance.ResolveScan(emp.ID, nil, day.Add(8*time.Hour+45*time.Minute), w)
	require.NoError(t, err)
	_, err = repo.Create(ctx, in.Record)
	require.NoError(t, err)

	err = tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day, true)
		if err != nil {
			return err
		}
		out, err := attendance.ResolveScan(emp.ID, existing, day.Add(18*time.Hour+30*time.Minute), w)
		if err != nil {
			return err
		}
		return repo.Update(ctx, out.Record)
	})
	require.NoError(t, err)

	got, err := repo.GetByEmployeeAndDate(ctx, emp.ID, day, false)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 9.75, got.HoursWorked)
	assert.Equal(t, 0.5, got.OvertimeHours)
	require.NotNil(t, got.CheckOutAfternoon)
	assert.Equal(t, "18:30", got.CheckOutAfternoon.String())
}
