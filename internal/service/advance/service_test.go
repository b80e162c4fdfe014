package advance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAdvanceRepo struct {
	advance.AdvanceRepository
	rows []advance.Advance
}

func (m *memoryAdvanceRepo) Create(_ context.Context, a advance.Advance) (advance.Advance, error) {
	a.ID = fmt.Sprintf("adv-%d", len(m.rows)+1)
	a.CreatedAt = time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	m.rows = append(m.rows, a)
	return a, nil
}

func (m *memoryAdvanceRepo) GetByID(_ context.Context, id string) (advance.Advance, error) {
	for _, a := range m.rows {
		if a.ID == id {
			return a, nil
		}
	}
	return advance.Advance{}, advance.ErrAdvanceNotFound
}

func (m *memoryAdvanceRepo) List(_ context.Context, _ advance.AdvanceFilter) ([]advance.Advance, int64, error) {
	return m.rows, int64(len(m.rows)), nil
}

func (m *memoryAdvanceRepo) Delete(_ context.Context, id string) error {
	for i, a := range m.rows {
		if a.ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return advance.ErrAdvanceNotFound
}

type singleEmployeeRepo struct {
	employee.EmployeeRepository
	emp employee.Employee
}

func (r singleEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if id != r.emp.ID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.emp, nil
}

func newTestService() (advance.AdvanceService, *memoryAdvanceRepo, *realtime.Hub) {
	repo := &memoryAdvanceRepo{}
	hub := realtime.NewHub()
	emps := singleEmployeeRepo{emp: employee.Employee{ID: "emp-a", Matricule: "EMP-001", FullName: "Amina Idrissi"}}
	return NewAdvanceService(repo, emps, hub), repo, hub
}

func TestCreateAdvance(t *testing.T) {
	svc, repo, hub := newTestService()
	changes, cleanup := hub.Subscribe(realtime.TableAdvances)
	defer cleanup()

	ctx := session.WithSession(context.Background(), session.Session{UserID: "u-admin", Role: user.RoleAdmin})
	resp, err := svc.CreateAdvance(ctx, advance.CreateAdvanceRequest{
		EmployeeID: "emp-a",
		Amount:     decimal.RequireFromString("250.005"),
		Date:       "2025-03-05",
	})
	require.NoError(t, err)

	assert.Equal(t, "adv-1", resp.ID)
	assert.Equal(t, "250.01", resp.Amount.StringFixed(2))
	assert.Equal(t, "2025-03-05", resp.Date)
	assert.Equal(t, "EMP-001", resp.EmployeeMatricule)
	require.NotNil(t, repo.rows[0].CreatedBy)
	assert.Equal(t, "u-admin", *repo.rows[0].CreatedBy)

	select {
	case c := <-changes:
		assert.Equal(t, realtime.ActionInsert, c.Action)
		assert.Equal(t, "adv-1", c.RecordID)
	default:
		t.Fatal("expected a change on salary_advances")
	}
}

func TestCreateAdvance_Rejects(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.CreateAdvance(ctx, advance.CreateAdvanceRequest{EmployeeID: "emp-a", Amount: decimal.Zero, Date: "2025-03-05"})
	assert.Error(t, err)

	_, err = svc.CreateAdvance(ctx, advance.CreateAdvanceRequest{EmployeeID: "emp-z", Amount: decimal.NewFromInt(10), Date: "2025-03-05"})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListAndDeleteAdvances(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, amount := range []int64{100, 150} {
		_, err := svc.CreateAdvance(ctx, advance.CreateAdvanceRequest{EmployeeID: "emp-a", Amount: decimal.NewFromInt(amount), Date: "2025-03-05"})
		require.NoError(t, err)
	}

	list, err := svc.ListAdvances(ctx, advance.AdvanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.TotalCount)
	assert.True(t, decimal.NewFromInt(250).Equal(list.TotalAmount))
	assert.Equal(t, "1-2 of 2", list.Showing)

	require.NoError(t, svc.DeleteAdvance(ctx, "adv-1"))
	_, err = svc.GetAdvance(ctx, "adv-1")
	assert.ErrorIs(t, err, advance.ErrAdvanceNotFound)
}
