package attendance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- fakes ----

type fakeTransactor struct{ calls int }

func (f *fakeTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeAttendanceRepo struct {
	mu      sync.Mutex
	records map[string]attendance.Attendance // by id

	getErr error
	// raceOnce makes the next InsertIfAbsent lose to a concurrent scan.
	raceOnce bool
}

func newFakeAttendanceRepo() *fakeAttendanceRepo {
	return &fakeAttendanceRepo{records: map[string]attendance.Attendance{}}
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (f *fakeAttendanceRepo) find(employeeID string, date time.Time) (attendance.Attendance, bool) {
	for _, r := range f.records {
		if r.EmployeeID == employeeID && sameDay(r.Date, date) {
			return r, true
		}
	}
	return attendance.Attendance{}, false
}

func (f *fakeAttendanceRepo) Create(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	created, ok, err := f.InsertIfAbsent(ctx, att)
	if err != nil {
		return attendance.Attendance{}, err
	}
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceExists
	}
	return created, nil
}

func (f *fakeAttendanceRepo) InsertIfAbsent(_ context.Context, att attendance.Attendance) (attendance.Attendance, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.raceOnce {
		f.raceOnce = false
		winner := att
		winner.ID = uuid.NewString()
		f.records[winner.ID] = winner
		return attendance.Attendance{}, false, nil
	}
	if _, exists := f.find(att.EmployeeID, att.Date); exists {
		return attendance.Attendance{}, false, nil
	}
	att.ID = uuid.NewString()
	att.CreatedAt = time.Now()
	att.UpdatedAt = att.CreatedAt
	f.records[att.ID] = att
	return att, true, nil
}

func (f *fakeAttendanceRepo) GetByID(_ context.Context, id string) (attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return r, nil
}

func (f *fakeAttendanceRepo) GetByEmployeeAndDate(_ context.Context, employeeID string, date time.Time, _ bool) (*attendance.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	r, ok := f.find(employeeID, date)
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (f *fakeAttendanceRepo) Update(_ context.Context, att attendance.Attendance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[att.ID]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	f.records[att.ID] = att
	return nil
}

func (f *fakeAttendanceRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.records[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(f.records, id)
	return nil
}

func (f *fakeAttendanceRepo) List(context.Context, attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]attendance.Attendance, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAttendanceRepo) ListBetween(context.Context, time.Time, time.Time) ([]attendance.Attendance, error) {
	return nil, nil
}

func (f *fakeAttendanceRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeEmployeeRepo struct {
	byID map[string]employee.Employee
}

func newFakeEmployeeRepo(emps ...employee.Employee) *fakeEmployeeRepo {
	f := &fakeEmployeeRepo{byID: map[string]employee.Employee{}}
	for _, e := range emps {
		f.byID[e.ID] = e
	}
	return f
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	e, ok := f.byID[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetByMatricule(_ context.Context, matricule string) (employee.Employee, error) {
	for _, e := range f.byID {
		if e.Matricule == matricule {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	f.byID[e.ID] = e
	return e, nil
}
func (f *fakeEmployeeRepo) Update(context.Context, employee.Employee) error        { return nil }
func (f *fakeEmployeeRepo) UpdatePhoto(context.Context, string, *string) error     { return nil }
func (f *fakeEmployeeRepo) Delete(context.Context, string) error                   { return nil }
func (f *fakeEmployeeRepo) ListActive(context.Context) ([]employee.Employee, error) { return nil, nil }
func (f *fakeEmployeeRepo) List(context.Context, employee.EmployeeFilter) ([]employee.Employee, int64, error) {
	return nil, 0, nil
}

type fixedWindow struct{ w attendance.TimeWindow }

func (f fixedWindow) Window(context.Context) (attendance.TimeWindow, error) { return f.w, nil }

type recordingPublisher struct {
	mu      sync.Mutex
	changes []realtime.Change
}

func (p *recordingPublisher) Publish(_ context.Context, c realtime.Change) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.changes = append(p.changes, c)
	return nil
}

func (p *recordingPublisher) actions() []realtime.Action {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.Action, 0, len(p.changes))
	for _, c := range p.changes {
		out = append(out, c.Action)
	}
	return out
}

type chanNotifier struct{ sent chan string }

func (n chanNotifier) Notify(_ context.Context, text string) error {
	n.sent <- text
	return nil
}

// ---- harness ----

type harness struct {
	svc       *AttendanceServiceImpl
	tx        *fakeTransactor
	repo      *fakeAttendanceRepo
	publisher *recordingPublisher
	notes     chan string
	clock     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		tx:        &fakeTransactor{},
		repo:      newFakeAttendanceRepo(),
		publisher: &recordingPublisher{},
		notes:     make(chan string, 4),
	}
	emps := newFakeEmployeeRepo(
		employee.Employee{ID: "emp-a", Matricule: "EMP-001", FullName: "Amina Alaoui", Department: "Ops", IsActive: true},
		employee.Employee{ID: "emp-x", Matricule: "EMP-099", FullName: "Former Staff", Department: "Ops", IsActive: false},
	)
	svc := NewAttendanceService(h.tx, h.repo, emps, fixedWindow{attendance.DefaultTimeWindow()}, h.publisher, chanNotifier{h.notes}, time.UTC)
	h.svc = svc.(*AttendanceServiceImpl)
	h.svc.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) at(hour, minute int) {
	h.clock = time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

// ---- tests ----

func TestScan_FullDayLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.at(8, 5)
	in, err := h.svc.Scan(ctx, attendance.ScanRequest{Code: "EMP-001"})
	require.NoError(t, err)
	assert.Equal(t, attendance.ScanCheckIn, in.Action)
	assert.Equal(t, attendance.GreetingMorning, in.Greeting)
	assert.Equal(t, "Amina Alaoui", in.EmployeeName)
	assert.Equal(t, "08:05", in.Time)
	assert.Equal(t, attendance.StatusPresent, in.Attendance.Status)
	assert.Equal(t, "open", in.Attendance.State)

	h.at(17, 35)
	out, err := h.svc.Scan(ctx, attendance.ScanRequest{Code: "EMP-001"})
	require.NoError(t, err)
	assert.Equal(t, attendance.ScanCheckOut, out.Action)
	assert.Equal(t, attendance.GreetingAfternoon, out.Greeting)
	assert.Equal(t, in.Attendance.ID, out.Attendance.ID)
	assert.Equal(t, 9.5, out.Attendance.HoursWorked)
	assert.Equal(t, "closed", out.Attendance.State)

	h.at(18, 0)
	_, err = h.svc.Scan(ctx, attendance.ScanRequest{Code: "EMP-001"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyClosed)

	assert.Equal(t, 1, h.repo.count())
	assert.Equal(t, []realtime.Action{realtime.ActionInsert, realtime.ActionUpdate}, h.publisher.actions())
}

func TestScan_UnknownCode(t *testing.T) {
	h := newHarness(t)
	h.at(8, 0)

	_, err := h.svc.Scan(context.Background(), attendance.ScanRequest{Code: "NOPE-1"})
	assert.ErrorIs(t, err, attendance.ErrUnknownEmployee)

	_, err = h.svc.Scan(context.Background(), attendance.ScanRequest{Code: "EMP-099"})
	assert.ErrorIs(t, err, attendance.ErrUnknownEmployee)

	assert.Zero(t, h.repo.count())
	assert.Zero(t, h.tx.calls)
	assert.Empty(t, h.publisher.actions())
}

func TestScan_EmptyCodeIsValidationError(t *testing.T) {
	h := newHarness(t)
	_, err := h.svc.Scan(context.Background(), attendance.ScanRequest{Code: "   "})
	require.Error(t, err)
	assert.NotErrorIs(t, err, attendance.ErrUnknownEmployee)
}

func TestScan_StoreUnavailable(t *testing.T) {
	h := newHarness(t)
	h.at(8, 0)
	h.repo.getErr = errors.New("connection refused")

	_, err := h.svc.Scan(context.Background(), attendance.ScanRequest{Code: "EMP-001"})
	assert.ErrorIs(t, err, attendance.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestScan_LostInsertRaceRetriesOnce(t *testing.T) {
	h := newHarness(t)
	h.at(8, 10)
	h.repo.raceOnce = true

	resp, err := h.svc.Scan(context.Background(), attendance.ScanRequest{Code: "EMP-001"})
	require.NoError(t, err)

	// The concurrent scan won the insert; this one becomes the check-out.
	assert.Equal(t, attendance.ScanCheckOut, resp.Action)
	assert.Equal(t, 1, h.repo.count())
	assert.Equal(t, 2, h.tx.calls)
}

func TestScan_LateArrivalAlertsAdmins(t *testing.T) {
	h := newHarness(t)
	h.at(8, 45)

	resp, err := h.svc.Scan(context.Background(), attendance.ScanRequest{Code: "EMP-001"})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, resp.Attendance.Status)

	select {
	case text := <-h.notes:
		assert.Contains(t, text, "EMP")
		assert.Contains(t, text, "late")
	case <-time.After(2 * time.Second):
		t.Fatal("expected an arrival alert")
	}
}

func TestScan_OnTimeArrivalDoesNotAlert(t *testing.T) {
	h := newHarness(t)
	h.at(8, 0)

	_, err := h.svc.Scan(context.Background(), attendance.ScanRequest{Code: "EMP-001"})
	require.NoError(t, err)

	select {
	case text := <-h.notes:
		t.Fatalf("unexpected alert %q", text)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestCompute(t *testing.T) {
	h := newHarness(t)

	got, err := h.svc.Compute(context.Background(), attendance.ComputeRequest{CheckIn: "08:40", CheckOut: "17:00"})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusLate, got.Status)
	assert.Equal(t, 8.33, got.HoursWorked)
	assert.Equal(t, attendance.DefaultTimeWindow(), got.Window)

	_, err = h.svc.Compute(context.Background(), attendance.ComputeRequest{CheckIn: "8h40"})
	assert.ErrorIs(t, err, attendance.ErrInvalidTimeFormat)
}

func strPtr(s string) *string { return &s }

func TestCreateAndCorrectAttendance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.at(19, 0)

	created, err := h.svc.CreateAttendance(ctx, attendance.CreateAttendanceRequest{
		EmployeeID:        "emp-a",
		Date:              "2025-03-07",
		CheckInMorning:    strPtr("08:00"),
		CheckOutAfternoon: strPtr("19:30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-07", created.Date)
	assert.Equal(t, 11.5, created.HoursWorked)
	assert.Equal(t, 1.5, created.OvertimeHours)
	assert.Equal(t, "Amina Alaoui", created.EmployeeName)

	_, err = h.svc.CreateAttendance(ctx, attendance.CreateAttendanceRequest{EmployeeID: "emp-a", Date: "2025-03-07"})
	assert.ErrorIs(t, err, attendance.ErrAttendanceExists)

	updated, err := h.svc.UpdateAttendance(ctx, attendance.UpdateAttendanceRequest{
		ID:                created.ID,
		CheckInMorning:    strPtr("09:15"),
		CheckOutAfternoon: strPtr("17:00"),
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, updated.Status)
	assert.Equal(t, 7.75, updated.HoursWorked)
	assert.Zero(t, updated.OvertimeHours)

	cleared, err := h.svc.UpdateAttendance(ctx, attendance.UpdateAttendanceRequest{
		ID:                created.ID,
		CheckInMorning:    strPtr(""),
		CheckOutAfternoon: strPtr(""),
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusAbsent, cleared.Status)
	assert.Zero(t, cleared.HoursWorked)

	_, err = h.svc.UpdateAttendance(ctx, attendance.UpdateAttendanceRequest{ID: created.ID, CheckOutMorning: strPtr("12:00")})
	assert.ErrorIs(t, err, attendance.ErrCheckOutWithoutIn)

	require.NoError(t, h.svc.DeleteAttendance(ctx, created.ID))
	assert.ErrorIs(t, h.svc.DeleteAttendance(ctx, created.ID), attendance.ErrAttendanceNotFound)
}

func TestGetToday(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.at(10, 0)

	today, err := h.svc.GetToday(ctx, "emp-a")
	require.NoError(t, err)
	assert.Equal(t, "no_record", today.State)
	assert.Nil(t, today.Attendance)

	_, err = h.svc.Scan(ctx, attendance.ScanRequest{Code: "EMP-001"})
	require.NoError(t, err)

	today, err = h.svc.GetToday(ctx, "emp-a")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", today.Date)
	assert.Equal(t, "open", today.State)
	require.NotNil(t, today.Attendance)

	_, err = h.svc.GetToday(ctx, "missing")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestListAttendance_Pagination(t *testing.T) {
	h := newHarness(t)

	empty, err := h.svc.ListAttendance(context.Background(), attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, "0 of 0", empty.Showing)
	assert.Equal(t, 1, empty.Page)
	assert.Equal(t, 20, empty.Limit)

	_, err = h.svc.ListAttendance(context.Background(), attendance.AttendanceFilter{Limit: 500})
	assert.Error(t, err)
}
