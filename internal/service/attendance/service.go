package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/notify"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
)

// errInsertRaced means another scan created today's record between our read
// and our insert.
var errInsertRaced = errors.New("attendance insert lost race")

const notifyTimeout = 10 * time.Second

type AttendanceServiceImpl struct {
	tx database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	windows   attendance.WindowProvider
	publisher realtime.Publisher
	notifier  notify.Notifier
	loc       *time.Location
	now       func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepository attendance.AttendanceRepository,
	employeeRepository employee.EmployeeRepository,
	windows attendance.WindowProvider,
	publisher realtime.Publisher,
	notifier notify.Notifier,
	loc *time.Location,
) attendance.AttendanceService {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:                   tx,
		AttendanceRepository: attendanceRepository,
		EmployeeRepository:   employeeRepository,
		windows:              windows,
		publisher:            publisher,
		notifier:             notifier,
		loc:                  loc,
		now:                  time.Now,
	}
}

// Scan implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Scan(ctx context.Context, req attendance.ScanRequest) (attendance.ScanResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.ScanResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByMatricule(ctx, req.Code)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return attendance.ScanResponse{}, attendance.ErrUnknownEmployee
		}
		return attendance.ScanResponse{}, attendance.Unavailable(fmt.Errorf("failed to resolve code: %w", err))
	}
	if !emp.IsActive {
		return attendance.ScanResponse{}, attendance.ErrUnknownEmployee
	}

	w, err := a.windows.Window(ctx)
	if err != nil {
		return attendance.ScanResponse{}, attendance.Unavailable(fmt.Errorf("failed to load time window: %w", err))
	}

	now := a.now().In(a.loc)

	var (
		decision attendance.ScanDecision
		saved    attendance.Attendance
		inserted bool
	)
	// A lost insert race is retried once; the second pass sees the winner's row.
	for attempt := 0; attempt < 2; attempt++ {
		decision, saved, inserted, err = a.applyScan(ctx, emp.ID, now, w)
		if !errors.Is(err, errInsertRaced) {
			break
		}
		slog.Warn("scan insert raced, retrying", "employee_id", emp.ID, "attempt", attempt+1)
	}
	if err != nil {
		switch {
		case errors.Is(err, attendance.ErrAlreadyClosed), errors.Is(err, attendance.ErrUnknownEmployee):
			return attendance.ScanResponse{}, err
		default:
			return attendance.ScanResponse{}, attendance.Unavailable(err)
		}
	}

	saved.EmployeeName = &emp.FullName
	saved.EmployeeMatricule = &emp.Matricule
	saved.EmployeeDepartment = &emp.Department

	action := realtime.ActionUpdate
	if inserted {
		action = realtime.ActionInsert
	}
	a.publish(ctx, action, saved.ID)

	if decision.Action == attendance.ScanCheckIn &&
		(saved.Status == attendance.StatusLate || saved.Status == attendance.StatusAbsent) {
		a.alert(ctx, notify.ArrivalAlert(emp.FullName, emp.Matricule, string(saved.Status), attendance.TimeOfDayOf(now).String()))
	}

	return attendance.ScanResponse{
		Action:       decision.Action,
		Greeting:     decision.Greeting,
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Matricule:    emp.Matricule,
		Time:         attendance.TimeOfDayOf(now).String(),
		Attendance:   mapAttendanceToResponse(saved),
	}, nil
}

// applyScan reads today's record under a row lock, resolves the scan and
// writes the result, all in one transaction.
func (a *AttendanceServiceImpl) applyScan(ctx context.Context, employeeID string, now time.Time, w attendance.TimeWindow) (attendance.ScanDecision, attendance.Attendance, bool, error) {
	var (
		decision attendance.ScanDecision
		saved    attendance.Attendance
		inserted bool
	)

	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		existing, err := a.AttendanceRepository.GetByEmployeeAndDate(txCtx, employeeID, attendance.DateOnly(now), true)
		if err != nil {
			return fmt.Errorf("failed to load today's attendance: %w", err)
		}

		decision, err = attendance.ResolveScan(employeeID, existing, now, w)
		if err != nil {
			return err
		}

		if existing == nil {
			created, ok, err := a.AttendanceRepository.InsertIfAbsent(txCtx, decision.Record)
			if err != nil {
				return err
			}
			if !ok {
				return errInsertRaced
			}
			saved, inserted = created, true
			return nil
		}

		if err := a.AttendanceRepository.Update(txCtx, decision.Record); err != nil {
			return fmt.Errorf("failed to save scan: %w", err)
		}
		saved = decision.Record
		return nil
	})

	return decision, saved, inserted, err
}

// Compute implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Compute(ctx context.Context, req attendance.ComputeRequest) (attendance.ComputeResponse, error) {
	w, err := a.windows.Window(ctx)
	if err != nil {
		return attendance.ComputeResponse{}, fmt.Errorf("failed to load time window: %w", err)
	}

	c, err := attendance.ComputeAttendance(req.CheckIn, req.CheckOut, w)
	if err != nil {
		return attendance.ComputeResponse{}, err
	}

	return attendance.ComputeResponse{Computation: c, Window: w}, nil
}

// GetAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	att, err := a.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return mapAttendanceToResponse(att), nil
}

// GetToday implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetToday(ctx context.Context, employeeID string) (attendance.TodayResponse, error) {
	emp, err := a.EmployeeRepository.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.TodayResponse{}, err
	}

	today := attendance.DateOnly(a.now().In(a.loc))
	existing, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, emp.ID, today, false)
	if err != nil {
		return attendance.TodayResponse{}, fmt.Errorf("failed to get today's attendance: %w", err)
	}

	resp := attendance.TodayResponse{
		Date:  today.Format("2006-01-02"),
		State: attendance.StateOf(existing).String(),
	}
	if existing != nil {
		existing.EmployeeName = &emp.FullName
		existing.EmployeeMatricule = &emp.Matricule
		existing.EmployeeDepartment = &emp.Department
		r := mapAttendanceToResponse(*existing)
		resp.Attendance = &r
	}
	return resp, nil
}

// ListAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListAttendance(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	attendances, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendances: %w", err)
	}

	// Map to response
	responses := make([]attendance.AttendanceResponse, 0, len(attendances))
	for _, att := range attendances {
		responses = append(responses, mapAttendanceToResponse(att))
	}

	totalPages := int(math.Ceil(float64(total) / float64(filter.Limit)))
	showing := fmt.Sprintf("%d-%d of %d", (filter.Page-1)*filter.Limit+1, min((filter.Page)*filter.Limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Showing:     showing,
		Attendances: responses,
	}, nil
}

// CreateAttendance implements attendance.AttendanceService. It records a day
// for an employee who forgot to scan.
func (a *AttendanceServiceImpl) CreateAttendance(ctx context.Context, req attendance.CreateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	emp, err := a.EmployeeRepository.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	date, err := time.ParseInLocation("2006-01-02", req.Date, a.loc)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("invalid date: %w", err)
	}

	rec := attendance.Attendance{
		EmployeeID: emp.ID,
		Date:       date,
		Notes:      req.Notes,
	}
	if err := applySlots(&rec, req.CheckInMorning, req.CheckOutMorning, req.CheckInAfternoon, req.CheckOutAfternoon); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	w, err := a.windows.Window(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load time window: %w", err)
	}
	rec.Recompute(w)

	created, err := a.AttendanceRepository.Create(ctx, rec)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	created.EmployeeName = &emp.FullName
	created.EmployeeMatricule = &emp.Matricule
	created.EmployeeDepartment = &emp.Department

	a.publish(ctx, realtime.ActionInsert, created.ID)

	return mapAttendanceToResponse(created), nil
}

// UpdateAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) UpdateAttendance(ctx context.Context, req attendance.UpdateAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	rec, err := a.AttendanceRepository.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := applySlots(&rec, req.CheckInMorning, req.CheckOutMorning, req.CheckInAfternoon, req.CheckOutAfternoon); err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if req.Notes != nil {
		if strings.TrimSpace(*req.Notes) == "" {
			rec.Notes = nil
		} else {
			rec.Notes = req.Notes
		}
	}

	w, err := a.windows.Window(ctx)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to load time window: %w", err)
	}
	if rec.CheckIn() == nil {
		rec.Status = attendance.StatusAbsent
	}
	rec.Recompute(w)

	if err := a.AttendanceRepository.Update(ctx, rec); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	a.publish(ctx, realtime.ActionUpdate, rec.ID)

	return mapAttendanceToResponse(rec), nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, id string) error {
	if err := a.AttendanceRepository.Delete(ctx, id); err != nil {
		return err
	}
	a.publish(ctx, realtime.ActionDelete, id)
	return nil
}

func (a *AttendanceServiceImpl) publish(ctx context.Context, action realtime.Action, id string) {
	if err := a.publisher.Publish(ctx, realtime.NewChange(realtime.TableAttendances, action, id)); err != nil {
		slog.Warn("failed to publish attendance change", "action", action, "id", id, "error", err)
	}
}

// alert sends in the background; a slow bot must not hold up the scanner.
func (a *AttendanceServiceImpl) alert(ctx context.Context, text string) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		if err := a.notifier.Notify(ctx, text); err != nil {
			slog.Warn("failed to send arrival alert", "error", err)
		}
	}()
}

// applySlots patches the four time slots: nil leaves a slot, "" clears it.
func applySlots(rec *attendance.Attendance, inMorning, outMorning, inAfternoon, outAfternoon *string) error {
	slots := []struct {
		value *string
		dst   **attendance.TimeOfDay
	}{
		{inMorning, &rec.CheckInMorning},
		{outMorning, &rec.CheckOutMorning},
		{inAfternoon, &rec.CheckInAfternoon},
		{outAfternoon, &rec.CheckOutAfternoon},
	}
	for _, s := range slots {
		if s.value == nil {
			continue
		}
		if strings.TrimSpace(*s.value) == "" {
			*s.dst = nil
			continue
		}
		t, err := attendance.ParseTimeOfDay(*s.value)
		if err != nil {
			return err
		}
		*s.dst = &t
	}

	if rec.CheckOut() != nil && rec.CheckIn() == nil {
		return attendance.ErrCheckOutWithoutIn
	}
	return nil
}

func clockPtr(t *attendance.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

// mapAttendanceToResponse converts an Attendance entity to AttendanceResponse
func mapAttendanceToResponse(att attendance.Attendance) attendance.AttendanceResponse {
	var employeeName, matricule string
	if att.EmployeeName != nil {
		employeeName = *att.EmployeeName
	}
	if att.EmployeeMatricule != nil {
		matricule = *att.EmployeeMatricule
	}

	return attendance.AttendanceResponse{
		ID:                 att.ID,
		EmployeeID:         att.EmployeeID,
		EmployeeName:       employeeName,
		EmployeeMatricule:  matricule,
		EmployeeDepartment: att.EmployeeDepartment,
		Date:               att.Date.Format("2006-01-02"),
		CheckInMorning:     clockPtr(att.CheckInMorning),
		CheckOutMorning:    clockPtr(att.CheckOutMorning),
		CheckInAfternoon:   clockPtr(att.CheckInAfternoon),
		CheckOutAfternoon:  clockPtr(att.CheckOutAfternoon),
		Status:             att.Status,
		HoursWorked:        att.HoursWorked,
		OvertimeHours:      att.OvertimeHours,
		Notes:              att.Notes,
		State:              attendance.StateOf(&att).String(),
		CreatedAt:          formatTimestamp(att.CreatedAt),
		UpdatedAt:          formatTimestamp(att.UpdatedAt),
	}
}
