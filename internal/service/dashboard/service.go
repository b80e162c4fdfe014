package dashboard

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const recentScanLimit = 10

type DashboardServiceImpl struct {
	dashboard.DashboardRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	advanceRepo    advance.AdvanceRepository
	windows        attendance.WindowProvider
	loc            *time.Location
	now            func() time.Time
}

func NewDashboardService(
	repo dashboard.DashboardRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	advanceRepo advance.AdvanceRepository,
	windows attendance.WindowProvider,
	loc *time.Location,
) dashboard.DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	return &DashboardServiceImpl{
		DashboardRepository: repo,
		employeeRepo:        employeeRepo,
		attendanceRepo:      attendanceRepo,
		advanceRepo:         advanceRepo,
		windows:             windows,
		loc:                 loc,
		now:                 time.Now,
	}
}

// GetDashboard implements dashboard.DashboardService.
func (s *DashboardServiceImpl) GetDashboard(ctx context.Context) (dashboard.DashboardResponse, error) {
	today := attendance.DateOnly(s.now().In(s.loc))
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
	monthEnd := monthStart.AddDate(0, 1, -1)

	var (
		resp     = dashboard.DashboardResponse{Date: today.Format("2006-01-02"), MonthAdvances: decimal.Zero}
		active   []employee.Employee
		records  []attendance.Attendance
		window   attendance.TimeWindow
		recent   []attendance.Attendance
		advances map[string]decimal.Decimal
	)

	g, gCtx := errgroup.WithContext(ctx)

	// 1. Employee Summary
	g.Go(func() error {
		counts, err := s.GetEmployeeCounts(gCtx)
		if err != nil {
			return fmt.Errorf("failed to count employees: %w", err)
		}
		resp.EmployeeSummary = dashboard.EmployeeSummary{
			Total:    counts.Total,
			Active:   counts.Active,
			Inactive: counts.Inactive,
			CDI:      counts.CDI,
			CDD:      counts.CDD,
		}
		return nil
	})

	// 2. Today's attendance of active employees
	g.Go(func() error {
		var err error
		active, err = s.employeeRepo.ListActive(gCtx)
		if err != nil {
			return fmt.Errorf("failed to list active employees: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.attendanceRepo.ListBetween(gCtx, today, today)
		if err != nil {
			return fmt.Errorf("failed to list today's attendance: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		window, err = s.windows.Window(gCtx)
		return err
	})

	// 3. Advances paid this month
	g.Go(func() error {
		var err error
		advances, err = s.advanceRepo.TotalsBetween(gCtx, monthStart, monthEnd)
		if err != nil {
			return fmt.Errorf("failed to sum advances: %w", err)
		}
		return nil
	})

	// 4. Latest scans
	g.Go(func() error {
		var err error
		recent, err = s.GetRecentAttendance(gCtx, recentScanLimit)
		if err != nil {
			return fmt.Errorf("failed to get recent attendance: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return dashboard.DashboardResponse{}, err
	}

	resp.Today = todayStats(active, records, window)
	for _, amount := range advances {
		resp.MonthAdvances = resp.MonthAdvances.Add(amount)
	}

	resp.RecentScans = make([]dashboard.RecentScanItem, 0, len(recent))
	for i, rec := range recent {
		item := dashboard.RecentScanItem{
			No:     i + 1,
			Status: string(rec.Status),
			Date:   rec.Date.Format("2006-01-02"),
		}
		if rec.EmployeeName != nil {
			item.EmployeeName = *rec.EmployeeName
		}
		if rec.EmployeeMatricule != nil {
			item.Matricule = *rec.EmployeeMatricule
		}
		if in := rec.CheckIn(); in != nil {
			v := in.String()
			item.CheckIn = &v
		}
		if out := rec.CheckOut(); out != nil {
			v := out.String()
			item.CheckOut = &v
		}
		resp.RecentScans = append(resp.RecentScans, item)
	}

	return resp, nil
}

func todayStats(active []employee.Employee, records []attendance.Attendance, w attendance.TimeWindow) dashboard.TodayAttendanceStats {
	byEmployee := make(map[string]attendance.Attendance, len(records))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = rec
	}

	var stats dashboard.TodayAttendanceStats
	for _, emp := range active {
		rec, ok := byEmployee[emp.ID]
		if !ok {
			stats.NotScanned++
			continue
		}
		rec.Recompute(w)
		switch rec.Status {
		case attendance.StatusPresent:
			stats.Present++
		case attendance.StatusLate:
			stats.Late++
		default:
			stats.Absent++
		}
		if attendance.StateOf(&rec) == attendance.StateOpenCheckIn {
			stats.ClockedIn++
		}
	}

	if total := len(active); total > 0 {
		stats.PresentPercent = percent(stats.Present, total)
		stats.LatePercent = percent(stats.Late, total)
		stats.AbsentPercent = percent(stats.Absent, total)
	}
	return stats
}

func percent(n int64, total int) float64 {
	return math.Round(float64(n)/float64(total)*10000) / 100
}
