package report

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/export"
	"github.com/shopspring/decimal"
)

type ReportServiceImpl struct {
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	advanceRepo    advance.AdvanceRepository
	settings       settings.SettingsService
}

func NewReportService(
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	advanceRepo advance.AdvanceRepository,
	settingsService settings.SettingsService,
) report.ReportService {
	return &ReportServiceImpl{
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		advanceRepo:    advanceRepo,
		settings:       settingsService,
	}
}

// activeEmployees returns active employees, optionally of one department,
// sorted by matricule.
func (s *ReportServiceImpl) activeEmployees(ctx context.Context, department *string) ([]employee.Employee, error) {
	all, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}

	employees := make([]employee.Employee, 0, len(all))
	for _, emp := range all {
		if department != nil && *department != "" && !strings.EqualFold(emp.Department, *department) {
			continue
		}
		employees = append(employees, emp)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].Matricule < employees[j].Matricule })
	return employees, nil
}

// DailyReport implements report.ReportService.
func (s *ReportServiceImpl) DailyReport(ctx context.Context, req report.DailyReportRequest) (report.DailyReport, error) {
	if err := req.Validate(); err != nil {
		return report.DailyReport{}, err
	}
	date, _ := time.Parse("2006-01-02", req.Date)

	w, err := s.settings.Window(ctx)
	if err != nil {
		return report.DailyReport{}, err
	}

	employees, err := s.activeEmployees(ctx, req.Department)
	if err != nil {
		return report.DailyReport{}, err
	}

	records, err := s.attendanceRepo.ListBetween(ctx, date, date)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("failed to get attendance data: %w", err)
	}
	byEmployee := make(map[string]attendance.Attendance, len(records))
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = rec
	}

	result := report.DailyReport{
		Date:   req.Date,
		Window: fmt.Sprintf("%s +%dmin", w.StandardStart, w.LateThresholdMinutes),
		Rows:   make([]report.DailyReportRow, 0, len(employees)),
	}

	for _, emp := range employees {
		row := report.DailyReportRow{
			EmployeeID: emp.ID,
			Matricule:  emp.Matricule,
			FullName:   emp.FullName,
			Department: emp.Department,
			Status:     attendance.StatusAbsent,
		}

		if rec, ok := byEmployee[emp.ID]; ok {
			rec.Recompute(w)
			row.Recorded = true
			row.CheckInMorning = clockPtr(rec.CheckInMorning)
			row.CheckOutMorning = clockPtr(rec.CheckOutMorning)
			row.CheckInAfternoon = clockPtr(rec.CheckInAfternoon)
			row.CheckOutAfternoon = clockPtr(rec.CheckOutAfternoon)
			row.Status = rec.Status
			row.HoursWorked = rec.HoursWorked
			row.OvertimeHours = rec.OvertimeHours
		}

		switch row.Status {
		case attendance.StatusPresent:
			result.Summary.Present++
		case attendance.StatusLate:
			result.Summary.Late++
		default:
			result.Summary.Absent++
		}
		result.Summary.TotalHours += row.HoursWorked
		result.Summary.TotalOvertime += row.OvertimeHours
		result.Rows = append(result.Rows, row)
	}

	result.Summary.TotalEmployees = len(employees)
	result.Summary.TotalHours = round2(result.Summary.TotalHours)
	result.Summary.TotalOvertime = round2(result.Summary.TotalOvertime)

	return result, nil
}

// MonthlyReport implements report.ReportService.
func (s *ReportServiceImpl) MonthlyReport(ctx context.Context, req report.MonthlyReportRequest) (report.MonthlyReport, error) {
	if err := req.Validate(); err != nil {
		return report.MonthlyReport{}, err
	}

	// Calculate period dates
	periodStart := time.Date(req.Year, time.Month(req.Month), 1, 0, 0, 0, 0, time.UTC)
	periodEnd := periodStart.AddDate(0, 1, -1)

	w, err := s.settings.Window(ctx)
	if err != nil {
		return report.MonthlyReport{}, err
	}
	rate, err := s.settings.OvertimeRate(ctx)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	employees, err := s.activeEmployees(ctx, req.Department)
	if err != nil {
		return report.MonthlyReport{}, err
	}

	records, err := s.attendanceRepo.ListBetween(ctx, periodStart, periodEnd)
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to get attendance data: %w", err)
	}
	byEmployee := make(map[string][]attendance.Attendance)
	for _, rec := range records {
		byEmployee[rec.EmployeeID] = append(byEmployee[rec.EmployeeID], rec)
	}

	advances, err := s.advanceRepo.TotalsBetween(ctx, periodStart, periodEnd)
	if err != nil {
		return report.MonthlyReport{}, fmt.Errorf("failed to get salary advances: %w", err)
	}

	result := report.MonthlyReport{
		Month:              req.Month,
		Year:               req.Year,
		Period:             periodStart.Format("2006-01"),
		OvertimeHourlyRate: rate,
		Rows:               make([]report.MonthlyReportRow, 0, len(employees)),
		Summary: report.MonthlySummary{
			TotalBaseSalary:  decimal.Zero,
			TotalOvertimePay: decimal.Zero,
			TotalAdvances:    decimal.Zero,
			TotalNetPay:      decimal.Zero,
		},
	}

	for _, emp := range employees {
		row := report.MonthlyReportRow{
			EmployeeID:   emp.ID,
			Matricule:    emp.Matricule,
			FullName:     emp.FullName,
			Department:   emp.Department,
			ContractType: string(emp.ContractType),
		}

		for _, rec := range byEmployee[emp.ID] {
			rec.Recompute(w)
			switch rec.Status {
			case attendance.StatusPresent:
				row.DaysPresent++
			case attendance.StatusLate:
				row.DaysLate++
			default:
				row.DaysAbsent++
			}
			row.TotalHours += rec.HoursWorked
			row.OvertimeHours += rec.OvertimeHours
		}
		row.TotalHours = round2(row.TotalHours)
		row.OvertimeHours = round2(row.OvertimeHours)

		row.BaseSalary = emp.BaseSalary
		row.OvertimePay = OvertimePay(row.OvertimeHours, rate)
		row.Advances = advances[emp.ID]
		row.NetPay = NetPay(row.BaseSalary, row.OvertimePay, row.Advances)

		result.Summary.TotalHours += row.TotalHours
		result.Summary.TotalOvertime += row.OvertimeHours
		result.Summary.TotalBaseSalary = result.Summary.TotalBaseSalary.Add(row.BaseSalary)
		result.Summary.TotalOvertimePay = result.Summary.TotalOvertimePay.Add(row.OvertimePay)
		result.Summary.TotalAdvances = result.Summary.TotalAdvances.Add(row.Advances)
		result.Summary.TotalNetPay = result.Summary.TotalNetPay.Add(row.NetPay)
		result.Rows = append(result.Rows, row)
	}

	result.Summary.TotalEmployees = len(employees)
	result.Summary.TotalHours = round2(result.Summary.TotalHours)
	result.Summary.TotalOvertime = round2(result.Summary.TotalOvertime)

	return result, nil
}

// OvertimePay is hours × rate, rounded to cents.
func OvertimePay(hours float64, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromFloat(hours).Mul(rate).Round(2)
}

// NetPay is base + overtime − advances. It may be negative when advances
// exceed the month's pay.
func NetPay(base, overtimePay, advances decimal.Decimal) decimal.Decimal {
	return base.Add(overtimePay).Sub(advances).Round(2)
}

// ExportDaily implements report.ReportService.
func (s *ReportServiceImpl) ExportDaily(ctx context.Context, req report.DailyReportRequest, format report.Format) (report.ExportFile, error) {
	daily, err := s.DailyReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	table := export.Table{
		Sheet:   "Daily",
		Title:   fmt.Sprintf("Daily attendance %s (%s)", daily.Date, daily.Window),
		Headers: []string{"Matricule", "Full name", "Department", "Morning in", "Morning out", "Afternoon in", "Afternoon out", "Status", "Hours", "Overtime"},
		Rows:    make([][]any, 0, len(daily.Rows)),
		Footer: []any{"TOTAL", nil, nil, nil, nil, nil, nil,
			fmt.Sprintf("P %d / L %d / A %d", daily.Summary.Present, daily.Summary.Late, daily.Summary.Absent),
			daily.Summary.TotalHours, daily.Summary.TotalOvertime},
	}
	for _, r := range daily.Rows {
		table.Rows = append(table.Rows, []any{
			r.Matricule, r.FullName, r.Department,
			r.CheckInMorning, r.CheckOutMorning, r.CheckInAfternoon, r.CheckOutAfternoon,
			string(r.Status), r.HoursWorked, r.OvertimeHours,
		})
	}

	return render(table, "attendance_daily", strings.ReplaceAll(daily.Date, "-", ""), format)
}

// ExportMonthly implements report.ReportService.
func (s *ReportServiceImpl) ExportMonthly(ctx context.Context, req report.MonthlyReportRequest, format report.Format) (report.ExportFile, error) {
	monthly, err := s.MonthlyReport(ctx, req)
	if err != nil {
		return report.ExportFile{}, err
	}

	table := export.Table{
		Sheet:   "Payroll",
		Title:   fmt.Sprintf("Monthly payroll %s (overtime rate %s)", monthly.Period, monthly.OvertimeHourlyRate.StringFixed(2)),
		Headers: []string{"Matricule", "Full name", "Department", "Contract", "Present", "Late", "Absent", "Hours", "Overtime", "Base salary", "Overtime pay", "Advances", "Net pay"},
		Rows:    make([][]any, 0, len(monthly.Rows)),
		Footer: []any{"TOTAL", nil, nil, nil, nil, nil, nil,
			monthly.Summary.TotalHours, monthly.Summary.TotalOvertime,
			monthly.Summary.TotalBaseSalary, monthly.Summary.TotalOvertimePay,
			monthly.Summary.TotalAdvances, monthly.Summary.TotalNetPay},
	}
	for _, r := range monthly.Rows {
		table.Rows = append(table.Rows, []any{
			r.Matricule, r.FullName, r.Department, r.ContractType,
			r.DaysPresent, r.DaysLate, r.DaysAbsent,
			r.TotalHours, r.OvertimeHours,
			r.BaseSalary, r.OvertimePay, r.Advances, r.NetPay,
		})
	}

	return render(table, "payroll", strings.ReplaceAll(monthly.Period, "-", ""), format)
}

func render(table export.Table, prefix, stamp string, format report.Format) (report.ExportFile, error) {
	var (
		data []byte
		err  error
		file report.ExportFile
	)

	switch format {
	case report.FormatXLSX:
		data, err = export.XLSX(table)
		file.ContentType = export.ContentTypeXLSX
		file.Filename = export.Filename(prefix, stamp, "xlsx")
	case report.FormatCSV:
		data, err = export.CSV(table)
		file.ContentType = export.ContentTypeCSV
		file.Filename = export.Filename(prefix, stamp, "csv")
	default:
		return report.ExportFile{}, report.ErrUnsupportedFormat
	}
	if err != nil {
		return report.ExportFile{}, fmt.Errorf("%w: %v", report.ErrReportExportFailed, err)
	}

	file.Data = data
	return file, nil
}

func clockPtr(t *attendance.TimeOfDay) *string {
	if t == nil {
		return nil
	}
	s := t.String()
	return &s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
