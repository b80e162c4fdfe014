package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/advance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeEmployees struct {
	employee.EmployeeRepository
	active []employee.Employee
}

func (f fakeEmployees) ListActive(context.Context) ([]employee.Employee, error) { return f.active, nil }

type fakeAttendance struct {
	attendance.AttendanceRepository
	records []attendance.Attendance
}

func (f fakeAttendance) ListBetween(_ context.Context, from, to time.Time) ([]attendance.Attendance, error) {
	var out []attendance.Attendance
	for _, r := range f.records {
		if !r.Date.Before(from) && !r.Date.After(to) {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeAdvances struct {
	advance.AdvanceRepository
	totals map[string]decimal.Decimal
}

func (f fakeAdvances) TotalsBetween(context.Context, time.Time, time.Time) (map[string]decimal.Decimal, error) {
	return f.totals, nil
}

type fakeSettings struct {
	settings.SettingsService
	rate decimal.Decimal
}

func (f fakeSettings) Window(context.Context) (attendance.TimeWindow, error) {
	return attendance.DefaultTimeWindow(), nil
}

func (f fakeSettings) OvertimeRate(context.Context) (decimal.Decimal, error) { return f.rate, nil }

func day(d int) time.Time { return time.Date(2025, time.March, d, 0, 0, 0, 0, time.UTC) }

func tod(h, m int) *attendance.TimeOfDay { return &attendance.TimeOfDay{Hour: h, Minute: m} }

func newTestService() report.ReportService {
	emps := fakeEmployees{active: []employee.Employee{
		{ID: "b", Matricule: "EMP-002", FullName: "Karim Idrissi", Department: "Logistics", ContractType: employee.ContractCDD, BaseSalary: decimal.NewFromInt(3000)},
		{ID: "a", Matricule: "EMP-001", FullName: "Amina Alaoui", Department: "Production", ContractType: employee.ContractCDI, BaseSalary: decimal.NewFromInt(4000)},
	}}
	// Stored status and hours are stale on purpose; reports recompute them.
	att := fakeAttendance{records: []attendance.Attendance{
		{EmployeeID: "a", Date: day(3), CheckInMorning: tod(8, 0), CheckOutAfternoon: tod(19, 30), Status: attendance.StatusAbsent},
		{EmployeeID: "a", Date: day(4), CheckInMorning: tod(8, 40), CheckOutMorning: tod(12, 0), CheckInAfternoon: tod(13, 0), CheckOutAfternoon: tod(17, 0)},
		{EmployeeID: "z", Date: day(4), CheckInMorning: tod(8, 0)},
	}}
	adv := fakeAdvances{totals: map[string]decimal.Decimal{"a": decimal.NewFromInt(500)}}
	return NewReportService(emps, att, adv, fakeSettings{rate: decimal.NewFromInt(20)})
}

func TestDailyReport(t *testing.T) {
	svc := newTestService()

	got, err := svc.DailyReport(context.Background(), report.DailyReportRequest{Date: "2025-03-04"})
	require.NoError(t, err)

	assert.Equal(t, "08:00 +30min", got.Window)
	require.Len(t, got.Rows, 2)
	assert.Equal(t, "EMP-001", got.Rows[0].Matricule)
	assert.Equal(t, attendance.StatusLate, got.Rows[0].Status)
	assert.Equal(t, 8.33, got.Rows[0].HoursWorked)
	assert.True(t, got.Rows[0].Recorded)

	assert.Equal(t, attendance.StatusAbsent, got.Rows[1].Status)
	assert.False(t, got.Rows[1].Recorded)

	assert.Equal(t, report.DailySummary{TotalEmployees: 2, Late: 1, Absent: 1, TotalHours: 8.33}, got.Summary)
}

func TestDailyReport_DepartmentFilter(t *testing.T) {
	svc := newTestService()
	dept := "logistics"

	got, err := svc.DailyReport(context.Background(), report.DailyReportRequest{Date: "2025-03-04", Department: &dept})
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)
	assert.Equal(t, "EMP-002", got.Rows[0].Matricule)
}

func TestMonthlyReport_NetPay(t *testing.T) {
	svc := newTestService()

	got, err := svc.MonthlyReport(context.Background(), report.MonthlyReportRequest{Month: 3, Year: 2025})
	require.NoError(t, err)
	assert.Equal(t, "2025-03", got.Period)
	require.Len(t, got.Rows, 2)

	a := got.Rows[0]
	assert.Equal(t, "EMP-001", a.Matricule)
	assert.Equal(t, 1, a.DaysPresent)
	assert.Equal(t, 1, a.DaysLate)
	assert.Equal(t, 19.83, a.TotalHours)
	assert.Equal(t, 1.5, a.OvertimeHours)
	assert.Equal(t, "30.00", a.OvertimePay.StringFixed(2))
	assert.Equal(t, "500.00", a.Advances.StringFixed(2))
	assert.Equal(t, "3530.00", a.NetPay.StringFixed(2))

	b := got.Rows[1]
	assert.Zero(t, b.DaysPresent+b.DaysLate+b.DaysAbsent)
	assert.Equal(t, "3000.00", b.NetPay.StringFixed(2))

	assert.Equal(t, "6530.00", got.Summary.TotalNetPay.StringFixed(2))
	assert.Equal(t, "7000.00", got.Summary.TotalBaseSalary.StringFixed(2))
}

func TestMonthlyReport_Validation(t *testing.T) {
	svc := newTestService()
	_, err := svc.MonthlyReport(context.Background(), report.MonthlyReportRequest{Month: 13, Year: 2025})
	assert.Error(t, err)
}

func TestNetPay_CanGoNegative(t *testing.T) {
	got := NetPay(decimal.NewFromInt(1000), OvertimePay(2.5, decimal.RequireFromString("12.40")), decimal.NewFromInt(1100))
	assert.Equal(t, "-69.00", got.StringFixed(2))
}

func TestExportMonthly(t *testing.T) {
	svc := newTestService()
	req := report.MonthlyReportRequest{Month: 3, Year: 2025}

	csvFile, err := svc.ExportMonthly(context.Background(), req, report.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "payroll_202503.csv", csvFile.Filename)
	assert.True(t, bytes.HasPrefix(csvFile.Data, []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, string(csvFile.Data), "EMP-001,Amina Alaoui,Production,CDI,1,1,0,19.83,1.50,4000.00,30.00,500.00,3530.00")

	xlsxFile, err := svc.ExportMonthly(context.Background(), req, report.FormatXLSX)
	require.NoError(t, err)
	assert.Equal(t, "payroll_202503.xlsx", xlsxFile.Filename)

	f, err := excelize.OpenReader(bytes.NewReader(xlsxFile.Data))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Payroll"}, f.GetSheetList())
}

func TestExportDaily_UnsupportedFormat(t *testing.T) {
	svc := newTestService()
	_, err := svc.ExportDaily(context.Background(), report.DailyReportRequest{Date: "2025-03-04"}, report.Format("pdf"))
	assert.ErrorIs(t, err, report.ErrUnsupportedFormat)
}
