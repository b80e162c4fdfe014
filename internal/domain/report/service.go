package report

import "context"

// ReportService builds reports from stored attendance. Hours are always
// recomputed from the stored times with the current time window.
type ReportService interface {
	DailyReport(ctx context.Context, req DailyReportRequest) (DailyReport, error)
	MonthlyReport(ctx context.Context, req MonthlyReportRequest) (MonthlyReport, error)

	ExportDaily(ctx context.Context, req DailyReportRequest, format Format) (ExportFile, error)
	ExportMonthly(ctx context.Context, req MonthlyReportRequest, format Format) (ExportFile, error)
}
