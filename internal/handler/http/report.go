package http

import (
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/attendance-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Daily attendance sheet
	GetDailyReport(w http.ResponseWriter, r *http.Request)
	ExportDailyReport(w http.ResponseWriter, r *http.Request)

	// Monthly payroll
	GetMonthlyReport(w http.ResponseWriter, r *http.Request)
	ExportMonthlyReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

func dailyReportRequest(r *http.Request) report.DailyReportRequest {
	query := r.URL.Query()
	return report.DailyReportRequest{
		Date:       query.Get("date"),
		Department: optionalQuery(query, "department"),
	}
}

// monthlyReportRequest leaves month or year at zero when unparsable so the
// request validation reports them.
func monthlyReportRequest(r *http.Request) report.MonthlyReportRequest {
	query := r.URL.Query()
	month, _ := strconv.Atoi(query.Get("month"))
	year, _ := strconv.Atoi(query.Get("year"))
	return report.MonthlyReportRequest{
		Month:      month,
		Year:       year,
		Department: optionalQuery(query, "department"),
	}
}

// GetDailyReport handles GET /reports/daily?date=YYYY-MM-DD
func (h *reportHandlerImpl) GetDailyReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.DailyReport(r.Context(), dailyReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportDailyReport handles GET /reports/daily/export?date=&format=csv|xlsx
func (h *reportHandlerImpl) ExportDailyReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.reportService.ExportDaily(r.Context(), dailyReportRequest(r), format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Data)
}

// GetMonthlyReport handles GET /reports/monthly?month=&year=
func (h *reportHandlerImpl) GetMonthlyReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.reportService.MonthlyReport(r.Context(), monthlyReportRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportMonthlyReport handles GET /reports/monthly/export?month=&year=&format=
func (h *reportHandlerImpl) ExportMonthlyReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	file, err := h.reportService.ExportMonthly(r.Context(), monthlyReportRequest(r), format)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.File(w, file.Filename, file.ContentType, file.Data)
}
