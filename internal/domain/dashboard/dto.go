package dashboard

import "github.com/shopspring/decimal"

// DashboardResponse is the combined response for the main dashboard endpoint
type DashboardResponse struct {
	Date            string               `json:"date"`
	EmployeeSummary EmployeeSummary      `json:"employee_summary"`
	Today           TodayAttendanceStats `json:"today"`
	MonthAdvances   decimal.Decimal      `json:"month_advances"`
	RecentScans     []RecentScanItem     `json:"recent_scans"`
}

// EmployeeSummary counts employees by contract and activity.
type EmployeeSummary struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
	CDI      int64 `json:"cdi"`
	CDD      int64 `json:"cdd"`
}

// TodayAttendanceStats is today's attendance for active employees. NotScanned
// employees have no record yet; ClockedIn have an open record.
type TodayAttendanceStats struct {
	Present        int64   `json:"present"`
	Late           int64   `json:"late"`
	Absent         int64   `json:"absent"`
	NotScanned     int64   `json:"not_scanned"`
	ClockedIn      int64   `json:"clocked_in"`
	PresentPercent float64 `json:"present_percent"`
	LatePercent    float64 `json:"late_percent"`
	AbsentPercent  float64 `json:"absent_percent"`
}

type RecentScanItem struct {
	No           int     `json:"no"`
	EmployeeName string  `json:"employee_name"`
	Matricule    string  `json:"matricule"`
	Status       string  `json:"status"`
	CheckIn      *string `json:"check_in,omitempty"`  // HH:MM
	CheckOut     *string `json:"check_out,omitempty"` // HH:MM
	Date         string  `json:"date"`
}
