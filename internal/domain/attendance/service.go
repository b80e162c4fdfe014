package attendance

import "context"

type AttendanceService interface {
	// Scan resolves a badge code to a check-in or check-out for today.
	Scan(ctx context.Context, req ScanRequest) (ScanResponse, error)

	// Compute previews the calculator for arbitrary times.
	Compute(ctx context.Context, req ComputeRequest) (ComputeResponse, error)

	GetAttendance(ctx context.Context, id string) (AttendanceResponse, error)
	GetToday(ctx context.Context, employeeID string) (TodayResponse, error)
	ListAttendance(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)

	CreateAttendance(ctx context.Context, req CreateAttendanceRequest) (AttendanceResponse, error)
	UpdateAttendance(ctx context.Context, req UpdateAttendanceRequest) (AttendanceResponse, error)
	DeleteAttendance(ctx context.Context, id string) error
}
