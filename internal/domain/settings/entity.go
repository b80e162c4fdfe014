package settings

import (
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

// AttendanceSettings overrides the configured time window. There is at most
// one row; when it is missing the configured defaults apply.
type AttendanceSettings struct {
	Window             attendance.TimeWindow
	OvertimeHourlyRate decimal.Decimal
	UpdatedBy          *string
	UpdatedAt          time.Time
}
