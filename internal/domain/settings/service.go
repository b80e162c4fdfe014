package settings

import (
	"context"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/shopspring/decimal"
)

type SettingsService interface {
	GetSettings(ctx context.Context) (SettingsResponse, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (SettingsResponse, error)

	// Window and OvertimeRate are what every consumer of the calculator reads.
	Window(ctx context.Context) (attendance.TimeWindow, error)
	OvertimeRate(ctx context.Context) (decimal.Decimal, error)
}
