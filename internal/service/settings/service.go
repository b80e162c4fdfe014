package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"github.com/shopspring/decimal"
)

type SettingsServiceImpl struct {
	settings.SettingsRepository
	defaults    attendance.TimeWindow
	defaultRate decimal.Decimal
	publisher   realtime.Publisher
}

// NewSettingsService falls back to defaults and defaultRate until an admin
// saves settings.
func NewSettingsService(repo settings.SettingsRepository, defaults attendance.TimeWindow, defaultRate decimal.Decimal, publisher realtime.Publisher) settings.SettingsService {
	return &SettingsServiceImpl{
		SettingsRepository: repo,
		defaults:           defaults,
		defaultRate:        defaultRate,
		publisher:          publisher,
	}
}

func (s *SettingsServiceImpl) current(ctx context.Context) (settings.AttendanceSettings, bool, error) {
	stored, err := s.SettingsRepository.Get(ctx)
	if err != nil {
		if errors.Is(err, settings.ErrSettingsNotFound) {
			return settings.AttendanceSettings{Window: s.defaults, OvertimeHourlyRate: s.defaultRate}, true, nil
		}
		return settings.AttendanceSettings{}, false, fmt.Errorf("failed to load attendance settings: %w", err)
	}
	return stored, false, nil
}

// GetSettings implements settings.SettingsService.
func (s *SettingsServiceImpl) GetSettings(ctx context.Context) (settings.SettingsResponse, error) {
	current, isDefault, err := s.current(ctx)
	if err != nil {
		return settings.SettingsResponse{}, err
	}
	return mapSettingsToResponse(current, isDefault), nil
}

// UpdateSettings implements settings.SettingsService.
func (s *SettingsServiceImpl) UpdateSettings(ctx context.Context, req settings.UpdateSettingsRequest) (settings.SettingsResponse, error) {
	if err := req.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	w := req.Window()
	if err := w.Validate(); err != nil {
		return settings.SettingsResponse{}, err
	}

	next := settings.AttendanceSettings{
		Window:             w,
		OvertimeHourlyRate: req.OvertimeHourlyRate,
	}
	if sess, ok := session.FromContext(ctx); ok {
		next.UpdatedBy = &sess.UserID
	}

	saved, err := s.SettingsRepository.Upsert(ctx, next)
	if err != nil {
		return settings.SettingsResponse{}, fmt.Errorf("failed to save attendance settings: %w", err)
	}

	if err := s.publisher.Publish(ctx, realtime.NewChange(realtime.TableSettings, realtime.ActionUpdate, "1")); err != nil {
		slog.Warn("failed to publish settings change", "error", err)
	}

	return mapSettingsToResponse(saved, false), nil
}

// Window implements attendance.WindowProvider.
func (s *SettingsServiceImpl) Window(ctx context.Context) (attendance.TimeWindow, error) {
	current, _, err := s.current(ctx)
	if err != nil {
		return attendance.TimeWindow{}, err
	}
	return current.Window, nil
}

// OvertimeRate implements settings.SettingsService.
func (s *SettingsServiceImpl) OvertimeRate(ctx context.Context) (decimal.Decimal, error) {
	current, _, err := s.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return current.OvertimeHourlyRate, nil
}

func mapSettingsToResponse(s settings.AttendanceSettings, isDefault bool) settings.SettingsResponse {
	cutoff := s.Window.LateCutoff()
	cutoffMinutes := int(cutoff*60 + 0.5)

	resp := settings.SettingsResponse{
		WorkStart:            s.Window.StandardStart.String(),
		LateThresholdMinutes: s.Window.LateThresholdMinutes,
		LateCutoff:           attendance.TimeOfDay{Hour: cutoffMinutes / 60, Minute: cutoffMinutes % 60}.String(),
		AbsentThresholdHour:  s.Window.AbsentThresholdHour,
		OvertimeStartHour:    s.Window.OvertimeStartHour,
		OvertimeHourlyRate:   s.OvertimeHourlyRate,
		IsDefault:            isDefault,
	}
	if !s.UpdatedAt.IsZero() {
		updatedAt := s.UpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &updatedAt
	}
	return resp
}
