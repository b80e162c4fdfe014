package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/settings"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type settingsRepositoryImpl struct {
	db *database.DB
}

func NewSettingsRepository(db *database.DB) settings.SettingsRepository {
	return &settingsRepositoryImpl{db: db}
}

const settingsColumns = `
	to_char(work_start, 'HH24:MI'), late_threshold_minutes, absent_threshold_hour,
	overtime_start_hour, overtime_hourly_rate, updated_by, updated_at`

func scanSettings(row pgx.Row) (settings.AttendanceSettings, error) {
	var s settings.AttendanceSettings
	var start string
	err := row.Scan(
		&start,
		&s.Window.LateThresholdMinutes,
		&s.Window.AbsentThresholdHour,
		&s.Window.OvertimeStartHour,
		&s.OvertimeHourlyRate,
		&s.UpdatedBy,
		&s.UpdatedAt,
	)
	if err != nil {
		return settings.AttendanceSettings{}, err
	}
	if s.Window.StandardStart, err = attendance.ParseTimeOfDay(start); err != nil {
		return settings.AttendanceSettings{}, err
	}
	return s, nil
}

// Get implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Get(ctx context.Context) (settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanSettings(q.QueryRow(ctx, `SELECT `+settingsColumns+` FROM attendance_settings WHERE id = 1`))
	if err != nil {
		if err == pgx.ErrNoRows {
			return settings.AttendanceSettings{}, settings.ErrSettingsNotFound
		}
		return settings.AttendanceSettings{}, fmt.Errorf("failed to get attendance settings: %w", err)
	}
	return s, nil
}

// Upsert implements settings.SettingsRepository.
func (r *settingsRepositoryImpl) Upsert(ctx context.Context, s settings.AttendanceSettings) (settings.AttendanceSettings, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_settings (
			id, work_start, late_threshold_minutes, absent_threshold_hour,
			overtime_start_hour, overtime_hourly_rate, updated_by
		)
		VALUES (1, $1::time, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			work_start = EXCLUDED.work_start,
			late_threshold_minutes = EXCLUDED.late_threshold_minutes,
			absent_threshold_hour = EXCLUDED.absent_threshold_hour,
			overtime_start_hour = EXCLUDED.overtime_start_hour,
			overtime_hourly_rate = EXCLUDED.overtime_hourly_rate,
			updated_by = EXCLUDED.updated_by,
			updated_at = NOW()
		RETURNING ` + settingsColumns

	saved, err := scanSettings(q.QueryRow(ctx, query,
		s.Window.StandardStart.String(),
		s.Window.LateThresholdMinutes,
		s.Window.AbsentThresholdHour,
		s.Window.OvertimeStartHour,
		s.OvertimeHourlyRate,
		s.UpdatedBy,
	))
	if err != nil {
		return settings.AttendanceSettings{}, fmt.Errorf("failed to save attendance settings: %w", err)
	}
	return saved, nil
}
