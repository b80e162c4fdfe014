package settings

import "context"

type SettingsRepository interface {
	// Get returns ErrSettingsNotFound when nothing was saved yet.
	Get(ctx context.Context) (AttendanceSettings, error)
	Upsert(ctx context.Context, s AttendanceSettings) (AttendanceSettings, error)
}
