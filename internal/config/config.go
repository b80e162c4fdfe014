package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/attendance"
	playvalidator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Database     DatabaseConfig     `validate:"required"`
	JWT          JWTConfig          `validate:"required"`
	App          AppConfig          `validate:"required"`
	OAuth2Google OAuth2GoogleConfig
	Storage      StorageConfig     `validate:"required"`
	Timekeeping  TimekeepingConfig `validate:"required"`
	Telegram     TelegramConfig
}

type DatabaseConfig struct {
	Host     string `validate:"required"`
	Port     int    `validate:"min=1,max=65535"`
	User     string `validate:"required"`
	Password string
	Name     string `validate:"required"`
	SSLMode  string `validate:"oneof=disable allow prefer require verify-ca verify-full"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret            string `validate:"required,min=16"`
	RefreshExpiration string `validate:"required"`
	AccessExpiration  string `validate:"required"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int    `validate:"min=1,max=65535"`
	Env            string `validate:"oneof=development staging production test"`
	Version        string
	LogLevel       string `validate:"oneof=debug info warn error"`
	FrontendURL    string `validate:"omitempty,url"`
	AllowedOrigins []string
	// AutoMigrate applies pending migrations at startup.
	AutoMigrate bool
}

func (a AppConfig) IsProduction() bool {
	return a.Env == "production"
}

// OAuth2GoogleConfig is optional; Google sign-in is off without a client ID.
type OAuth2GoogleConfig struct {
	ClientID     string
	ClientSecret string `validate:"required_with=ClientID"`
	RedirectURL  string `validate:"required_with=ClientID,omitempty,url"`
	Scopes       []string
}

func (o OAuth2GoogleConfig) Enabled() bool {
	return o.ClientID != ""
}

type StorageConfig struct {
	BasePath string `validate:"required"`
	BaseURL  string `validate:"required"`
}

// TimekeepingConfig is the default time window, used until an admin saves
// attendance settings.
type TimekeepingConfig struct {
	WorkStart            string  `validate:"required"`
	LateThresholdMinutes int     `validate:"min=0,max=240"`
	AbsentThresholdHour  float64 `validate:"gt=0,lte=24"`
	OvertimeStartHour    float64 `validate:"gt=0,lte=24"`
	OvertimeHourlyRate   decimal.Decimal
	Timezone             string `validate:"required"`
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64 `validate:"required_with=BotToken"`
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != ""
}

// Load reads .env when present; real environment variables take precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		Version:        getEnv("APP_VERSION", "dev"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS"),
	}
	if raw := getEnv("AUTO_MIGRATE", ""); raw != "" {
		config.App.AutoMigrate, err = strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid AUTO_MIGRATE: %w", err)
		}
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:            getEnv("JWT_SECRET_KEY", ""),
		RefreshExpiration: getEnv("JWT_REFRESH_EXPIRATION_TIME", "168h"),
		AccessExpiration:  getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// OAuth2 Google Configuration
	config.OAuth2Google = OAuth2GoogleConfig{
		ClientID:     getEnv("CLIENT_ID", ""),
		ClientSecret: getEnv("CLIENT_SECRET", ""),
		RedirectURL:  getEnv("REDIRECT_URL", ""),
		Scopes:       getEnvSlice("SCOPES"),
	}

	config.Storage = StorageConfig{
		BasePath: getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:  getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%d/uploads", appPort)),
	}

	// Timekeeping defaults
	lateMinutes, err := strconv.Atoi(getEnv("LATE_THRESHOLD_MINUTES", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid LATE_THRESHOLD_MINUTES: %w", err)
	}
	absentHour, err := strconv.ParseFloat(getEnv("ABSENT_THRESHOLD_HOUR", "9"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid ABSENT_THRESHOLD_HOUR: %w", err)
	}
	overtimeHour, err := strconv.ParseFloat(getEnv("OVERTIME_START_HOUR", "18"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_START_HOUR: %w", err)
	}
	overtimeRate, err := decimal.NewFromString(getEnv("OVERTIME_HOURLY_RATE", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid OVERTIME_HOURLY_RATE: %w", err)
	}

	config.Timekeeping = TimekeepingConfig{
		WorkStart:            getEnv("WORK_START", "08:00"),
		LateThresholdMinutes: lateMinutes,
		AbsentThresholdHour:  absentHour,
		OvertimeStartHour:    overtimeHour,
		OvertimeHourlyRate:   overtimeRate,
		Timezone:             getEnv("TIMEZONE", "Africa/Casablanca"),
	}

	// Telegram notifications
	var chatID int64
	if raw := getEnv("TELEGRAM_CHAT_ID", ""); raw != "" {
		chatID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
		}
	}
	config.Telegram = TelegramConfig{
		BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		ChatID:   chatID,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

var validate = playvalidator.New(playvalidator.WithRequiredStructEnabled())

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs playvalidator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on %q", fe.Namespace(), fe.Tag())
		}
		return err
	}

	if c.App.IsProduction() && c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.RefreshExpiration); err != nil {
		return fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_TIME: %w", err)
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.Timekeeping.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE: %w", err)
	}
	if c.Timekeeping.OvertimeHourlyRate.IsNegative() {
		return fmt.Errorf("OVERTIME_HOURLY_RATE must not be negative")
	}
	return nil
}

// Window is the configured default attendance time window.
func (c *Config) Window() (attendance.TimeWindow, error) {
	start, err := attendance.ParseTimeOfDay(c.Timekeeping.WorkStart)
	if err != nil {
		return attendance.TimeWindow{}, fmt.Errorf("invalid WORK_START: %w", err)
	}
	w := attendance.TimeWindow{
		StandardStart:        start,
		LateThresholdMinutes: c.Timekeeping.LateThresholdMinutes,
		AbsentThresholdHour:  c.Timekeeping.AbsentThresholdHour,
		OvertimeStartHour:    c.Timekeeping.OvertimeStartHour,
	}
	if err := w.Validate(); err != nil {
		return attendance.TimeWindow{}, err
	}
	return w, nil
}

// Location is the business time zone used for "today" and scan times.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timekeeping.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LogLevel maps LOG_LEVEL to a slog level.
func (c *Config) LogLevel() slog.Level {
	switch c.App.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string) []string {
	value := getEnv(env, "")
	if value == "" {
		return []string{}
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
