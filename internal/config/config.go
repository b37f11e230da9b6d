package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/absensi-backend-go/internal/pkg/timeofday"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Redis      RedisConfig
	Attendance AttendanceConfig
}

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	Timezone       string
	Location       *time.Location
	AllowedOrigins []string
}

// RedisConfig holds the revocation store connection. An empty Addr keeps
// revoked tokens in process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AttendanceConfig is the clock-in/clock-out policy. It is read once at
// startup and never mutated afterwards.
type AttendanceConfig struct {
	CheckIn                timeofday.Window
	CheckOut               timeofday.Window
	CheckOutWithoutCheckIn timeofday.Window
	ServerGeofence         bool
	OfficesFile            string
	Offices                []geo.Office
	RatePerMinute          int
	RateBurst              int
}

// DefaultOffices is used when no office file exists.
var DefaultOffices = []geo.Office{
	{ID: "1", Name: "SD NEGERI 18 PAREPARE", Latitude: -4.01329, Longitude: 119.62596, RadiusMeters: 100},
	{ID: "2", Name: "BERINGIN", Latitude: -4.03630, Longitude: 119.63229, RadiusMeters: 100},
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded, using process environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "absensi"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: autoMigrate,
	}

	// Redis configuration
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	config.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       redisDB,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	timezone := getEnv("APP_TIMEZONE", "Asia/Makassar")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		Timezone:       timezone,
		Location:       location,
		AllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "8h"),
	}

	// Attendance configuration
	attendance, err := loadAttendance()
	if err != nil {
		return nil, err
	}
	config.Attendance = attendance

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadAttendance() (AttendanceConfig, error) {
	var cfg AttendanceConfig
	var err error

	cfg.CheckIn, err = loadWindow("ATTENDANCE_CHECKIN", "06:30", "09:00")
	if err != nil {
		return cfg, err
	}
	cfg.CheckOut, err = loadWindow("ATTENDANCE_CHECKOUT", "15:00", "23:59")
	if err != nil {
		return cfg, err
	}
	cfg.CheckOutWithoutCheckIn, err = loadWindow("ATTENDANCE_CHECKOUT_NO_CHECKIN", "15:00", "23:59")
	if err != nil {
		return cfg, err
	}

	cfg.ServerGeofence, err = strconv.ParseBool(getEnv("ATTENDANCE_SERVER_GEOFENCE", "true"))
	if err != nil {
		return cfg, fmt.Errorf("invalid ATTENDANCE_SERVER_GEOFENCE: %w", err)
	}

	cfg.RatePerMinute, err = strconv.Atoi(getEnv("ATTENDANCE_RATE_PER_MINUTE", "6"))
	if err != nil {
		return cfg, fmt.Errorf("invalid ATTENDANCE_RATE_PER_MINUTE: %w", err)
	}
	cfg.RateBurst, err = strconv.Atoi(getEnv("ATTENDANCE_RATE_BURST", "3"))
	if err != nil {
		return cfg, fmt.Errorf("invalid ATTENDANCE_RATE_BURST: %w", err)
	}

	cfg.OfficesFile = getEnv("OFFICE_LOCATIONS_FILE", "configs/offices.yaml")
	cfg.Offices, err = LoadOffices(cfg.OfficesFile)
	if err != nil {
		return cfg, err
	}

	return cfg, nil
}

func loadWindow(prefix, defaultStart, defaultEnd string) (timeofday.Window, error) {
	start := getEnv(prefix+"_START", defaultStart)
	end := getEnv(prefix+"_END", defaultEnd)
	w, err := timeofday.NewWindow(start, end)
	if err != nil {
		return timeofday.Window{}, fmt.Errorf("invalid %s_START/%s_END: %w", prefix, prefix, err)
	}
	return w, nil
}

type officesFile struct {
	Offices []geo.Office `yaml:"offices"`
}

// LoadOffices reads the office list from a YAML file. A missing file yields
// DefaultOffices.
func LoadOffices(path string) ([]geo.Office, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			slog.Warn("office locations file not found, using built-in offices", "path", path)
			offices := make([]geo.Office, len(DefaultOffices))
			copy(offices, DefaultOffices)
			return offices, nil
		}
		return nil, fmt.Errorf("read office locations: %w", err)
	}

	var file officesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse office locations: %w", err)
	}
	if err := validateOffices(file.Offices); err != nil {
		return nil, fmt.Errorf("validate office locations: %w", err)
	}
	return file.Offices, nil
}

func validateOffices(offices []geo.Office) error {
	if len(offices) == 0 {
		return geo.ErrNoOffices
	}
	ids := make(map[string]bool)
	for i, o := range offices {
		if o.ID == "" {
			return fmt.Errorf("office[%d]: id is required", i)
		}
		if ids[o.ID] {
			return fmt.Errorf("office[%d]: duplicate id %q", i, o.ID)
		}
		ids[o.ID] = true
		if o.Name == "" {
			return fmt.Errorf("office[%d]: name is required", i)
		}
		if err := o.Coordinate().Validate(); err != nil {
			return fmt.Errorf("office[%d]: %w", i, err)
		}
		if !(o.RadiusMeters > 0) {
			return fmt.Errorf("office[%d]: radius_meters must be positive", i)
		}
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}
	if c.Attendance.RatePerMinute <= 0 || c.Attendance.RateBurst <= 0 {
		return fmt.Errorf("ATTENDANCE_RATE_PER_MINUTE and ATTENDANCE_RATE_BURST must be positive")
	}
	if err := validateOffices(c.Attendance.Offices); err != nil {
		return err
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
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

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
