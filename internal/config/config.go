package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/greenvvay/Parking/internal/domain"
)

type Config struct {
	ServerPort string
	LogLevel   string
	LogFormat  string

	FacilityName     string
	FacilityInGates  int
	FacilityOutGates int
	FacilityCapacity int
	FacilityTimezone string
	TariffFile       string
	TicketRetention  time.Duration

	DBEnabled  bool
	DBDriver   string // "pgx" or "postgres" (lib/pq)
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AWSRegion        string
	SQSEventQueueURL string
	IoTMQTTEndpoint  string
	IoTThingName     string
	LPREnabled       bool

	JWTSecret          string
	JWTExpirationHours time.Duration
	AdminUsername      string
	AdminPassword      string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisChannel  string

	OTLPEndpoint string
}

// Load reads .env when present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the environment alone.
func FromEnv() (*Config, error) {
	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "json"),

		FacilityName:     getEnv("FACILITY_NAME", "main"),
		FacilityInGates:  getEnvInt("FACILITY_IN_GATES", 2),
		FacilityOutGates: getEnvInt("FACILITY_OUT_GATES", 2),
		FacilityCapacity: getEnvInt("FACILITY_CAPACITY", 100),
		FacilityTimezone: getEnv("FACILITY_TIMEZONE", "Local"),
		TariffFile:       getEnv("TARIFF_FILE", ""),
		TicketRetention:  getEnvDuration("TICKET_RETENTION", 24*time.Hour),

		DBEnabled:  getEnvBool("DB_ENABLED", true),
		DBDriver:   getEnv("DB_DRIVER", "pgx"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		AWSRegion:        getEnv("AWS_REGION", "ap-southeast-1"),
		SQSEventQueueURL: getEnv("SQS_EVENT_QUEUE_URL", ""),
		IoTMQTTEndpoint:  getEnv("IOT_MQTT_ENDPOINT", ""),
		IoTThingName:     getEnv("IOT_THING_NAME", "gate-controller"),
		LPREnabled:       getEnvBool("LPR_ENABLED", false),

		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpirationHours: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		AdminUsername:      getEnv("ADMIN_USERNAME", ""),
		AdminPassword:      getEnv("ADMIN_PASSWORD", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisChannel:  getEnv("REDIS_CHANNEL", "parking:events"),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.FacilityInGates < 0 || c.FacilityOutGates < 0 || c.FacilityCapacity < 0 {
		return fmt.Errorf("%w: gates and capacity must not be negative", domain.ErrInvalidConfig)
	}
	switch c.DBDriver {
	case "pgx", "postgres":
	default:
		return fmt.Errorf("%w: DB_DRIVER must be pgx or postgres, got %q", domain.ErrInvalidConfig, c.DBDriver)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("%w: FACILITY_TIMEZONE: %v", domain.ErrInvalidConfig, err)
	}
	return nil
}

// FacilityID is stable for a given FACILITY_NAME so stored tariffs and
// archived events are found again after a restart.
func (c *Config) FacilityID() uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("parking:"+c.FacilityName))
}

// Location is the zone the tariff is applied in.
func (c *Config) Location() (*time.Location, error) {
	if c.FacilityTimezone == "" || c.FacilityTimezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(c.FacilityTimezone)
}

// DSN is the connection string for both pgx and lib/pq.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return fallback
	}
	return v
}
