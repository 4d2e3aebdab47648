package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Lockout  LockoutConfig
	Alert    AlertConfig
	Family   FamilyConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	AllowedOrigins []string
	TrustedProxies []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

type AuthConfig struct {
	JWTSecret            string
	SessionExpiry        time.Duration
	CleanupInterval      time.Duration
	LoginRequestsPerMin  int
	TimingDelayBaseMs    int
	TimingDelayRandomMs  int
	CookieDomain         string
	CookieSecure         bool
	CookieSameSite       string
	RevocationFailClosed bool
}

// LockoutConfig holds the progressive PIN lockout thresholds
type LockoutConfig struct {
	MaxAttemptsLevel1 int
	CooldownLevel1    time.Duration
	MaxAttemptsLevel2 int
	CooldownLevel2    time.Duration
	CleanupInterval   time.Duration
}

// AlertConfig controls security alert emails. Alerts are off when ToAddress is empty.
type AlertConfig struct {
	AWSRegion   string
	FromAddress string
	ToAddress   string
}

// FamilyConfig seeds the family credential row at startup. Seeding is
// skipped when either PIN is empty.
type FamilyConfig struct {
	Name      string
	Phone     string
	ViewerPIN string
	EditorPIN string
}

// Enabled reports whether both PINs are configured
func (c FamilyConfig) Enabled() bool {
	return c.ViewerPIN != "" && c.EditorPIN != ""
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "family_album"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			AllowedOrigins: parseAllowedOrigins(env),
			TrustedProxies: getEnvAsList("TRUSTED_PROXIES"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			JWTSecret:            jwtSecret,
			SessionExpiry:        getEnvAsDuration("SESSION_EXPIRY", 7*24*time.Hour),
			CleanupInterval:      getEnvAsDuration("TOKEN_CLEANUP_INTERVAL", 1*time.Hour),
			LoginRequestsPerMin:  getEnvAsInt("LOGIN_REQUESTS_PER_MINUTE", 20),
			TimingDelayBaseMs:    getEnvAsInt("TIMING_DELAY_BASE_MS", 200),
			TimingDelayRandomMs:  getEnvAsInt("TIMING_DELAY_RANDOM_MS", 100),
			CookieDomain:         getEnv("COOKIE_DOMAIN", ""),
			CookieSecure:         getEnvAsBool("COOKIE_SECURE", env == "production"),
			CookieSameSite:       getEnv("COOKIE_SAMESITE", "strict"),
			RevocationFailClosed: getEnvAsBool("REVOCATION_FAIL_CLOSED", env == "production"),
		},
		Lockout: LockoutConfig{
			MaxAttemptsLevel1: getEnvAsInt("LOCKOUT_MAX_ATTEMPTS_LEVEL1", 3),
			CooldownLevel1:    getEnvAsDuration("LOCKOUT_COOLDOWN_LEVEL1", 10*time.Minute),
			MaxAttemptsLevel2: getEnvAsInt("LOCKOUT_MAX_ATTEMPTS_LEVEL2", 6),
			CooldownLevel2:    getEnvAsDuration("LOCKOUT_COOLDOWN_LEVEL2", 24*time.Hour),
			CleanupInterval:   getEnvAsDuration("LOCKOUT_CLEANUP_INTERVAL", 1*time.Hour),
		},
		Alert: AlertConfig{
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("ALERT_FROM_ADDRESS", ""),
			ToAddress:   getEnv("ALERT_TO_ADDRESS", ""),
		},
		Family: FamilyConfig{
			Name:      getEnv("FAMILY_NAME", "Family"),
			Phone:     getEnv("FAMILY_PHONE", ""),
			ViewerPIN: getEnv("FAMILY_VIEWER_PIN", ""),
			EditorPIN: getEnv("FAMILY_EDITOR_PIN", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	// Validate JWT secret strength
	if err := validateJWTSecret(jwtSecret, env); err != nil {
		return nil, err
	}

	if err := cfg.Lockout.validate(); err != nil {
		return nil, err
	}

	if cfg.Alert.ToAddress != "" && cfg.Alert.FromAddress == "" {
		return nil, fmt.Errorf("ALERT_FROM_ADDRESS is required when ALERT_TO_ADDRESS is set")
	}

	if (cfg.Family.ViewerPIN == "") != (cfg.Family.EditorPIN == "") {
		return nil, fmt.Errorf("FAMILY_VIEWER_PIN and FAMILY_EDITOR_PIN must be set together")
	}

	return cfg, nil
}

// validate rejects thresholds that would make level 2 unreachable or cooldowns meaningless
func (c *LockoutConfig) validate() error {
	if c.MaxAttemptsLevel1 < 1 {
		return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS_LEVEL1 must be at least 1")
	}
	if c.MaxAttemptsLevel2 < c.MaxAttemptsLevel1 {
		return fmt.Errorf("LOCKOUT_MAX_ATTEMPTS_LEVEL2 (%d) must not be below LOCKOUT_MAX_ATTEMPTS_LEVEL1 (%d)",
			c.MaxAttemptsLevel2, c.MaxAttemptsLevel1)
	}
	if c.CooldownLevel1 <= 0 || c.CooldownLevel2 <= 0 {
		return fmt.Errorf("lockout cooldowns must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("LOCKOUT_CLEANUP_INTERVAL must be positive")
	}
	return nil
}

// validateJWTSecret enforces minimum security standards for JWT secret
func validateJWTSecret(secret, env string) error {
	// Minimum length based on environment
	minLength := 16
	if env == "production" {
		minLength = 32
	}

	if len(secret) < minLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters in %s environment (got %d)",
			minLength, env, len(secret))
	}

	weakSecrets := []string{
		"secret", "test", "password", "12345", "changeme",
		"admin", "root", "default", "example",
	}

	secretLower := strings.ToLower(secret)
	for _, weak := range weakSecrets {
		if secretLower == weak {
			return fmt.Errorf("JWT_SECRET cannot be a common weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func getEnvAsList(key string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	return values
}

func parseAllowedOrigins(env string) []string {
	if env == "production" {
		return getEnvAsList("ALLOWED_ORIGINS")
	}

	// Development: allow localhost variants
	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://localhost:5173", // Vite default
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
		"http://127.0.0.1:5173",
	}
}
