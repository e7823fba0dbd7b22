package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	HTTPAddr       string
	MigrationsPath string

	// DATABASE_URL: full runtime connection string; when empty, the DB_*
	// fields below are assembled into a DSN instead.
	DatabaseURL string

	DB DBConfig

	Backend BackendConfig

	Session SessionConfig

	// AllowedOrigins is a comma-separated allowlist of browser origins
	// allowed to call the API. Example:
	//   https://app.garagebooking.example,http://localhost:5173
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// BackendConfig holds the base URLs of the garage backend API areas this
// service proxies. Each endpoint is a full URL prefix, e.g.
//
//	CAR_API_ENDPOINT=https://backend.garagebooking.example/v1/cars
type BackendConfig struct {
	CarAPIEndpoint             string
	CarRepairAPIEndpoint       string
	BookingAPIEndpoint         string
	AvailableRepairAPIEndpoint string
	UserAPIEndpoint            string
	WeatherAPIEndpoint         string
}

type SessionConfig struct {
	// Secret signs the HS256 session tokens issued at login.
	Secret string

	// TokenTTLHours is how long an issued session token stays valid.
	TokenTTLHours int

	// NotifySecret authenticates booking-change notifications pushed by the
	// backend (HMAC-SHA256 over the raw request body).
	NotifySecret string
}

func Load() Config {
	// Convenience for local dev: load variables from .env if present.
	// In production, rely on real environment variables.
	_ = godotenv.Load()

	httpAddr := os.Getenv("HTTP_ADDR")
	if httpAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			httpAddr = ":" + port
		} else {
			httpAddr = ":8082"
		}
	}

	return Config{
		AppEnv:         env("APP_ENV", "dev"),
		HTTPAddr:       httpAddr,
		MigrationsPath: os.Getenv("MIGRATIONS_PATH"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		DB: DBConfig{
			Host:     env("DB_HOST", "localhost"),
			Port:     env("DB_PORT", "5432"),
			Name:     env("DB_NAME", "frontdesk"),
			User:     env("DB_USER", "frontdesk"),
			Password: env("DB_PASSWORD", "frontdesk"),
			SSLMode:  env("DB_SSLMODE", "disable"),
		},
		Backend: BackendConfig{
			CarAPIEndpoint:             os.Getenv("CAR_API_ENDPOINT"),
			CarRepairAPIEndpoint:       os.Getenv("CAR_REPAIR_API_ENDPOINT"),
			BookingAPIEndpoint:         os.Getenv("BOOKING_API_ENDPOINT"),
			AvailableRepairAPIEndpoint: os.Getenv("AVAILABLE_REPAIR_API_ENDPOINT"),
			UserAPIEndpoint:            os.Getenv("USER_API_ENDPOINT"),
			WeatherAPIEndpoint:         os.Getenv("WEATHER_API_ENDPOINT"),
		},
		Session: SessionConfig{
			Secret:        os.Getenv("SESSION_SECRET"),
			TokenTTLHours: envInt("SESSION_TOKEN_TTL_HOURS", 24),
			NotifySecret:  os.Getenv("NOTIFY_SECRET"),
		},
		AllowedOrigins: envList("ALLOWED_ORIGINS", "http://localhost:5173"),
	}
}

func env(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n := 0
	for i := 0; i < len(v); i++ {
		if v[i] < '0' || v[i] > '9' {
			return fallback
		}
		n = n*10 + int(v[i]-'0')
	}
	return n
}

func envList(key, fallbackCSV string) []string {
	v := os.Getenv(key)
	if v == "" {
		v = fallbackCSV
	}
	var out []string
	start := 0
	for i := 0; i <= len(v); i++ {
		if i == len(v) || v[i] == ',' {
			s := v[start:i]
			start = i + 1
			// trim spaces
			for len(s) > 0 && (s[0] == ' ' || s[0] == '\t' || s[0] == '\n' || s[0] == '\r') {
				s = s[1:]
			}
			for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t' || s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
				s = s[:len(s)-1]
			}
			if s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
