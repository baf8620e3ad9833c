package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port       string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret        string
	RefreshJWTSecret string
	AccessTTL        time.Duration
	RefreshTTL       time.Duration

	AdminEmail    string
	AdminPassword string
	AdminFullName string

	RedisAddr    string
	QueueBackend string // "redis" or "memory"
	GradingQueue string

	GraderURL         string
	GraderAPIKey      string
	GraderSkip        bool
	GradingTimeout    time.Duration
	CallbackSecret    string // shared secret for POST /grading/callback
	CheckinRatePerMin int
}

func Load() *Config {
	return &Config{
		Port:       getenv("PORT", "8080"),
		DBHost:     getenv("DB_HOST", "localhost"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBUser:     getenv("DB_USER", "postgres"),
		DBPassword: getenv("DB_PASSWORD", "postgres"),
		DBName:     getenv("DB_NAME", "academy_db"),
		DBSSLMode:  getenv("DB_SSLMODE", "disable"),

		JWTSecret:        getenv("JWT_SECRET", "supersecret_change_me"),
		RefreshJWTSecret: getenv("REFRESH_JWT_SECRET", getenv("JWT_SECRET", "supersecret_change_me")),
		AccessTTL:        durationEnv("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTTL:       durationEnv("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		AdminEmail:    getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminPassword: getenv("ADMIN_PASSWORD", "admin123"),
		AdminFullName: getenv("ADMIN_FULL_NAME", "Administrator"),

		RedisAddr:    getenv("REDIS_ADDR", "localhost:6379"),
		QueueBackend: getenv("QUEUE_BACKEND", "redis"),
		GradingQueue: getenv("GRADING_QUEUE", "homework:grading"),

		GraderURL:         getenv("GRADER_URL", "http://localhost:8000"),
		GraderAPIKey:      getenv("GRADER_API_KEY", ""),
		GraderSkip:        boolEnv("GRADER_SKIP", false),
		GradingTimeout:    durationEnv("GRADING_TIMEOUT", 2*time.Minute),
		CallbackSecret:    getenv("GRADING_CALLBACK_SECRET", ""),
		CheckinRatePerMin: intEnv("CHECKIN_RATE_PER_MIN", 60),
	}
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using fallback %s", key, err, fallback)
			return fallback
		}
		return d
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "TRUE":
			return true
		case "0", "false", "FALSE":
			return false
		}
		log.Printf("invalid bool for %s, using fallback %v", key, fallback)
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid int for %s, using fallback %d", key, fallback)
	}
	return fallback
}
