package config

import (
	"os"
	"strconv"
	"strings"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string
	Environment  string
	ReadTimeout  int
	WriteTimeout int

	PlannerURL string

	DBDriver string
	DBDSN    string
	RedisURL string

	ArtifactDir string
	RulesDir    string
	RatesFile   string

	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	TrustedProxies []string

	MaxAlternatives int
	OTLPEndpoint    string
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "3000"),
		Environment:  getEnv("ENV", "development"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 30),

		PlannerURL: getEnv("PLANNER_URL", "http://localhost:3001"),

		DBDriver: getEnv("DB_DRIVER", "sqlite3"),
		DBDSN:    getEnv("DB_DSN", getEnv("PLANNER_DB_PATH", "data/db/planner.db")),
		RedisURL: getEnv("REDIS_ADDR", ""),

		ArtifactDir: getEnv("ARTIFACT_DIR", "data/artifacts"),
		RulesDir:    getEnv("RULES_DIR", ""),
		RatesFile:   getEnv("RATES_FILE", ""),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 20),
		CORSOrigins:    getEnvAsList("CORS_ORIGINS"),
		TrustedProxies: getEnvAsList("TRUSTED_PROXIES", "127.0.0.1", "::1"),

		MaxAlternatives: getEnvAsInt("MAX_ALTERNATIVES", 12),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
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

func getEnvAsFloat(key string, defaultVal float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

// getEnvAsList разбирает список через запятую; пустые элементы отбрасываются.
// Без переменной возвращается defaultVal.
func getEnvAsList(key string, defaultVal ...string) []string {
	if os.Getenv(key) == "" {
		return defaultVal
	}
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
