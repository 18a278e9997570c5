package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	MySQLDSNs        []string // one DSN per shard
	RedisAddr        string
	KafkaBrokers     []string
	KafkaTopic       string
	KafkaGroupID     string
	JWTSecret        string
	TokenPrefix      string // clients send "token: <prefix>_<jwt>"
	CacheTTL         time.Duration
	RateLimit        float64
	RateBurst        int
	MigrationRetries int
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8083"),
		MySQLDSNs:        splitList(getEnv("MYSQL_DSNS", "root:@tcp(127.0.0.1:3306)/pricing-db?parseTime=true")),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:     getKafkaBrokerURLs(),
		KafkaTopic:       getEnv("KAFKA_TOPIC", "pricing-topic"),
		KafkaGroupID:     getEnv("KAFKA_GROUP_ID", "pricing-service-group"),
		JWTSecret:        getEnv("JWT_SECRET", "secret"),
		TokenPrefix:      getEnv("TOKEN_PREFIX", "Bearer"),
		CacheTTL:         getEnvDuration("CACHE_TTL", 10*time.Minute),
		RateLimit:        getEnvFloat("RATE_LIMIT", 10),
		RateBurst:        getEnvInt("RATE_BURST", 30),
		MigrationRetries: getEnvInt("MIGRATION_RETRIES", 3),
	}
}

func getEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if i, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return i
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultVal
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
