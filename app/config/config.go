package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI        string
	MongoDB         string
	MongoCollection string

	RedisAddr string
	RedisDB   int

	HTTPAddr    string
	MetricsAddr string

	CacheTTL time.Duration

	LeaderStore   string // "etcd" or "redis"
	EtcdEndpoints []string
	ReplicaID     string
	LeaderKey     string
	LeaderLease   time.Duration

	SyncEnabled  bool
	SyncInterval time.Duration
}

func Load() (Config, error) {
	err := godotenv.Load()

	return Config{
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:         getEnv("MONGO_DB", "gharchive"),
		MongoCollection: getEnv("MONGO_COLLECTION", "events"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),

		HTTPAddr:    getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr: getEnv("METRICS_ADDR", ":2112"),

		CacheTTL: getEnvDuration("CACHE_TTL", 6*time.Hour),

		LeaderStore:   getEnv("LEADER_STORE", "etcd"),
		EtcdEndpoints: strings.Split(getEnv("ETCD_ENDPOINTS", "localhost:2379"), ","),
		ReplicaID:     getEnv("REPLICA_ID", "replica-1"),
		LeaderKey:     getEnv("LEADER_KEY", "activity_report_leader"),
		LeaderLease:   getEnvDuration("LEADER_LEASE", 15*time.Second),

		SyncEnabled:  getEnvBool("SYNC_ENABLED", false),
		SyncInterval: getEnvDuration("SYNC_INTERVAL", time.Hour),
	}, err
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
