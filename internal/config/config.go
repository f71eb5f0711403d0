package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout int
	Timeout     int
	Prefix      string
}

type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	Region          string
	Prefix          string
}

// ReferenceConfig locates the three reference workbooks.
type ReferenceConfig struct {
	AdvisorsFile      string
	ObligationsFile   string
	PaymentPointsFile string
	AliasesFile       string
	TTL               time.Duration
	RefreshSchedule   string
}

type ReceiptsConfig struct {
	Driver  string // local or s3
	Dir     string
	BaseURL string
	LinkTTL time.Duration
}

type MirrorConfig struct {
	Enabled bool
	Table   string
}

type SessionConfig struct {
	Driver string // memory or redis
	TTL    time.Duration
}

type AppConfig struct {
	Port      string
	LogLevel  string
	LogFormat string
	DataDir   string

	Reference       ReferenceConfig
	LedgerPath      string
	Receipts        ReceiptsConfig
	Mirror          MirrorConfig
	Sessions        SessionConfig
	RequireCampaign bool

	Postgres PostgresConfig
	Redis    RedisConfig
	S3       S3Config
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustAtoi(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		logrus.Fatalf("invalid int value %q: %v", s, err)
	}
	return i
}

func mustBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		logrus.Fatalf("invalid bool value %q: %v", s, err)
	}
	return b
}

func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		logrus.Fatalf("invalid duration value %q: %v", s, err)
	}
	return d
}

func Load() AppConfig {
	dataDir := getenv("APP_DATA_DIR", "./data")
	inData := func(name string) string { return filepath.Join(dataDir, name) }

	return AppConfig{
		Port:      getenv("APP_PORT", "8010"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "text"),
		DataDir:   dataDir,
		Reference: ReferenceConfig{
			AdvisorsFile:      getenv("REF_ADVISORS_FILE", inData("HC_Carteras_propias.xlsx")),
			ObligationsFile:   getenv("REF_OBLIGATIONS_FILE", inData("Consolidado_obligaciones_carteras_propias.xlsx")),
			PaymentPointsFile: getenv("REF_PAYMENT_POINTS_FILE", inData("Bancos_carteras_propias.xlsx")),
			AliasesFile:       getenv("REF_ALIASES_FILE", ""),
			TTL:               mustDuration(getenv("REF_TTL", "5m")),
			RefreshSchedule:   getenv("REF_REFRESH_SCHEDULE", ""),
		},
		LedgerPath: getenv("LEDGER_PATH", inData("payment_register.csv")),
		Receipts: ReceiptsConfig{
			Driver:  getenv("RECEIPTS_DRIVER", "local"),
			Dir:     getenv("RECEIPTS_DIR", inData("registered_payments")),
			BaseURL: getenv("RECEIPTS_BASE_URL", ""),
			LinkTTL: mustDuration(getenv("RECEIPTS_LINK_TTL", "15m")),
		},
		Mirror: MirrorConfig{
			Enabled: mustBool(getenv("MIRROR_ENABLED", "false")),
			Table:   getenv("MIRROR_TABLE", "payment_register"),
		},
		Sessions: SessionConfig{
			Driver: getenv("SESSIONS_DRIVER", "memory"),
			TTL:    mustDuration(getenv("SESSIONS_TTL", "8h")),
		},
		RequireCampaign: mustBool(getenv("REQUIRE_CAMPAIGN", "false")),
		Postgres: PostgresConfig{
			Host:     getenv("PG_HOST", "127.0.0.1"),
			Port:     mustAtoi(getenv("PG_PORT", "5432")),
			User:     getenv("PG_USER", "root"),
			Password: getenv("PG_PASSWORD", ""),
			DBName:   getenv("PG_DB", "payments"),
			SSLMode:  getenv("PG_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:        getenv("REDIS_ADDR", "127.0.0.1:6379"),
			Password:    getenv("REDIS_PASSWORD", ""),
			DB:          mustAtoi(getenv("REDIS_DB", "0")),
			MaxRetries:  mustAtoi(getenv("REDIS_MAX_RETRIES", "5")),
			DialTimeout: mustAtoi(getenv("REDIS_DIAL_TIMEOUT", "10")),
			Timeout:     mustAtoi(getenv("REDIS_TIMEOUT", "5")),
			Prefix:      getenv("REDIS_PREFIX", "payments_register_"),
		},
		S3: S3Config{
			Endpoint:        getenv("S3_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getenv("S3_ACCESS_KEY", "minio"),
			SecretAccessKey: getenv("S3_SECRET_KEY", "minio123"),
			Bucket:          getenv("S3_BUCKET", "receipts"),
			Region:          getenv("S3_REGION", "us-east-1"),
			UseSSL:          mustBool(getenv("S3_USE_SSL", "false")),
			Prefix:          getenv("S3_PREFIX", ""),
		},
	}
}
