package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "VROOMX"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv = "VROOMX_APP_ENV"
	EnvPort   = "VROOMX_APP_PORT"
	EnvDBDSN  = "VROOMX_DB_DSN"
	EnvDBHost = "VROOMX_DB_HOST"
	EnvDBUser = "VROOMX_DB_USER"
	EnvDBName = "VROOMX_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"VROOMX_APP_ENV" required:"true"`
	Port         string `envconfig:"VROOMX_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"VROOMX_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"VROOMX_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"VROOMX_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"VROOMX_DB_DSN"`
	Driver string `envconfig:"VROOMX_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"VROOMX_DB_HOST"`
	LegacyPort     int    `envconfig:"VROOMX_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"VROOMX_DB_USER"`
	LegacyPassword string `envconfig:"VROOMX_DB_PASSWORD"`
	LegacyName     string `envconfig:"VROOMX_DB_NAME"`
	LegacySSLMode  string `envconfig:"VROOMX_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"VROOMX_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"VROOMX_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"VROOMX_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"VROOMX_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"VROOMX_REDIS_URL"`
	Address      string        `envconfig:"VROOMX_REDIS_ADDR"`
	Password     string        `envconfig:"VROOMX_REDIS_PASSWORD"`
	DB           int           `envconfig:"VROOMX_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"VROOMX_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"VROOMX_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"VROOMX_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"VROOMX_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"VROOMX_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type RateLimitConfig struct {
	DispatchWindow  time.Duration `envconfig:"VROOMX_RATE_LIMIT_DISPATCH_WINDOW" default:"1m"`
	DispatchIPLimit int           `envconfig:"VROOMX_RATE_LIMIT_DISPATCH_IP_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"VROOMX_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"VROOMX_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"VROOMX_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"VROOMX_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DispatchTopic        string `envconfig:"VROOMX_PUBSUB_DISPATCH_TOPIC" default:"vx-dispatch-events"`
	DispatchSubscription string `envconfig:"VROOMX_PUBSUB_DISPATCH_SUBSCRIPTION"`
	SettlementTopic      string `envconfig:"VROOMX_PUBSUB_SETTLEMENT_TOPIC" default:"vx-settlement-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"VROOMX_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"VROOMX_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"VROOMX_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
