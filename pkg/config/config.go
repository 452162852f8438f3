package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	FeatureFlags FeatureFlagsConfig
	Eventing     EventingConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	RateLimit    RateLimitConfig
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
	Env          string `envconfig:"PALABRES_APP_ENV" required:"true"`
	Port         string `envconfig:"PALABRES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PALABRES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PALABRES_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"PALABRES_DB_DSN"`
	Driver string `envconfig:"PALABRES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PALABRES_DB_HOST"`
	LegacyPort     int    `envconfig:"PALABRES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PALABRES_DB_USER"`
	LegacyPassword string `envconfig:"PALABRES_DB_PASSWORD"`
	LegacyName     string `envconfig:"PALABRES_DB_NAME"`
	LegacySSLMode  string `envconfig:"PALABRES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PALABRES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PALABRES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PALABRES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PALABRES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PALABRES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PALABRES_REDIS_ADDR"`
	Password     string        `envconfig:"PALABRES_REDIS_PASSWORD"`
	DB           int           `envconfig:"PALABRES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PALABRES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PALABRES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PALABRES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PALABRES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PALABRES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"PALABRES_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"PALABRES_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"PALABRES_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PALABRES_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"PALABRES_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"PALABRES_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"PALABRES_PUBSUB_NOTIFICATION_TOPIC" default:"palabres-notification-events"`
	NotificationSubscription string `envconfig:"PALABRES_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type RateLimitConfig struct {
	RegisterWindow     time.Duration `envconfig:"PALABRES_RATE_LIMIT_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"PALABRES_RATE_LIMIT_REGISTER_IP" default:"20"`
	RegisterEmailLimit int           `envconfig:"PALABRES_RATE_LIMIT_REGISTER_EMAIL" default:"5"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PALABRES_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PALABRES_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PALABRES_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
