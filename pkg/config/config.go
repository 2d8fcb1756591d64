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
	Gateway      GatewayConfig
	Sendgrid     SendgridConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"CAREERFORGE_APP_ENV" required:"true"`
	Port         string `envconfig:"CAREERFORGE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAREERFORGE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAREERFORGE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAREERFORGE_DB_DSN"`
	Driver string `envconfig:"CAREERFORGE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAREERFORGE_DB_HOST"`
	LegacyPort     int    `envconfig:"CAREERFORGE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAREERFORGE_DB_USER"`
	LegacyPassword string `envconfig:"CAREERFORGE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAREERFORGE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAREERFORGE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAREERFORGE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAREERFORGE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAREERFORGE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAREERFORGE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAREERFORGE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAREERFORGE_REDIS_ADDR"`
	Password     string        `envconfig:"CAREERFORGE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAREERFORGE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAREERFORGE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAREERFORGE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAREERFORGE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAREERFORGE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAREERFORGE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// GatewayConfig configures the payment gateway integration. The redirect
// paths are part of the observable contract with the frontend pages.
type GatewayConfig struct {
	BaseURL         string        `envconfig:"CAREERFORGE_GATEWAY_BASE_URL"`
	APIKey          string        `envconfig:"CAREERFORGE_GATEWAY_API_KEY"`
	MerchantID      string        `envconfig:"CAREERFORGE_GATEWAY_MERCHANT_ID"`
	Timeout         time.Duration `envconfig:"CAREERFORGE_GATEWAY_TIMEOUT" default:"15s"`
	SuccessPath     string        `envconfig:"CAREERFORGE_GATEWAY_SUCCESS_PATH" default:"/services/payment/success"`
	FailurePath     string        `envconfig:"CAREERFORGE_GATEWAY_FAILURE_PATH" default:"/services/payment/failure"`
	WebhookDedupTTL time.Duration `envconfig:"CAREERFORGE_GATEWAY_WEBHOOK_DEDUP_TTL" default:"24h"`
}

type SendgridConfig struct {
	APIKey      string `envconfig:"CAREERFORGE_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"CAREERFORGE_SENDGRID_FROM_EMAIL"`
	AdminEmail  string `envconfig:"CAREERFORGE_SENDGRID_ADMIN_EMAIL"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAREERFORGE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAREERFORGE_AUTO_MIGRATE" default:"false"`
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
