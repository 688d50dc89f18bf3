package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Signup        SignupConfig
	Bootstrap     BootstrapConfig
	FeatureFlags  FeatureFlagsConfig
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
	Env          string   `envconfig:"GYMSTACK_APP_ENV" required:"true"`
	Port         string   `envconfig:"GYMSTACK_APP_PORT" required:"true"`
	LogLevel     string   `envconfig:"GYMSTACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"GYMSTACK_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"GYMSTACK_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"GYMSTACK_DB_DSN"`
	Driver string `envconfig:"GYMSTACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GYMSTACK_DB_HOST"`
	LegacyPort     int    `envconfig:"GYMSTACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GYMSTACK_DB_USER"`
	LegacyPassword string `envconfig:"GYMSTACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"GYMSTACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"GYMSTACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GYMSTACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GYMSTACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GYMSTACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GYMSTACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GYMSTACK_REDIS_URL" required:"true"`
	Password     string        `envconfig:"GYMSTACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"GYMSTACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GYMSTACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GYMSTACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GYMSTACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GYMSTACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GYMSTACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"GYMSTACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"GYMSTACK_JWT_ISSUER" default:"gymstack"`
	ExpirationMinutes int    `envconfig:"GYMSTACK_JWT_EXPIRATION_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GYMSTACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GYMSTACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GYMSTACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GYMSTACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GYMSTACK_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GYMSTACK_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"GYMSTACK_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"GYMSTACK_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow       time.Duration `envconfig:"GYMSTACK_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit   int           `envconfig:"GYMSTACK_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit      int           `envconfig:"GYMSTACK_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type SignupConfig struct {
	TrialDays int `envconfig:"GYMSTACK_SIGNUP_TRIAL_DAYS" default:"30"`
}

// BootstrapConfig seeds the platform super admin on startup. The password
// is hashed at runtime, so it cannot live in a SQL seed migration.
type BootstrapConfig struct {
	AdminEmail    string `envconfig:"GYMSTACK_ADMIN_EMAIL" default:"admin@gymstack.io"`
	AdminPassword string `envconfig:"GYMSTACK_ADMIN_PASSWORD"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GYMSTACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GYMSTACK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.Driver == "sqlite" {
		return fmt.Errorf("%s is required when %s=sqlite", EnvDBDSN, "GYMSTACK_DB_DRIVER")
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
