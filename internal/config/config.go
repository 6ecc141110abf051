package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DatabaseDSN            string `env:"DATABASE_DSN"`
	DBUser                 string `env:"DB_USER"`
	DBPassword             string `env:"DB_PASSWORD"`
	DBHost                 string `env:"DB_HOST"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	AutoMigrate            bool   `env:"AUTO_MIGRATE" envDefault:"true"`

	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	SessionCookie string        `env:"SESSION_COOKIE" envDefault:"vm_session"`
	CookieSecure  bool          `env:"COOKIE_SECURE" envDefault:"false"`
	BcryptCost    int           `env:"BCRYPT_COST" envDefault:"10"`

	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`
	CredentialsFile   string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	StorageBucket     string `env:"STORAGE_BUCKET"`
	UploadMaxBytes    int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	ImageMaxDimension int    `env:"IMAGE_MAX_DIMENSION" envDefault:"1200"`

	LineClientID     string `env:"LINE_CLIENT_ID"`
	LineClientSecret string `env:"LINE_CLIENT_SECRET"`
	LineRedirectURL  string `env:"LINE_REDIRECT_URL"`
	AppBaseURL       string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	RateLimitEnabled  bool          `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitRequests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"20"`
	RateLimitWindow   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:","`
}

var ErrMissingDatabase = errors.New("either DATABASE_DSN or DB_USER, DB_HOST and DB_NAME must be set")

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseDSN == "" && (c.DBUser == "" || c.DBHost == "" || c.DBName == "") {
		return ErrMissingDatabase
	}
	return nil
}

func (c *Config) LineEnabled() bool {
	return c.LineClientID != "" && c.LineClientSecret != "" && c.LineRedirectURL != ""
}
