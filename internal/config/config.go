package config

import (
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/nimasrn/debt-ledger/pkg/logger"
	"github.com/nimasrn/debt-ledger/pkg/pg"
	"github.com/pkg/errors"
)

var config *Config

// Config holds every setting of the ledger processes. Values come from the
// environment, optionally seeded from a .env file.
type Config struct {
	AppEnv   string `env:"APP_ENV,default=dev"`
	AppName  string `env:"APP_NAME,default=debt_ledger"`
	LogLevel string `env:"LOG_LEVEL,default=info"`

	HttpListenAddr     string        `env:"HTTP_LISTEN_ADDR,default=:8080"`
	HttpRequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT,default=10s"`
	HttpCorsOrigin     string        `env:"HTTP_CORS_ORIGIN,default=*"`

	MetricsAddr string `env:"METRICS_ADDR,default=:9100"`
	MetricsURI  string `env:"METRICS_URI,default=/metrics"`
	PromNS      string `env:"PROM_NAMESPACE,default=debt_ledger"`

	PostgresReadHost     string `env:"POSTGRES_READ_HOST"`
	PostgresReadPort     string `env:"POSTGRES_READ_PORT,default=5432"`
	PostgresReadUser     string `env:"POSTGRES_READ_USER"`
	PostgresReadPassword string `env:"POSTGRES_READ_PASSWORD"`
	PostgresReadDatabase string `env:"POSTGRES_READ_DBNAME"`

	PostgresWriteHost     string `env:"POSTGRES_WRITE_HOST"`
	PostgresWritePort     string `env:"POSTGRES_WRITE_PORT,default=5432"`
	PostgresWriteUser     string `env:"POSTGRES_WRITE_USER"`
	PostgresWritePassword string `env:"POSTGRES_WRITE_PASSWORD"`
	PostgresWriteDatabase string `env:"POSTGRES_WRITE_DBNAME"`
	PostgresSSLMode       string `env:"POSTGRES_SSLMODE,default=disable"`
	PostgresMaxOpenConns  int    `env:"POSTGRES_MAX_OPEN_CONNS,default=20"`

	RedisAddr      string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisUsername  string `env:"REDIS_USER"`
	RedisPassword  string `env:"REDIS_PASS"`
	RedisDatabase  int    `env:"REDIS_DATABASE,default=0"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX,default=ledger:"`

	JwtSecret  string        `env:"JWT_SECRET"`
	JwtTTL     time.Duration `env:"JWT_TTL,default=24h"`
	JwtIssuer  string        `env:"JWT_ISSUER,default=debt-ledger"`
	BcryptCost int           `env:"BCRYPT_COST,default=10"`
	AdminUser  string        `env:"ADMIN_USERNAME"`
	AdminPass  string        `env:"ADMIN_PASSWORD"`
	AdminEmail string        `env:"ADMIN_EMAIL"`

	DebtorLimit    int           `env:"DEBTOR_LIMIT,default=50"`
	PurgeRetention time.Duration `env:"PURGE_RETENTION,default=480h"`
	PurgeInterval  time.Duration `env:"PURGE_INTERVAL,default=1h"`

	// BusinessTimezone decides which calendar day counts as today for debt dates.
	BusinessTimezone string `env:"BUSINESS_TIMEZONE,default=Asia/Kathmandu"`

	StorageDriver   string `env:"STORAGE_DRIVER,default=local"`
	StorageLocalDir string `env:"STORAGE_LOCAL_DIR,default=./uploads"`
	S3Bucket        string `env:"S3_BUCKET"`
	S3Region        string `env:"S3_REGION,default=us-east-1"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3AccessKey     string `env:"S3_ACCESS_KEY"`
	S3SecretKey     string `env:"S3_SECRET_KEY"`

	QueueName              string        `env:"QUEUE_NAME,default=debtor-events"`
	QueueConsumerGroup     string        `env:"QUEUE_CONSUMER_GROUP,default=notifier"`
	QueueConsumerName      string        `env:"QUEUE_CONSUMER_NAME,default=notifier-1"`
	QueueMaxRetries        int           `env:"QUEUE_MAX_RETRIES,default=3"`
	QueueVisibilityTimeout time.Duration `env:"QUEUE_VISIBILITY_TIMEOUT,default=30s"`
	QueuePollInterval      time.Duration `env:"QUEUE_POLL_INTERVAL,default=1s"`
	QueueBatchSize         int64         `env:"QUEUE_BATCH_SIZE,default=10"`
	QueueMaxLen            int64         `env:"QUEUE_MAX_LEN,default=100000"`
	QueueEnableDLQ         bool          `env:"QUEUE_ENABLE_DLQ,default=true"`

	NotifierWorkers      int           `env:"NOTIFIER_WORKERS,default=4"`
	NotifierRecipient    string        `env:"NOTIFIER_RECIPIENT"`
	NotifierIdempotency  time.Duration `env:"NOTIFIER_IDEMPOTENCY_TTL,default=24h"`
	MailRelayPrimaryURL  string        `env:"MAIL_RELAY_PRIMARY_URL,default=http://localhost:8090"`
	MailRelayFallbackURL string        `env:"MAIL_RELAY_FALLBACK_URL"`
	MailRelayTimeout     time.Duration `env:"MAIL_RELAY_TIMEOUT,default=5s"`
	MailRelayRetries     int           `env:"MAIL_RELAY_RETRIES,default=2"`
	MailRelayRetryDelay  time.Duration `env:"MAIL_RELAY_RETRY_DELAY,default=500ms"`

	MailSinkAddr string `env:"MAIL_SINK_ADDR,default=:8090"`
}

func Load(path string) error {
	logger.Info("loading configs", "path", path)
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(err, "failed to load configuration file %s", path)
		}
	}

	c := &Config{}
	if _, err := env.UnmarshalFromEnviron(c); err != nil {
		return errors.Wrap(err, "failed to map env variables to configuration")
	}
	if c.JwtSecret == "" && c.AppEnv != "dev" {
		return errors.New("JWT_SECRET is required outside dev")
	}
	if c.JwtSecret == "" {
		c.JwtSecret = "dev-secret"
	}

	config = c
	return nil
}

// Set replaces the loaded configuration. Used by tests.
func Set(c *Config) {
	config = c
}

func Get() *Config {
	if config == nil {
		panic("config is not initialized")
	}
	return config
}

func (c *Config) ReadDB() pg.Config {
	return pg.Config{
		User:         c.PostgresReadUser,
		Host:         c.PostgresReadHost,
		Port:         c.PostgresReadPort,
		Password:     c.PostgresReadPassword,
		Database:     c.PostgresReadDatabase,
		SSLMode:      c.PostgresSSLMode,
		MaxOpenConns: c.PostgresMaxOpenConns,
	}
}

func (c *Config) WriteDB() pg.Config {
	return pg.Config{
		User:         c.PostgresWriteUser,
		Host:         c.PostgresWriteHost,
		Port:         c.PostgresWritePort,
		Password:     c.PostgresWritePassword,
		Database:     c.PostgresWriteDatabase,
		SSLMode:      c.PostgresSSLMode,
		MaxOpenConns: c.PostgresMaxOpenConns,
	}
}

func (c *Config) MailRelayURLs() []string {
	urls := []string{c.MailRelayPrimaryURL}
	if c.MailRelayFallbackURL != "" {
		urls = append(urls, c.MailRelayFallbackURL)
	}
	return urls
}
