package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the provisioning service configuration
type Config struct {
	ServiceName string      `mapstructure:"service_name"`
	Env         string      `mapstructure:"env"`
	Port        string      `mapstructure:"port"`
	InstanceID  string      `mapstructure:"instance_id"`
	Log         Log         `mapstructure:"log"`
	Store       Store       `mapstructure:"store"`
	Database    Database    `mapstructure:"database"`
	AWS         AWS         `mapstructure:"aws"`
	Telemetry   Telemetry   `mapstructure:"telemetry"`
	Saga        Saga        `mapstructure:"saga"`
	Dispatcher  Dispatcher  `mapstructure:"dispatcher"`
	Systems     SystemsList `mapstructure:"systems"`
}

type Log struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// Store selects the workflow store: "postgres" or "memory"
type Store struct {
	Driver        string `mapstructure:"driver"`
	RunMigrations bool   `mapstructure:"run_migrations"`
}

type Database struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	User         string        `mapstructure:"user"`
	Password     string        `mapstructure:"password"`
	Database     string        `mapstructure:"database"`
	SSLMode      string        `mapstructure:"ssl_mode"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	ConnMaxLife  time.Duration `mapstructure:"conn_max_lifetime"`
	url          string
}

// AWS configures SNS lifecycle events and the SQS command intake. With
// Enabled false events are logged and no queue is consumed.
type AWS struct {
	Enabled         bool   `mapstructure:"enabled"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Region          string `mapstructure:"region"`
	EndpointSNS     string `mapstructure:"endpoint_sns"`
	EndpointSQS     string `mapstructure:"endpoint_sqs"`
	SNSTopicArn     string `mapstructure:"sns_topic_arn"`
	SQSQueueURL     string `mapstructure:"sqs_queue_url"`
	SQSWorkers      int32  `mapstructure:"sqs_workers"`
}

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

// Saga holds the retry budgets and lease settings of the coordinator
type Saga struct {
	MaxRetries             int            `mapstructure:"max_retries"`
	MaxRetriesByType       map[string]int `mapstructure:"max_retries_by_type"`
	MaxCompensationRetries int            `mapstructure:"max_compensation_retries"`
	MaxWorkflowRetries     int            `mapstructure:"max_workflow_retries"`
	InitialBackoff         time.Duration  `mapstructure:"initial_backoff"`
	MaxBackoff             time.Duration  `mapstructure:"max_backoff"`
	BackoffMultiplier      float64        `mapstructure:"backoff_multiplier"`
	BackoffJitter          float64        `mapstructure:"backoff_jitter"`
	LeaseTTL               time.Duration  `mapstructure:"lease_ttl"`
}

type Dispatcher struct {
	MaxConcurrent    int64         `mapstructure:"max_concurrent"`
	RecoveryInterval time.Duration `mapstructure:"recovery_interval"`
	RecoveryBatch    int           `mapstructure:"recovery_batch"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
}

// System is how one downstream system is reached
type System struct {
	BaseURL  string        `mapstructure:"base_url"`
	Token    string        `mapstructure:"token"`
	Timeout  time.Duration `mapstructure:"timeout"`
	UndoNoop bool          `mapstructure:"undo_noop"`
}

// SystemsList is keyed by target system identifier
type SystemsList map[string]System

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	v := viper.New()
	v.SetConfigName(getConfigName())
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Dir(filename))
	v.AddConfigPath("config")

	// PROVISIONING_DATABASE_HOST overrides database.host
	v.SetEnvPrefix("PROVISIONING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if url := v.GetString("database.url"); url != "" {
		config.Database.url = url
	}

	return &config, nil
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("service_name", "provisioning-service")
	v.SetDefault("env", getEnv("ENV", "local"))
	v.SetDefault("port", getEnv("PORT", "8080"))
	v.SetDefault("instance_id", getEnv("HOSTNAME", ""))

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", false)

	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.run_migrations", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "provisioning")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 30*time.Minute)
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		v.Set("database.url", dbURL)
	}

	v.SetDefault("aws.enabled", false)
	v.SetDefault("aws.access_key_id", getEnv("AWS_ACCESS_KEY_ID", "test"))
	v.SetDefault("aws.secret_access_key", getEnv("AWS_SECRET_ACCESS_KEY", "test"))
	v.SetDefault("aws.region", getEnv("AWS_DEFAULT_REGION", "us-east-1"))
	v.SetDefault("aws.endpoint_sns", getEnv("AWS_ENDPOINT_URL_SNS", ""))
	v.SetDefault("aws.endpoint_sqs", getEnv("AWS_ENDPOINT_URL_SQS", ""))
	v.SetDefault("aws.sns_topic_arn", getEnv("SNS_TOPIC_ARN", ""))
	v.SetDefault("aws.sqs_queue_url", getEnv("SQS_QUEUE_URL", ""))
	v.SetDefault("aws.sqs_workers", 4)

	v.SetDefault("telemetry.enabled", true)
	v.SetDefault("telemetry.otlp_endpoint", getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""))

	v.SetDefault("saga.max_retries", 3)
	v.SetDefault("saga.max_compensation_retries", 5)
	v.SetDefault("saga.max_workflow_retries", 3)
	v.SetDefault("saga.initial_backoff", 500*time.Millisecond)
	v.SetDefault("saga.max_backoff", 30*time.Second)
	v.SetDefault("saga.backoff_multiplier", 2.0)
	v.SetDefault("saga.backoff_jitter", 0.2)
	v.SetDefault("saga.lease_ttl", 30*time.Second)

	v.SetDefault("dispatcher.max_concurrent", 32)
	v.SetDefault("dispatcher.recovery_interval", 30*time.Second)
	v.SetDefault("dispatcher.recovery_batch", 100)
	v.SetDefault("dispatcher.shutdown_timeout", 30*time.Second)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if c.Database.url != "" {
		return c.Database.url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
