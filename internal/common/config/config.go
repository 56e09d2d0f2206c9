// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App        AppConfig               `mapstructure:"app"`
	Camunda    CamundaConfig           `mapstructure:"camunda"`
	AWS        AWSConfig               `mapstructure:"aws"`
	Oracle     OracleConfig            `mapstructure:"oracle"`
	Repository RepositoryConfig        `mapstructure:"repository"`
	Database   DatabaseConfig          `mapstructure:"database"`
	Build      BuildConfig             `mapstructure:"build"`
	Registry   RegistryConfig          `mapstructure:"registry"`
	Workers    map[string]WorkerConfig `mapstructure:"workers"`
	Logging    LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	HTTPAddress string `mapstructure:"http_address"`
}

type CamundaConfig struct {
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	Plaintext      bool   `mapstructure:"plaintext"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// AWSConfig covers every AWS service the workers call.
type AWSConfig struct {
	Region string `mapstructure:"region"`

	S3 struct {
		BundleBucket string `mapstructure:"bundle_bucket"`
		ExportBucket string `mapstructure:"export_bucket"`
		ExportPrefix string `mapstructure:"export_prefix"`
	} `mapstructure:"s3"`

	DynamoDB struct {
		ArtifactTable string `mapstructure:"artifact_table"`
	} `mapstructure:"dynamodb"`

	SNS struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"sns"`

	SES struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"ses"`
}

// OracleConfig selects and tunes the repair assistant.
type OracleConfig struct {
	Provider    string  `mapstructure:"provider"` // bedrock | gemini
	ModelID     string  `mapstructure:"model_id"`
	APIKey      string  `mapstructure:"api_key"` // gemini only
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// RepositoryConfig selects the artifact store implementation.
type RepositoryConfig struct {
	Backend string `mapstructure:"backend"` // dynamodb | postgres | memory
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled     bool     `mapstructure:"enabled"`
	Addresses   []string `mapstructure:"addresses"`
	Username    string   `mapstructure:"username"`
	Password    string   `mapstructure:"password"`
	RepairIndex string   `mapstructure:"repair_index"`
}

type RedisConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Address       string `mapstructure:"address"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db"`
	TranscriptTTL int    `mapstructure:"transcript_ttl"` // milliseconds
}

// BuildConfig holds the convergence budgets and polling bounds.
type BuildConfig struct {
	PollInterval      int `mapstructure:"poll_interval"`  // milliseconds
	WaitTimeout       int `mapstructure:"wait_timeout"`   // milliseconds
	ExportTimeout     int `mapstructure:"export_timeout"` // milliseconds
	MaxBuildRetries   int `mapstructure:"max_build_retries"`
	MaxRepairAttempts int `mapstructure:"max_repair_attempts"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
