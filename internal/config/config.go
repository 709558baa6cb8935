// Package config provides configuration structures and loading for gomask.
package config

// Config represents the complete application configuration.
type Config struct {
	Database   DatabaseConfig       `yaml:"database" mapstructure:"database"`
	Jobs       map[string]JobConfig `yaml:"jobs" mapstructure:"jobs"`
	Processing ProcessingConfig     `yaml:"processing" mapstructure:"processing"`
	Lexicon    LexiconConfig        `yaml:"lexicon" mapstructure:"lexicon"`
	Geo        GeoConfig            `yaml:"geo" mapstructure:"geo"`
	Logging    LoggingConfig        `yaml:"logging" mapstructure:"logging"`
}

// DatabaseConfig represents the target database connection.
type DatabaseConfig struct {
	Driver             string `yaml:"driver" mapstructure:"driver"` // mysql or postgres
	Host               string `yaml:"host" mapstructure:"host"`
	Port               int    `yaml:"port" mapstructure:"port"`
	User               string `yaml:"user" mapstructure:"user"`
	Password           string `yaml:"password" mapstructure:"password"`
	Database           string `yaml:"database" mapstructure:"database"`
	Schema             string `yaml:"schema" mapstructure:"schema"` // postgres only, defaults to public
	TLS                string `yaml:"tls" mapstructure:"tls"` // disable, preferred, required
	MaxConnections     int    `yaml:"max_connections" mapstructure:"max_connections"`
	MaxIdleConnections int    `yaml:"max_idle_connections" mapstructure:"max_idle_connections"`
}

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

// ProcessingConfig represents batch processing settings.
type ProcessingConfig struct {
	BatchSize         int     `yaml:"batch_size" mapstructure:"batch_size"`
	PreviewLimit      int     `yaml:"preview_limit" mapstructure:"preview_limit"`
	UniqueMaxAttempts int     `yaml:"unique_max_attempts" mapstructure:"unique_max_attempts"`
	TransactionMode   string  `yaml:"transaction_mode" mapstructure:"transaction_mode"` // job or batch
	SleepSeconds      float64 `yaml:"sleep_seconds" mapstructure:"sleep_seconds"`
	Seed              uint64  `yaml:"seed" mapstructure:"seed"` // 0 = random
}

// Transaction modes.
const (
	TransactionPerJob   = "job"
	TransactionPerBatch = "batch"
)

// LexiconConfig points at the word lists used by the name and company generators.
type LexiconConfig struct {
	NamesDir     string `yaml:"names_dir" mapstructure:"names_dir"`
	CompaniesDir string `yaml:"companies_dir" mapstructure:"companies_dir"`
}

// GeoConfig configures the OpenAI-compatible endpoint used to resolve
// location descriptions into bounding boxes.
type GeoConfig struct {
	Endpoint       string  `yaml:"endpoint" mapstructure:"endpoint"`
	Model          string  `yaml:"model" mapstructure:"model"`
	APIKey         string  `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSeconds int     `yaml:"timeout_seconds" mapstructure:"timeout_seconds"`
	MaxTokens      int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature    float64 `yaml:"temperature" mapstructure:"temperature"`
}

// LoggingConfig represents logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // json or text
	Output string `yaml:"output" mapstructure:"output"` // stdout, stderr, or file path
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:             DriverMySQL,
			Port:               3306,
			TLS:                "preferred",
			MaxConnections:     4,
			MaxIdleConnections: 2,
		},
		Processing: ProcessingConfig{
			BatchSize:         1000,
			PreviewLimit:      10,
			UniqueMaxAttempts: 100,
			TransactionMode:   TransactionPerJob,
		},
		Lexicon: LexiconConfig{
			NamesDir:     "data/names",
			CompaniesDir: "data/companies",
		},
		Geo: GeoConfig{
			Endpoint:       "https://api.deepseek.com/v1",
			Model:          "deepseek-chat",
			TimeoutSeconds: 60,
			MaxTokens:      500,
			Temperature:    0.3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
	}
}

// GetJobProcessing returns the processing config for a job by name, falling back to global if not set.
func (c *Config) GetJobProcessing(jobName string) ProcessingConfig {
	job, err := c.GetJob(jobName)
	if err != nil {
		return c.Processing
	}
	return job.GetJobProcessing(c.Processing)
}

// GetJobProcessing returns the processing config for a job, falling back to global if not set.
func (jc *JobConfig) GetJobProcessing(global ProcessingConfig) ProcessingConfig {
	if jc.Processing == nil {
		return global
	}

	result := global
	if jc.Processing.BatchSize > 0 {
		result.BatchSize = jc.Processing.BatchSize
	}
	if jc.Processing.PreviewLimit > 0 {
		result.PreviewLimit = jc.Processing.PreviewLimit
	}
	if jc.Processing.UniqueMaxAttempts > 0 {
		result.UniqueMaxAttempts = jc.Processing.UniqueMaxAttempts
	}
	if jc.Processing.TransactionMode != "" {
		result.TransactionMode = jc.Processing.TransactionMode
	}
	if jc.Processing.SleepSeconds > 0 {
		result.SleepSeconds = jc.Processing.SleepSeconds
	}
	if jc.Processing.Seed != 0 {
		result.Seed = jc.Processing.Seed
	}
	return result
}
