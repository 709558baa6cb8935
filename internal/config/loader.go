package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from the file at configPath.
// It supports YAML files and performs environment variable substitution.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper creates a Config from an existing Viper instance.
// Useful for testing or when Viper is configured externally.
func LoadFromViper(v *viper.Viper) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	substituteEnvVars(cfg)
	applyJobDefaults(v, cfg)

	return cfg, nil
}

// applyJobDefaults fills per-kind defaults that zero values cannot express.
// Code jobs are unique unless the file says otherwise.
func applyJobDefaults(v *viper.Viper, cfg *Config) {
	for name, job := range cfg.Jobs {
		if job.Generator.Kind == KindCode && !v.IsSet("jobs."+name+".generator.unique") {
			job.Generator.Unique = true
			cfg.Jobs[name] = job
		}
	}
}

// envVarPattern matches ${VAR_NAME} or $VAR_NAME patterns
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// substituteEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func substituteEnvVars(cfg *Config) {
	cfg.Database.Host = expandEnvVar(cfg.Database.Host)
	cfg.Database.User = expandEnvVar(cfg.Database.User)
	cfg.Database.Password = expandEnvVar(cfg.Database.Password)
	cfg.Database.Database = expandEnvVar(cfg.Database.Database)

	cfg.Geo.Endpoint = expandEnvVar(cfg.Geo.Endpoint)
	cfg.Geo.APIKey = expandEnvVar(cfg.Geo.APIKey)

	cfg.Lexicon.NamesDir = expandEnvVar(cfg.Lexicon.NamesDir)
	cfg.Lexicon.CompaniesDir = expandEnvVar(cfg.Lexicon.CompaniesDir)

	cfg.Logging.Output = expandEnvVar(cfg.Logging.Output)

	for name, job := range cfg.Jobs {
		if job.Generator.Geo != nil {
			geo := *job.Generator.Geo
			geo.APIKey = expandEnvVar(geo.APIKey)
			job.Generator.Geo = &geo
			cfg.Jobs[name] = job
		}
	}
}

// expandEnvVar expands environment variables in the format ${VAR} or $VAR.
func expandEnvVar(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		var varName string
		if strings.HasPrefix(match, "${") {
			varName = match[2 : len(match)-1]
		} else {
			varName = match[1:]
		}

		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Return original if env var not found
		return match
	})
}

// GetJob retrieves a specific job configuration by name.
func (c *Config) GetJob(name string) (*JobConfig, error) {
	job, exists := c.Jobs[name]
	if !exists {
		return nil, fmt.Errorf("job %q not found in configuration", name)
	}
	return &job, nil
}

// ListJobs returns all job names defined in the configuration, sorted.
func (c *Config) ListJobs() []string {
	jobs := make([]string, 0, len(c.Jobs))
	for name := range c.Jobs {
		jobs = append(jobs, name)
	}
	sort.Strings(jobs)
	return jobs
}

// ApplyOverrides applies CLI flag overrides to the global configuration.
// Only non-zero/non-empty values are applied.
func (c *Config) ApplyOverrides(logLevel, logFormat string, batchSize int, sleepSeconds float64) {
	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat != "" {
		c.Logging.Format = logFormat
	}
	if batchSize > 0 {
		c.Processing.BatchSize = batchSize
	}
	if sleepSeconds > 0 {
		c.Processing.SleepSeconds = sleepSeconds
	}
}

// ApplyJobOverrides combines global, job-specific and CLI processing values.
func (c *Config) ApplyJobOverrides(jobName string, batchSize int, sleepSeconds float64) ProcessingConfig {
	processing := c.GetJobProcessing(jobName)

	if batchSize > 0 {
		processing.BatchSize = batchSize
	}
	if sleepSeconds > 0 {
		processing.SleepSeconds = sleepSeconds
	}

	return processing
}
