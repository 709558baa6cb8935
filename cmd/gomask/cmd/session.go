package cmd

import (
	"context"
	"fmt"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/database"
	"github.com/dbsmedya/gomask/internal/engine"
	"github.com/dbsmedya/gomask/internal/geobounds"
	"github.com/dbsmedya/gomask/internal/lexicon"
	"github.com/dbsmedya/gomask/internal/logger"
)

// loadConfig reads the config file and applies the persistent CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	overrides := GetCLIOverrides()
	cfg.ApplyOverrides(overrides.LogLevel, overrides.LogFormat,
		overrides.BatchSize, overrides.SleepSeconds)
	return cfg, nil
}

// jobSession is one connected job ready to run, preview or estimate.
type jobSession struct {
	cfg        *config.Config
	job        *config.JobConfig
	processing config.ProcessingConfig
	log        *logger.Logger
	dbManager  *database.Manager
	orch       *engine.Orchestrator
}

func (s *jobSession) Close() {
	if s.dbManager != nil {
		s.dbManager.Close()
	}
	_ = s.log.Sync()
}

// openJob loads the config, connects and builds the orchestrator for jobName.
func openJob(ctx context.Context, jobName string, withResolver bool) (*jobSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if _, err := cfg.GetJob(jobName); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dbManager, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	session := &jobSession{cfg: cfg, log: log, dbManager: dbManager}
	if err := session.build(jobName, withResolver); err != nil {
		dbManager.Close()
		return nil, err
	}
	return session, nil
}

func connect(ctx context.Context, cfg *config.Config) (*database.Manager, error) {
	dbManager, err := database.NewManager(&cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := dbManager.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return dbManager, nil
}

// build creates the orchestrator for jobName on the session's connection.
// With withResolver false a geo job described in words gets no resolver, so
// nothing is sent to the model.
func (s *jobSession) build(jobName string, withResolver bool) error {
	job, err := s.cfg.GetJob(jobName)
	if err != nil {
		return err
	}

	lexicons, err := loadLexicons(s.cfg, job, s.log)
	if err != nil {
		return err
	}

	var resolver geobounds.Resolver
	if withResolver && needsResolver(job) {
		llm, err := geobounds.NewLLMResolver(s.cfg.Geo, job.Generator.Geo.APIKey, s.log)
		if err != nil {
			return fmt.Errorf("failed to create geo resolver: %w", err)
		}
		resolver = llm
	}

	overrides := GetCLIOverrides()
	processing := s.cfg.ApplyJobOverrides(jobName, overrides.BatchSize, overrides.SleepSeconds)

	orch, err := engine.NewOrchestrator(s.dbManager, engine.Options{
		JobName:    jobName,
		Job:        job,
		Processing: processing,
		Lexicons:   lexicons,
		Resolver:   resolver,
		Logger:     s.log,
	})
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	s.job = job
	s.processing = processing
	s.orch = orch
	return nil
}

// loadLexicons reads the CSV word lists only for jobs that draw from them.
func loadLexicons(cfg *config.Config, job *config.JobConfig, log *logger.Logger) (*lexicon.Set, error) {
	switch job.Generator.Kind {
	case config.KindName, config.KindCompany:
		set, err := lexicon.LoadSet(cfg.Lexicon.NamesDir, cfg.Lexicon.CompaniesDir, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicons: %w", err)
		}
		return set, nil
	}
	return lexicon.EmptySet(), nil
}

func needsResolver(job *config.JobConfig) bool {
	return job.Generator.Kind == config.KindGeo &&
		job.Generator.Geo != nil &&
		job.Generator.Geo.Bounds == nil
}
