package config

import (
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Database.Driver != DriverMySQL {
		t.Errorf("expected driver mysql, got %s", cfg.Database.Driver)
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("expected port 3306, got %d", cfg.Database.Port)
	}
	if cfg.Database.TLS != "preferred" {
		t.Errorf("expected TLS 'preferred', got %s", cfg.Database.TLS)
	}

	if cfg.Processing.BatchSize != 1000 {
		t.Errorf("expected batch_size 1000, got %d", cfg.Processing.BatchSize)
	}
	if cfg.Processing.PreviewLimit != 10 {
		t.Errorf("expected preview_limit 10, got %d", cfg.Processing.PreviewLimit)
	}
	if cfg.Processing.UniqueMaxAttempts != 100 {
		t.Errorf("expected unique_max_attempts 100, got %d", cfg.Processing.UniqueMaxAttempts)
	}
	if cfg.Processing.TransactionMode != TransactionPerJob {
		t.Errorf("expected transaction_mode job, got %s", cfg.Processing.TransactionMode)
	}

	if cfg.Lexicon.NamesDir != "data/names" || cfg.Lexicon.CompaniesDir != "data/companies" {
		t.Errorf("unexpected lexicon dirs %+v", cfg.Lexicon)
	}
	if cfg.Geo.Model != "deepseek-chat" || cfg.Geo.TimeoutSeconds != 60 {
		t.Errorf("unexpected geo defaults %+v", cfg.Geo)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected logging format 'text', got %s", cfg.Logging.Format)
	}
}

func TestJobConfig_GetJobProcessing(t *testing.T) {
	global := ProcessingConfig{
		BatchSize:         1000,
		PreviewLimit:      10,
		UniqueMaxAttempts: 100,
		TransactionMode:   TransactionPerJob,
		SleepSeconds:      1,
	}

	job := JobConfig{}
	if got := job.GetJobProcessing(global); got != global {
		t.Errorf("expected global config without override, got %+v", got)
	}

	job.Processing = &ProcessingConfig{BatchSize: 50, TransactionMode: TransactionPerBatch, Seed: 7}
	got := job.GetJobProcessing(global)
	if got.BatchSize != 50 {
		t.Errorf("expected batch_size 50, got %d", got.BatchSize)
	}
	if got.TransactionMode != TransactionPerBatch {
		t.Errorf("expected transaction_mode batch, got %s", got.TransactionMode)
	}
	if got.Seed != 7 {
		t.Errorf("expected seed 7, got %d", got.Seed)
	}
	if got.PreviewLimit != 10 || got.SleepSeconds != 1 {
		t.Errorf("expected unset fields to inherit, got %+v", got)
	}
}

func TestJobConfig_TargetColumns(t *testing.T) {
	tests := []struct {
		name     string
		job      JobConfig
		expected []string
	}{
		{
			name:     "plain columns",
			job:      JobConfig{Columns: []string{"phone"}, Generator: GeneratorConfig{Kind: KindPhone}},
			expected: []string{"phone"},
		},
		{
			name: "name with emails",
			job: JobConfig{
				Columns:   []string{"first_name"},
				Generator: GeneratorConfig{Kind: KindName, Name: &NameParams{EmailColumns: []string{"email"}}},
			},
			expected: []string{"first_name", "email"},
		},
		{
			name: "emails only",
			job: JobConfig{
				Columns:   []string{"first_name", "last_name"},
				Generator: GeneratorConfig{Kind: KindName, Name: &NameParams{EmailColumns: []string{"email"}, UpdateNames: new(bool)}},
			},
			expected: []string{"email"},
		},
		{
			name: "geo",
			job: JobConfig{
				Columns:   []string{"ignored"},
				Generator: GeneratorConfig{Kind: KindGeo, Geo: &GeoParams{LatColumn: "lat", LngColumn: "lng"}},
			},
			expected: []string{"lat", "lng"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.job.TargetColumns()
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("expected %v, got %v", tt.expected, got)
				}
			}
		})
	}
}

func TestJobConfig_PrimaryKeyColumn(t *testing.T) {
	if got := (&JobConfig{}).PrimaryKeyColumn(); got != "id" {
		t.Errorf("expected default 'id', got %s", got)
	}
	if got := (&JobConfig{PrimaryKey: "user_id"}).PrimaryKeyColumn(); got != "user_id" {
		t.Errorf("expected 'user_id', got %s", got)
	}
}

func TestConfig_GetJobProcessing_UnknownJob(t *testing.T) {
	cfg := DefaultConfig()
	if got := cfg.GetJobProcessing("missing"); got != cfg.Processing {
		t.Errorf("expected global processing for unknown job, got %+v", got)
	}
}
