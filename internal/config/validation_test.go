package config

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.Database.Host = "localhost"
	cfg.Database.User = "root"
	cfg.Database.Database = "appdb"
	cfg.Jobs = map[string]JobConfig{
		"mask_users": {
			Table:   "users",
			Columns: []string{"first_name"},
			Filter: []Predicate{
				{Column: "country", Operator: "IN", Value: []any{"UG", "KE"}},
				{Column: "deleted_at", Operator: "is null"},
			},
			Generator: GeneratorConfig{
				Kind: KindName,
				Name: &NameParams{Gender: "both", GenderColumn: "sex"},
			},
		},
	}
	return cfg
}

func expectFieldError(t *testing.T, err error, field string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected validation error for %s", field)
	}
	var verrs ValidationErrors
	if !errors.As(err, &verrs) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	for _, e := range verrs {
		if e.Field == field {
			return
		}
	}
	t.Errorf("expected error on %s, got: %v", field, err)
}

func TestValidConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected no validation errors, got: %v", err)
	}
}

func TestValidateDatabase(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DatabaseConfig)
		field  string
	}{
		{"missing host", func(d *DatabaseConfig) { d.Host = "" }, "database.host"},
		{"invalid port", func(d *DatabaseConfig) { d.Port = 99999 }, "database.port"},
		{"missing user", func(d *DatabaseConfig) { d.User = "" }, "database.user"},
		{"missing database", func(d *DatabaseConfig) { d.Database = "" }, "database.database"},
		{"unknown driver", func(d *DatabaseConfig) { d.Driver = "oracle" }, "database.driver"},
		{"bad schema", func(d *DatabaseConfig) { d.Schema = "public; drop" }, "database.schema"},
		{"bad tls", func(d *DatabaseConfig) { d.TLS = "sometimes" }, "database.tls"},
		{"negative pool", func(d *DatabaseConfig) { d.MaxConnections = -1 }, "database.max_connections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Database)
			expectFieldError(t, cfg.Validate(), tt.field)
		})
	}
}

func TestValidateNoJobs(t *testing.T) {
	cfg := validConfig()
	cfg.Jobs = nil
	expectFieldError(t, cfg.Validate(), "jobs")
}

func TestValidateJob(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*JobConfig)
		field  string
	}{
		{"missing table", func(j *JobConfig) { j.Table = "" }, "jobs.j.table"},
		{"bad table", func(j *JobConfig) { j.Table = "users`x" }, "jobs.j.table"},
		{"bad primary key", func(j *JobConfig) { j.PrimaryKey = "id-1" }, "jobs.j.primary_key"},
		{"no columns", func(j *JobConfig) { j.Columns = nil }, "jobs.j.columns"},
		{"bad column", func(j *JobConfig) { j.Columns = []string{"ok", "not ok"} }, "jobs.j.columns[1]"},
		{"bad operator", func(j *JobConfig) { j.Filter[0].Operator = "~" }, "jobs.j.filter[0].operator"},
		{"bad filter column", func(j *JobConfig) { j.Filter[0].Column = "a.b" }, "jobs.j.filter[0].column"},
		{"missing value", func(j *JobConfig) { j.Filter[0].Value = nil }, "jobs.j.filter[0].value"},
		{"value on is null", func(j *JobConfig) { j.Filter[1].Value = "x" }, "jobs.j.filter[1].value"},
		{"injection value", func(j *JobConfig) {
			j.Filter[0].Operator = "="
			j.Filter[0].Value = "1' OR '1'='1"
		}, "jobs.j.filter[0].value"},
		{"unknown kind", func(j *JobConfig) { j.Generator.Kind = "ssn" }, "jobs.j.generator.kind"},
		{"params mismatch", func(j *JobConfig) { j.Generator.Phone = &PhoneParams{CountryCode: "+256"} }, "jobs.j.generator.phone"},
		{"bad gender", func(j *JobConfig) { j.Generator.Name.Gender = "other" }, "jobs.j.generator.name.gender"},
		{"bad distribution", func(j *JobConfig) { j.Generator.Name.Distribution = "weighted" }, "jobs.j.generator.name.distribution"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := validConfig().Jobs["mask_users"]
			job.Filter = append([]Predicate(nil), job.Filter...)
			name := *job.Generator.Name
			job.Generator.Name = &name
			tt.mutate(&job)
			expectFieldError(t, ValidateJob("j", &job), tt.field)
		})
	}
}

func TestValidateGeneratorParams(t *testing.T) {
	tests := []struct {
		name  string
		gen   GeneratorConfig
		field string
	}{
		{"missing params", GeneratorConfig{Kind: KindPhone}, "jobs.j.generator.phone"},
		{"phone without code", GeneratorConfig{Kind: KindPhone, Phone: &PhoneParams{Min: 1, Max: 2}}, "jobs.j.generator.phone.country_code"},
		{"phone range", GeneratorConfig{Kind: KindPhone, Phone: &PhoneParams{CountryCode: "+1", Min: 9, Max: 2}}, "jobs.j.generator.phone.max"},
		{"date invalid", GeneratorConfig{Kind: KindDate, Date: &DateParams{Start: "yesterday", End: "2024-01-01"}}, "jobs.j.generator.date.start"},
		{"date order", GeneratorConfig{Kind: KindDate, Date: &DateParams{Start: "2024-01-02", End: "2024-01-01"}}, "jobs.j.generator.date.end"},
		{"code alphabet", GeneratorConfig{Kind: KindCode, Code: &CodeParams{Alphabet: "greek", Length: 5}}, "jobs.j.generator.code.alphabet"},
		{"code length", GeneratorConfig{Kind: KindCode, Code: &CodeParams{Length: 0}}, "jobs.j.generator.code.length"},
		{"code prefix", GeneratorConfig{Kind: KindCode, Code: &CodeParams{Length: 8, Prefix: "ABCD"}}, "jobs.j.generator.code.prefix"},
		{"geo columns", GeneratorConfig{Kind: KindGeo, Geo: &GeoParams{Description: "Kampala"}}, "jobs.j.generator.geo.lat_column"},
		{"geo same columns", GeneratorConfig{Kind: KindGeo, Geo: &GeoParams{LatColumn: "p", LngColumn: "p", Description: "x"}}, "jobs.j.generator.geo.lng_column"},
		{"geo no source", GeneratorConfig{Kind: KindGeo, Geo: &GeoParams{LatColumn: "lat", LngColumn: "lng"}}, "jobs.j.generator.geo.description"},
		{"geo nan bound", GeneratorConfig{Kind: KindGeo, Geo: &GeoParams{LatColumn: "lat", LngColumn: "lng", Bounds: &GeoBounds{MinLat: math.NaN(), MaxLat: 1, MaxLng: 1}}}, "jobs.j.generator.geo.bounds.min_lat"},
		{"geo infinite bound", GeneratorConfig{Kind: KindGeo, Geo: &GeoParams{LatColumn: "lat", LngColumn: "lng", Bounds: &GeoBounds{MaxLat: 1, MaxLng: math.Inf(-1)}}}, "jobs.j.generator.geo.bounds.max_lng"},
		{"date empty", GeneratorConfig{Kind: KindDate, Date: &DateParams{End: "2024-01-01"}}, "jobs.j.generator.date.start"},
		{"emails only without email columns", GeneratorConfig{Kind: KindName, Name: &NameParams{UpdateNames: new(bool)}}, "jobs.j.generator.name.email_columns"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job := JobConfig{Table: "t", Columns: []string{"c"}, Generator: tt.gen}
			expectFieldError(t, ValidateJob("j", &job), tt.field)
		})
	}
}

func TestValidateGeneratorParams_Valid(t *testing.T) {
	gens := []GeneratorConfig{
		{Kind: KindCompany},
		{Kind: KindPhone, Phone: &PhoneParams{Country: "Uganda", Prefix: "7", Min: 1000000, Max: 9999999}},
		{Kind: KindDate, Date: &DateParams{Start: "2020-01-01", End: "2020-12-31 23:59:59"}},
		{Kind: KindCode, Code: &CodeParams{Alphabet: "numbers", Length: 6, Prefix: "inv"}},
		{Kind: KindGeo, Geo: &GeoParams{LatColumn: "lat", LngColumn: "lng", Bounds: &GeoBounds{MinLat: 0, MaxLat: 1, MinLng: 0, MaxLng: 1}}},
	}
	for _, g := range gens {
		t.Run(g.Kind, func(t *testing.T) {
			job := JobConfig{Table: "t", Columns: []string{"c"}, Generator: g}
			if err := ValidateJob("j", &job); err != nil {
				t.Errorf("expected valid job, got: %v", err)
			}
		})
	}
}

func TestValidateProcessing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ProcessingConfig)
		field  string
	}{
		{"zero batch", func(p *ProcessingConfig) { p.BatchSize = 0 }, "processing.batch_size"},
		{"zero preview", func(p *ProcessingConfig) { p.PreviewLimit = 0 }, "processing.preview_limit"},
		{"zero unique", func(p *ProcessingConfig) { p.UniqueMaxAttempts = 0 }, "processing.unique_max_attempts"},
		{"bad mode", func(p *ProcessingConfig) { p.TransactionMode = "row" }, "processing.transaction_mode"},
		{"negative sleep", func(p *ProcessingConfig) { p.SleepSeconds = -1 }, "processing.sleep_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg.Processing)
			expectFieldError(t, cfg.Validate(), tt.field)
		})
	}
}

func TestValidateJobProcessingOverride(t *testing.T) {
	cfg := validConfig()
	job := cfg.Jobs["mask_users"]

	job.Processing = &ProcessingConfig{BatchSize: 10}
	cfg.Jobs["mask_users"] = job
	if err := cfg.Validate(); err != nil {
		t.Errorf("partial override should be valid, got: %v", err)
	}

	job.Processing = &ProcessingConfig{BatchSize: -5}
	cfg.Jobs["mask_users"] = job
	expectFieldError(t, cfg.Validate(), "jobs.mask_users.processing.batch_size")
}

func TestValidateGeoAndLogging(t *testing.T) {
	cfg := validConfig()
	cfg.Geo.Temperature = 3
	cfg.Logging.Level = "verbose"
	cfg.Logging.Format = "xml"

	err := cfg.Validate()
	expectFieldError(t, err, "geo.temperature")
	expectFieldError(t, err, "logging.level")
	expectFieldError(t, err, "logging.format")
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{
		{Field: "a", Message: "first"},
		{Field: "b", Message: "second"},
	}
	msg := errs.Error()
	if !strings.HasPrefix(msg, "validation failed:") || !strings.Contains(msg, "a: first") || !strings.Contains(msg, "b: second") {
		t.Errorf("unexpected message: %s", msg)
	}
	if (ValidationErrors{}).Error() != "" {
		t.Error("expected empty message for no errors")
	}
}
