package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dbsmedya/gomask/internal/sqlutil"
	"github.com/dbsmedya/gomask/internal/types"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
// Every problem is collected before returning.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateDatabase()...)

	if len(c.Jobs) == 0 {
		errors = append(errors, ValidationError{
			Field:   "jobs",
			Message: "at least one job must be defined",
		})
	}
	for _, name := range c.ListJobs() {
		job := c.Jobs[name]
		errors = append(errors, validateJob(name, &job)...)
		if job.Processing != nil {
			errors = append(errors, validateProcessing("jobs."+name+".processing", *job.Processing, true)...)
		}
	}

	errors = append(errors, validateProcessing("processing", c.Processing, false)...)
	errors = append(errors, c.validateGeo()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateJob checks one job on its own.
func ValidateJob(name string, job *JobConfig) error {
	if errors := validateJob(name, job); len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateDatabase() ValidationErrors {
	var errors ValidationErrors
	db := &c.Database

	if db.Driver != DriverMySQL && db.Driver != DriverPostgres && db.Driver != "" {
		errors = append(errors, ValidationError{
			Field:   "database.driver",
			Message: "driver must be 'mysql' or 'postgres'",
		})
	}

	if db.Host == "" {
		errors = append(errors, ValidationError{
			Field:   "database.host",
			Message: "host is required",
		})
	}

	if db.Port <= 0 || db.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "database.port",
			Message: "port must be between 1 and 65535",
		})
	}

	if db.User == "" {
		errors = append(errors, ValidationError{
			Field:   "database.user",
			Message: "user is required",
		})
	}

	if db.Database == "" {
		errors = append(errors, ValidationError{
			Field:   "database.database",
			Message: "database name is required",
		})
	}

	if db.Schema != "" && !sqlutil.IsValidIdentifier(db.Schema) {
		errors = append(errors, ValidationError{
			Field:   "database.schema",
			Message: "schema must contain only letters, digits and underscores",
		})
	}

	validTLS := map[string]bool{"disable": true, "preferred": true, "required": true, "": true}
	if !validTLS[db.TLS] {
		errors = append(errors, ValidationError{
			Field:   "database.tls",
			Message: "tls must be 'disable', 'preferred', or 'required'",
		})
	}

	if db.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_connections",
			Message: "max_connections cannot be negative",
		})
	}

	if db.MaxIdleConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "database.max_idle_connections",
			Message: "max_idle_connections cannot be negative",
		})
	}

	return errors
}

func validateJob(name string, job *JobConfig) ValidationErrors {
	var errors ValidationErrors
	prefix := fmt.Sprintf("jobs.%s", name)

	if job.Table == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".table",
			Message: "table is required",
		})
	} else if !sqlutil.IsValidIdentifier(job.Table) {
		errors = append(errors, identifierError(prefix+".table", job.Table))
	}

	if job.PrimaryKey != "" && !sqlutil.IsValidIdentifier(job.PrimaryKey) {
		errors = append(errors, identifierError(prefix+".primary_key", job.PrimaryKey))
	}

	if job.Generator.Kind != KindGeo && len(job.Columns) == 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".columns",
			Message: "at least one column is required",
		})
	}
	for i, col := range job.Columns {
		if !sqlutil.IsValidIdentifier(col) {
			errors = append(errors, identifierError(fmt.Sprintf("%s.columns[%d]", prefix, i), col))
		}
	}

	for i, pred := range job.Filter {
		errors = append(errors, validatePredicate(fmt.Sprintf("%s.filter[%d]", prefix, i), pred)...)
	}

	errors = append(errors, validateGenerator(prefix+".generator", job)...)
	return errors
}

func validatePredicate(prefix string, pred Predicate) ValidationErrors {
	var errors ValidationErrors

	if !sqlutil.IsValidIdentifier(pred.Column) {
		errors = append(errors, identifierError(prefix+".column", pred.Column))
	}

	op := sqlutil.NormalizeOperator(pred.Operator)
	if !sqlutil.IsValidOperator(op) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".operator",
			Message: fmt.Sprintf("unsupported operator %q", pred.Operator),
		})
		return errors
	}

	switch op {
	case sqlutil.OpIsNull, sqlutil.OpIsNotNull:
		if pred.Value != nil {
			errors = append(errors, ValidationError{
				Field:   prefix + ".value",
				Message: fmt.Sprintf("operator %q takes no value", op),
			})
		}
		return errors
	}

	if pred.Value == nil {
		errors = append(errors, ValidationError{
			Field:   prefix + ".value",
			Message: fmt.Sprintf("operator %q needs a value", op),
		})
		return errors
	}

	if err := sqlutil.CheckValue(pred.Value); err != nil {
		errors = append(errors, ValidationError{
			Field:   prefix + ".value",
			Message: err.Error(),
		})
	}
	return errors
}

func validateGenerator(prefix string, job *JobConfig) ValidationErrors {
	var errors ValidationErrors
	g := job.Generator

	params := map[string]bool{
		KindName:    g.Name != nil,
		KindCompany: g.Company != nil,
		KindPhone:   g.Phone != nil,
		KindDate:    g.Date != nil,
		KindCode:    g.Code != nil,
		KindGeo:     g.Geo != nil,
	}
	if _, ok := params[g.Kind]; !ok {
		errors = append(errors, ValidationError{
			Field:   prefix + ".kind",
			Message: "kind must be one of name, company, phone, date, code, geo",
		})
		return errors
	}
	for kind, set := range params {
		if set && kind != g.Kind {
			errors = append(errors, ValidationError{
				Field:   prefix + "." + kind,
				Message: fmt.Sprintf("params block %q does not match kind %q", kind, g.Kind),
			})
		}
	}
	// Company is the only kind whose params are all optional.
	if !params[g.Kind] && g.Kind != KindCompany {
		errors = append(errors, ValidationError{
			Field:   prefix + "." + g.Kind,
			Message: fmt.Sprintf("kind %q requires a %q params block", g.Kind, g.Kind),
		})
		return errors
	}

	switch g.Kind {
	case KindName:
		errors = append(errors, validateNameParams(prefix+".name", g.Name)...)
	case KindPhone:
		errors = append(errors, validatePhoneParams(prefix+".phone", g.Phone)...)
	case KindDate:
		errors = append(errors, validateDateParams(prefix+".date", g.Date)...)
	case KindCode:
		errors = append(errors, validateCodeParams(prefix+".code", g.Code)...)
	case KindGeo:
		errors = append(errors, validateGeoParams(prefix+".geo", g.Geo)...)
	}
	return errors
}

func validateNameParams(prefix string, p *NameParams) ValidationErrors {
	var errors ValidationErrors

	switch strings.ToLower(p.Gender) {
	case "", "male", "female", "both":
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".gender",
			Message: "gender must be 'male', 'female' or 'both'",
		})
	}
	if p.GenderColumn != "" && !sqlutil.IsValidIdentifier(p.GenderColumn) {
		errors = append(errors, identifierError(prefix+".gender_column", p.GenderColumn))
	}
	switch p.Distribution {
	case "", "equal", "proportional":
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".distribution",
			Message: "distribution must be 'equal' or 'proportional'",
		})
	}
	for i, col := range p.EmailColumns {
		if !sqlutil.IsValidIdentifier(col) {
			errors = append(errors, identifierError(fmt.Sprintf("%s.email_columns[%d]", prefix, i), col))
		}
	}
	if !p.WritesNames() && len(p.EmailColumns) == 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".email_columns",
			Message: "email_columns is required when update_names is false",
		})
	}
	return errors
}

func validatePhoneParams(prefix string, p *PhoneParams) ValidationErrors {
	var errors ValidationErrors

	if p.CountryCode == "" && p.Country == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".country_code",
			Message: "country_code or country is required",
		})
	}
	if p.Min < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".min",
			Message: "min cannot be negative",
		})
	}
	if p.Max < p.Min {
		errors = append(errors, ValidationError{
			Field:   prefix + ".max",
			Message: "max must not be less than min",
		})
	}
	return errors
}

func validateDateParams(prefix string, p *DateParams) ValidationErrors {
	var errors ValidationErrors

	start, startErr := parseDateParam(p.Start)
	if startErr != nil {
		errors = append(errors, ValidationError{Field: prefix + ".start", Message: startErr.Error()})
	}
	end, endErr := parseDateParam(p.End)
	if endErr != nil {
		errors = append(errors, ValidationError{Field: prefix + ".end", Message: endErr.Error()})
	}
	if startErr == nil && endErr == nil && end.Before(start) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".end",
			Message: "end must not be before start",
		})
	}
	return errors
}

func parseDateParam(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	return types.ParseDate(s)
}

func validateCodeParams(prefix string, p *CodeParams) ValidationErrors {
	var errors ValidationErrors

	switch p.Alphabet {
	case "", "letters", "numbers", "mixed":
	default:
		errors = append(errors, ValidationError{
			Field:   prefix + ".alphabet",
			Message: "alphabet must be 'letters', 'numbers' or 'mixed'",
		})
	}
	if p.Length <= 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".length",
			Message: "length must be positive",
		})
	}
	if len(p.Prefix) > 3 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".prefix",
			Message: "prefix may be at most 3 characters",
		})
	}
	return errors
}

func validateGeoParams(prefix string, p *GeoParams) ValidationErrors {
	var errors ValidationErrors

	for field, col := range map[string]string{"lat_column": p.LatColumn, "lng_column": p.LngColumn} {
		if col == "" {
			errors = append(errors, ValidationError{
				Field:   prefix + "." + field,
				Message: field + " is required",
			})
		} else if !sqlutil.IsValidIdentifier(col) {
			errors = append(errors, identifierError(prefix+"."+field, col))
		}
	}
	if p.LatColumn != "" && p.LatColumn == p.LngColumn {
		errors = append(errors, ValidationError{
			Field:   prefix + ".lng_column",
			Message: "lat_column and lng_column must differ",
		})
	}
	if b := p.Bounds; b != nil {
		for _, f := range []struct {
			name  string
			value float64
		}{{"min_lat", b.MinLat}, {"max_lat", b.MaxLat}, {"min_lng", b.MinLng}, {"max_lng", b.MaxLng}} {
			if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
				errors = append(errors, ValidationError{
					Field:   prefix + ".bounds." + f.name,
					Message: "must be a finite number",
				})
			}
		}
	}
	if p.Bounds == nil && strings.TrimSpace(p.Description) == "" {
		errors = append(errors, ValidationError{
			Field:   prefix + ".description",
			Message: "description or bounds is required",
		})
	}
	return errors
}

func validateProcessing(prefix string, p ProcessingConfig, override bool) ValidationErrors {
	var errors ValidationErrors

	// Zero in a job override means "inherit".
	if p.BatchSize < 0 || (!override && p.BatchSize == 0) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".batch_size",
			Message: "batch_size must be positive",
		})
	}

	if p.PreviewLimit < 0 || (!override && p.PreviewLimit == 0) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".preview_limit",
			Message: "preview_limit must be positive",
		})
	}

	if p.UniqueMaxAttempts < 0 || (!override && p.UniqueMaxAttempts == 0) {
		errors = append(errors, ValidationError{
			Field:   prefix + ".unique_max_attempts",
			Message: "unique_max_attempts must be positive",
		})
	}

	validModes := map[string]bool{TransactionPerJob: true, TransactionPerBatch: true, "": true}
	if !validModes[p.TransactionMode] {
		errors = append(errors, ValidationError{
			Field:   prefix + ".transaction_mode",
			Message: "transaction_mode must be 'job' or 'batch'",
		})
	}

	if p.SleepSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   prefix + ".sleep_seconds",
			Message: "sleep_seconds cannot be negative",
		})
	}

	return errors
}

func (c *Config) validateGeo() ValidationErrors {
	var errors ValidationErrors

	if c.Geo.TimeoutSeconds < 0 {
		errors = append(errors, ValidationError{
			Field:   "geo.timeout_seconds",
			Message: "timeout_seconds cannot be negative",
		})
	}
	if c.Geo.MaxTokens < 0 {
		errors = append(errors, ValidationError{
			Field:   "geo.max_tokens",
			Message: "max_tokens cannot be negative",
		})
	}
	if c.Geo.Temperature < 0 || c.Geo.Temperature > 2 {
		errors = append(errors, ValidationError{
			Field:   "geo.temperature",
			Message: "temperature must be between 0 and 2",
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "": true}
	if !validLevels[c.Logging.Level] {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: "level must be 'debug', 'info', 'warn', or 'error'",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true, "": true}
	if !validFormats[c.Logging.Format] {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: "format must be 'json' or 'text'",
		})
	}

	return errors
}

func identifierError(field, value string) ValidationError {
	return ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid identifier %q (letters, digits and underscores only)", value),
	}
}
