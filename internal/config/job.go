package config

// Generator kinds.
const (
	KindName    = "name"
	KindCompany = "company"
	KindPhone   = "phone"
	KindDate    = "date"
	KindCode    = "code"
	KindGeo     = "geo"
)

// JobConfig describes one generation job: which table and columns to rewrite,
// which rows to touch and how new values are produced.
type JobConfig struct {
	Table        string            `yaml:"table" mapstructure:"table"`
	PrimaryKey   string            `yaml:"primary_key" mapstructure:"primary_key"`
	Columns      []string          `yaml:"columns" mapstructure:"columns"`
	PreserveNull bool              `yaml:"preserve_null" mapstructure:"preserve_null"`
	DryRun       bool              `yaml:"dry_run" mapstructure:"dry_run"`
	Filter       []Predicate       `yaml:"filter" mapstructure:"filter"`
	Processing   *ProcessingConfig `yaml:"processing,omitempty" mapstructure:"processing"`
	Generator    GeneratorConfig   `yaml:"generator" mapstructure:"generator"`
}

// Predicate is one structured row filter condition. Predicates are ANDed.
type Predicate struct {
	Column   string `yaml:"column" mapstructure:"column"`
	Operator string `yaml:"operator" mapstructure:"operator"`
	Value    any    `yaml:"value" mapstructure:"value"`
}

// GeneratorConfig selects the generator kind. Exactly the params block that
// matches Kind must be set.
type GeneratorConfig struct {
	Kind    string         `yaml:"kind" mapstructure:"kind"`
	// Unique defaults to true for code jobs loaded from a file.
	Unique  bool           `yaml:"unique" mapstructure:"unique"`
	Name    *NameParams    `yaml:"name,omitempty" mapstructure:"name"`
	Company *CompanyParams `yaml:"company,omitempty" mapstructure:"company"`
	Phone   *PhoneParams   `yaml:"phone,omitempty" mapstructure:"phone"`
	Date    *DateParams    `yaml:"date,omitempty" mapstructure:"date"`
	Code    *CodeParams    `yaml:"code,omitempty" mapstructure:"code"`
	Geo     *GeoParams     `yaml:"geo,omitempty" mapstructure:"geo"`
}

// NameParams configures person name generation.
type NameParams struct {
	Gender       string   `yaml:"gender" mapstructure:"gender"` // male, female, both
	GenderColumn string   `yaml:"gender_column" mapstructure:"gender_column"`
	Groups       []string `yaml:"groups" mapstructure:"groups"`
	Distribution string   `yaml:"distribution" mapstructure:"distribution"` // equal, proportional
	FullName     bool     `yaml:"full_name" mapstructure:"full_name"`
	EmailColumns []string `yaml:"email_columns" mapstructure:"email_columns"`
	// UpdateNames set to false keeps the name columns untouched and only
	// rewrites EmailColumns, deriving each address from the existing names.
	UpdateNames *bool `yaml:"update_names,omitempty" mapstructure:"update_names"`
}

// WritesNames reports whether the name columns are regenerated. Unset means true.
func (p *NameParams) WritesNames() bool {
	return p == nil || p.UpdateNames == nil || *p.UpdateNames
}

// CompanyParams configures company name generation.
type CompanyParams struct {
	Name1Groups          []string `yaml:"name1_groups" mapstructure:"name1_groups"`
	Name2Groups          []string `yaml:"name2_groups" mapstructure:"name2_groups"`
	ClassificationGroups []string `yaml:"classification_groups" mapstructure:"classification_groups"`
}

// PhoneParams configures phone number generation. Country may be used
// instead of CountryCode to pick a code from the built-in catalogue.
type PhoneParams struct {
	CountryCode string `yaml:"country_code" mapstructure:"country_code"`
	Country     string `yaml:"country" mapstructure:"country"`
	Prefix      string `yaml:"prefix" mapstructure:"prefix"`
	Min         int64  `yaml:"min" mapstructure:"min"`
	Max         int64  `yaml:"max" mapstructure:"max"`
}

// DateParams configures date generation. Start and End use 2006-01-02 or
// 2006-01-02 15:04:05.
type DateParams struct {
	Start       string `yaml:"start" mapstructure:"start"`
	End         string `yaml:"end" mapstructure:"end"`
	IncludeTime bool   `yaml:"include_time" mapstructure:"include_time"`
}

// CodeParams configures serial code generation.
type CodeParams struct {
	Alphabet string `yaml:"alphabet" mapstructure:"alphabet"` // letters, numbers, mixed
	Length   int    `yaml:"length" mapstructure:"length"`
	Prefix   string `yaml:"prefix" mapstructure:"prefix"`
}

// GeoParams configures coordinate generation. Either Description (resolved
// through the geo endpoint) or Bounds must be set.
type GeoParams struct {
	LatColumn   string     `yaml:"lat_column" mapstructure:"lat_column"`
	LngColumn   string     `yaml:"lng_column" mapstructure:"lng_column"`
	Description string     `yaml:"description" mapstructure:"description"`
	APIKey      string     `yaml:"api_key" mapstructure:"api_key"`
	Bounds      *GeoBounds `yaml:"bounds,omitempty" mapstructure:"bounds"`
}

// GeoBounds is an explicit bounding box in job configuration.
type GeoBounds struct {
	MinLat float64 `yaml:"min_lat" mapstructure:"min_lat"`
	MaxLat float64 `yaml:"max_lat" mapstructure:"max_lat"`
	MinLng float64 `yaml:"min_lng" mapstructure:"min_lng"`
	MaxLng float64 `yaml:"max_lng" mapstructure:"max_lng"`
}

// TargetColumns returns the columns the job writes, in generation order.
// Geo jobs write lat_column and lng_column; name jobs append their email
// columns after the name columns so emails can derive from fresh names.
// With update_names false only the email columns are written.
func (jc *JobConfig) TargetColumns() []string {
	g := jc.Generator
	switch {
	case g.Kind == KindGeo && g.Geo != nil:
		var cols []string
		if g.Geo.LatColumn != "" {
			cols = append(cols, g.Geo.LatColumn)
		}
		if g.Geo.LngColumn != "" {
			cols = append(cols, g.Geo.LngColumn)
		}
		return cols
	case g.Kind == KindName && g.Name != nil && !g.Name.WritesNames():
		return g.Name.EmailColumns
	case g.Kind == KindName && g.Name != nil && len(g.Name.EmailColumns) > 0:
		cols := make([]string, 0, len(jc.Columns)+len(g.Name.EmailColumns))
		cols = append(cols, jc.Columns...)
		return append(cols, g.Name.EmailColumns...)
	}
	return jc.Columns
}

// PrimaryKeyColumn returns the configured primary key or "id".
func (jc *JobConfig) PrimaryKeyColumn() string {
	if jc.PrimaryKey == "" {
		return "id"
	}
	return jc.PrimaryKey
}
