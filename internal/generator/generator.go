// Package generator produces replacement values for masked columns.
//
// Each generator kind implements Generator. A job builds one generator with
// New and calls Generate once per target column of every row; values are
// produced once and reused for both the preview and the UPDATE.
package generator

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/geobounds"
	"github.com/dbsmedya/gomask/internal/lexicon"
	"github.com/dbsmedya/gomask/internal/types"
)

var (
	// ErrSkipRow tells the caller to leave the row untouched. It is not an error condition.
	ErrSkipRow = errors.New("row skipped")
	// ErrUniqueExhausted is returned when no unused value was found within the retry cap.
	ErrUniqueExhausted = errors.New("unique value retries exhausted")
	// ErrEmptyPool is returned when the lexicon selection holds no values.
	ErrEmptyPool = errors.New("no values available for selection")
)

// Request carries everything a generator may look at for one column of one row.
type Request struct {
	Row    *types.Row
	Column types.Column
	Rand   *rand.Rand
	// Scratch is shared by all columns of the same row and reset between rows.
	Scratch map[string]any
}

// NewRequest prepares a request for a new row.
func NewRequest(row *types.Row, rng *rand.Rand) *Request {
	return &Request{Row: row, Rand: rng, Scratch: make(map[string]any)}
}

// Generator produces one value for the requested column.
type Generator interface {
	Generate(req *Request) (any, error)
	Validate() error
}

// RowPreparer is implemented by generators that need to look at the whole
// row before any column is generated. Returning ErrSkipRow skips the row.
type RowPreparer interface {
	PrepareRow(req *Request) error
}

// Scoper is implemented by generators that restrict which rows are read.
type Scoper interface {
	Scope() (column string, values []any, ok bool)
}

// Deps are the shared collaborators generators are built from.
type Deps struct {
	Lexicons *lexicon.Set
	// Bounds is the resolved box for geo jobs.
	Bounds *geobounds.BoundingBox
	// NameColumns are the job's name columns, used when deriving emails.
	NameColumns []string
	// GenderColumn is the schema entry of the name job's gender column.
	// Integer columns are scoped with numeric codes instead of spellings.
	GenderColumn types.Column
	// LatColumn and LngColumn identify the coordinate columns of geo jobs.
	LatColumn string
	LngColumn string
	// UniqueMaxAttempts caps retries when the generator is unique.
	UniqueMaxAttempts int
}

// New builds and validates the generator for a job's generator config.
func New(cfg config.GeneratorConfig, deps Deps) (Generator, error) {
	lex := deps.Lexicons
	if lex == nil {
		lex = lexicon.EmptySet()
	}

	var g Generator
	switch cfg.Kind {
	case config.KindName:
		if cfg.Name == nil {
			return nil, missingParams(cfg.Kind)
		}
		name := NewName(*cfg.Name, lex.Female, lex.Male, deps.NameColumns)
		name.integerGender = deps.GenderColumn.IsInteger()
		g = name
	case config.KindCompany:
		params := config.CompanyParams{}
		if cfg.Company != nil {
			params = *cfg.Company
		}
		g = NewCompany(params, lex.Name1, lex.Name2, lex.Classification)
	case config.KindPhone:
		if cfg.Phone == nil {
			return nil, missingParams(cfg.Kind)
		}
		g = NewPhone(*cfg.Phone)
	case config.KindDate:
		if cfg.Date == nil {
			return nil, missingParams(cfg.Kind)
		}
		g = NewDate(*cfg.Date)
	case config.KindCode:
		if cfg.Code == nil {
			return nil, missingParams(cfg.Kind)
		}
		g = NewCode(*cfg.Code)
	case config.KindGeo:
		if deps.Bounds == nil {
			return nil, fmt.Errorf("geo generator needs resolved bounds")
		}
		g = NewGeo(*deps.Bounds, deps.LatColumn, deps.LngColumn)
	default:
		return nil, fmt.Errorf("unknown generator kind %q", cfg.Kind)
	}

	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s generator: %w", cfg.Kind, err)
	}

	if cfg.Unique {
		g = NewUnique(g, deps.UniqueMaxAttempts)
	}
	return g, nil
}

func missingParams(kind string) error {
	return fmt.Errorf("generator kind %q requires a %q params block", kind, kind)
}
