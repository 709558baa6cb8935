package generator

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/types"
)

// Temporal column kinds.
const (
	TemporalDate     = "DATE"
	TemporalTime     = "TIME"
	TemporalYear     = "YEAR"
	TemporalDateTime = "DATETIME"
)

// TemporalKind classifies a catalog data type. timestamp and datetime are
// checked before time so "timestamp" is not taken for TIME.
// Unknown types are treated as DATETIME.
func TemporalKind(dataType string) string {
	t := strings.ToLower(dataType)
	switch {
	case strings.Contains(t, "timestamp"), strings.Contains(t, "datetime"):
		return TemporalDateTime
	case strings.Contains(t, "date"):
		return TemporalDate
	case strings.Contains(t, "year"):
		return TemporalYear
	case strings.Contains(t, "time"):
		return TemporalTime
	}
	return TemporalDateTime
}

// Date draws a uniform instant in [start, end] at second granularity and
// formats it for the target column's type.
type Date struct {
	params     config.DateParams
	start, end time.Time
	err        error
}

// NewDate creates a date generator. Parse errors surface from Validate.
func NewDate(params config.DateParams) *Date {
	d := &Date{params: params}
	if d.start, d.err = types.ParseDate(params.Start); d.err != nil {
		d.err = fmt.Errorf("start: %w", d.err)
		return d
	}
	if d.end, d.err = types.ParseDate(params.End); d.err != nil {
		d.err = fmt.Errorf("end: %w", d.err)
	}
	return d
}

func (d *Date) Validate() error {
	if d.err != nil {
		return d.err
	}
	if d.end.Before(d.start) {
		return fmt.Errorf("end (%s) is before start (%s)", d.params.End, d.params.Start)
	}
	return nil
}

func (d *Date) Generate(req *Request) (any, error) {
	span := int64(d.end.Sub(d.start) / time.Second)
	t := d.start.Add(time.Duration(req.Rand.Int64N(span+1)) * time.Second)
	return FormatTemporal(t, TemporalKind(req.Column.Type), d.params.IncludeTime), nil
}

// FormatTemporal renders t for a column kind. DATETIME values are set to
// midnight when includeTime is false.
func FormatTemporal(t time.Time, kind string, includeTime bool) string {
	switch kind {
	case TemporalDate:
		return t.Format("2006-01-02")
	case TemporalTime:
		return t.Format("15:04:05")
	case TemporalYear:
		return t.Format("2006")
	}
	if !includeTime {
		return t.Format("2006-01-02") + " 00:00:00"
	}
	return t.Format("2006-01-02 15:04:05")
}
