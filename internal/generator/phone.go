package generator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dbsmedya/gomask/internal/config"
)

// CountryCodes maps country names to dialling codes.
var CountryCodes = map[string]string{
	"Uganda":       "+256",
	"Kenya":        "+254",
	"Tanzania":     "+255",
	"Rwanda":       "+250",
	"USA":          "+1",
	"UK":           "+44",
	"South Africa": "+27",
	"Nigeria":      "+234",
	"Ghana":        "+233",
	"India":        "+91",
	"Pakistan":     "+92",
	"Bangladesh":   "+880",
}

// Countries returns the catalogue's country names, sorted.
func Countries() []string {
	names := make([]string, 0, len(CountryCodes))
	for name := range CountryCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupCountryCode finds a code by country name, case-insensitively.
func LookupCountryCode(country string) (string, bool) {
	for name, code := range CountryCodes {
		if strings.EqualFold(name, strings.TrimSpace(country)) {
			return code, true
		}
	}
	return "", false
}

// Phone produces country_code + prefix + a random number in [min, max].
// The number is not zero padded, so the digit count varies.
type Phone struct {
	params config.PhoneParams
	code   string
}

// NewPhone creates a phone generator.
func NewPhone(params config.PhoneParams) *Phone {
	code := params.CountryCode
	if code == "" && params.Country != "" {
		code, _ = LookupCountryCode(params.Country)
	}
	return &Phone{params: params, code: code}
}

func (p *Phone) Validate() error {
	if p.code == "" {
		if p.params.Country != "" {
			return fmt.Errorf("unknown country %q", p.params.Country)
		}
		return fmt.Errorf("country_code or country is required")
	}
	if p.params.Min < 0 {
		return fmt.Errorf("min cannot be negative")
	}
	if p.params.Min > p.params.Max {
		return fmt.Errorf("min (%d) must not exceed max (%d)", p.params.Min, p.params.Max)
	}
	return nil
}

func (p *Phone) Generate(req *Request) (any, error) {
	// Max-Min fits in int64 because Min >= 0; adding one may not.
	n := p.params.Min + int64(req.Rand.Uint64N(uint64(p.params.Max-p.params.Min)+1))
	return p.code + p.params.Prefix + strconv.FormatInt(n, 10), nil
}
