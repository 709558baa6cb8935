package generator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/lexicon"
)

// Company builds "Name1 Name2 Classification" from three independent draws.
type Company struct {
	params         config.CompanyParams
	name1          *lexicon.Lexicon
	name2          *lexicon.Lexicon
	classification *lexicon.Lexicon
}

// NewCompany creates a company name generator.
func NewCompany(params config.CompanyParams, name1, name2, classification *lexicon.Lexicon) *Company {
	return &Company{params: params, name1: name1, name2: name2, classification: classification}
}

func (c *Company) Validate() error {
	for _, part := range c.parts() {
		if part.lex.Size(part.groups) == 0 {
			return fmt.Errorf("%w: %s in groups %v", ErrEmptyPool, part.name, part.groups)
		}
	}
	return nil
}

func (c *Company) Generate(req *Request) (any, error) {
	var words []string
	for i, part := range c.parts() {
		v, ok := part.lex.Draw(req.Rand, part.groups)
		if !ok {
			return nil, fmt.Errorf("%w: %s in groups %v", ErrEmptyPool, part.name, part.groups)
		}
		if i < 2 {
			v = Capitalize(v)
		}
		words = append(words, v)
	}
	return strings.Join(words, " "), nil
}

type companyPart struct {
	name   string
	lex    *lexicon.Lexicon
	groups []string
}

func (c *Company) parts() []companyPart {
	return []companyPart{
		{"name1", c.name1, c.params.Name1Groups},
		{"name2", c.name2, c.params.Name2Groups},
		{"classification", c.classification, c.params.ClassificationGroups},
	}
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
