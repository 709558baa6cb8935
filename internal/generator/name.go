package generator

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/dbsmedya/gomask/internal/config"
	"github.com/dbsmedya/gomask/internal/lexicon"
	"github.com/dbsmedya/gomask/internal/types"
)

const (
	scratchGender    = "gender"
	scratchFirstName = "first_name"
)

// EmailDomains are the domains derived emails are drawn from.
var EmailDomains = []string{"email.com", "letters.net", "communication.co.uk"}

// Name draws person names from the female and male lexicons, and derives
// emails from them.
//
// Groups select a union of lexicon groups; every name in the union is equally
// likely whatever the distribution setting, so "proportional" and "equal"
// behave the same.
type Name struct {
	params       config.NameParams
	target       string
	female, male *lexicon.Lexicon
	nameColumns  []string
	emailColumns map[string]bool

	// integerGender scopes the gender column by 1 and 2 only.
	integerGender bool

	// Fallback picks a gender when the row's gender is undetermined.
	Fallback GenderFallback
}

// NewName creates a name generator. nameColumns are the job's name columns,
// consulted when an email has to be derived from existing values.
func NewName(params config.NameParams, female, male *lexicon.Lexicon, nameColumns []string) *Name {
	emails := make(map[string]bool, len(params.EmailColumns))
	for _, c := range params.EmailColumns {
		emails[c] = true
	}
	return &Name{
		params:       params,
		target:       NormalizeTarget(params.Gender),
		female:       female,
		male:         male,
		nameColumns:  nameColumns,
		emailColumns: emails,
		Fallback:     RandomGender,
	}
}

// Validate checks the settings and that every gender the job may draw from has names.
func (n *Name) Validate() error {
	if n.params.Gender != "" && NormalizeGender(n.params.Gender) == "" && !strings.EqualFold(n.params.Gender, GenderBoth) {
		return fmt.Errorf("gender must be male, female or both, got %q", n.params.Gender)
	}
	switch n.params.Distribution {
	case "", "equal", "proportional":
	default:
		return fmt.Errorf("distribution must be equal or proportional, got %q", n.params.Distribution)
	}

	if !n.params.WritesNames() {
		return nil
	}
	for _, g := range n.genders() {
		if n.lexicon(g).Size(n.params.Groups) == 0 {
			return fmt.Errorf("%w: %s names in groups %v", ErrEmptyPool, g, n.params.Groups)
		}
	}
	return nil
}

// Scope restricts the SELECT to rows of the target gender.
func (n *Name) Scope() (string, []any, bool) {
	if n.params.GenderColumn == "" || n.target == GenderBoth {
		return "", nil, false
	}
	if n.integerGender {
		return n.params.GenderColumn, genderCodes[n.target], true
	}
	return n.params.GenderColumn, genderSpellings[n.target], true
}

// PrepareRow resolves the row's gender and skips rows that do not match the target.
func (n *Name) PrepareRow(req *Request) error {
	gender := n.target
	if n.params.GenderColumn != "" {
		raw, _ := req.Row.Get(n.params.GenderColumn)
		gender = ""
		if raw != nil {
			gender = NormalizeGender(types.ToString(raw))
		}
		if gender == "" {
			gender = n.Fallback(req.Rand)
		}
		if n.target != GenderBoth && gender != n.target {
			return ErrSkipRow
		}
	} else if gender == GenderBoth {
		gender = n.Fallback(req.Rand)
	}
	req.Scratch[scratchGender] = gender
	return nil
}

// Generate returns a name, or an email for configured email columns.
func (n *Name) Generate(req *Request) (any, error) {
	if n.emailColumns[req.Column.Name] {
		return Email(req.Rand, n.emailSource(req)), nil
	}

	gender, _ := req.Scratch[scratchGender].(string)
	if gender == "" {
		if err := n.PrepareRow(req); err != nil {
			return nil, err
		}
		gender = req.Scratch[scratchGender].(string)
	}

	lex := n.lexicon(gender)
	name, ok := lex.Draw(req.Rand, n.params.Groups)
	if !ok {
		return nil, fmt.Errorf("%w: %s names in groups %v", ErrEmptyPool, gender, n.params.Groups)
	}
	if n.params.FullName {
		last, _ := lex.Draw(req.Rand, n.params.Groups)
		name = name + " " + last
	}

	if _, ok := req.Scratch[scratchFirstName]; !ok {
		req.Scratch[scratchFirstName] = name
	}
	return name, nil
}

// emailSource picks the name an email is derived from: the first name
// generated for this row, else the row's non-empty name values joined by a
// space. The second case is how update_names: false jobs derive emails.
func (n *Name) emailSource(req *Request) string {
	if name, ok := req.Scratch[scratchFirstName].(string); ok && name != "" {
		return name
	}
	var parts []string
	for _, col := range n.nameColumns {
		if v, ok := req.Row.Get(col); ok && !types.IsEmpty(v) {
			parts = append(parts, strings.TrimSpace(types.ToString(v)))
		}
	}
	if len(parts) == 0 {
		return "user"
	}
	return strings.Join(parts, " ")
}

func (n *Name) genders() []string {
	if n.target == GenderBoth {
		return []string{GenderFemale, GenderMale}
	}
	return []string{n.target}
}

func (n *Name) lexicon(gender string) *lexicon.Lexicon {
	if gender == GenderMale {
		return n.male
	}
	return n.female
}

// Email derives an address from a name: lowercased, first and last token
// joined by a dot, a 3-digit suffix and one of EmailDomains.
func Email(rng *rand.Rand, name string) string {
	parts := strings.Fields(strings.ToLower(name))
	local := "user"
	switch len(parts) {
	case 0:
	case 1:
		local = parts[0]
	default:
		local = parts[0] + "." + parts[len(parts)-1]
	}
	suffix := 100 + rng.IntN(900)
	domain := EmailDomains[rng.IntN(len(EmailDomains))]
	return fmt.Sprintf("%s%d@%s", local, suffix, domain)
}
