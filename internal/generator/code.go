package generator

import (
	"fmt"
	"strings"

	"github.com/dbsmedya/gomask/internal/config"
)

// Code alphabets.
const (
	AlphabetLetters = "letters"
	AlphabetNumbers = "numbers"
	AlphabetMixed   = "mixed"
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"
)

// MaxCodePrefix is the longest accepted prefix.
const MaxCodePrefix = 3

// Code produces an upper-cased prefix followed by random characters. The
// prefix counts toward Length; at least one random character is always added.
type Code struct {
	params  config.CodeParams
	charset string
	prefix  string
}

// NewCode creates a code generator. An empty alphabet means mixed.
func NewCode(params config.CodeParams) *Code {
	c := &Code{params: params, prefix: strings.ToUpper(params.Prefix)}
	switch params.Alphabet {
	case AlphabetLetters:
		c.charset = letters
	case AlphabetNumbers:
		c.charset = digits
	case AlphabetMixed, "":
		c.charset = letters + digits
	}
	return c
}

func (c *Code) Validate() error {
	if c.charset == "" {
		return fmt.Errorf("alphabet must be letters, numbers or mixed, got %q", c.params.Alphabet)
	}
	if c.params.Length <= 0 {
		return fmt.Errorf("length must be positive")
	}
	if len(c.prefix) > MaxCodePrefix {
		return fmt.Errorf("prefix %q is longer than %d characters", c.params.Prefix, MaxCodePrefix)
	}
	return nil
}

func (c *Code) Generate(req *Request) (any, error) {
	n := max(c.params.Length-len(c.prefix), 1)

	var b strings.Builder
	b.Grow(len(c.prefix) + n)
	b.WriteString(c.prefix)
	for i := 0; i < n; i++ {
		b.WriteByte(c.charset[req.Rand.IntN(len(c.charset))])
	}
	return b.String(), nil
}
