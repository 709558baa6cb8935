package generator

import (
	"math/rand/v2"
	"strings"
)

// Genders.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderBoth   = "both"
)

// NormalizeGender maps the common spellings found in gender columns to
// "male" or "female". Anything else returns "".
func NormalizeGender(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m", "1":
		return GenderMale
	case "female", "f", "2":
		return GenderFemale
	}
	return ""
}

// NormalizeTarget maps a configured target gender to male, female or both.
// Empty and unknown values mean both.
func NormalizeTarget(value string) string {
	if g := NormalizeGender(value); g != "" {
		return g
	}
	return GenderBoth
}

// GenderFallback decides the gender of a row whose gender is undetermined.
type GenderFallback func(rng *rand.Rand) string

// RandomGender is the default fallback: male or female with equal probability.
func RandomGender(rng *rand.Rand) string {
	if rng.IntN(2) == 0 {
		return GenderMale
	}
	return GenderFemale
}

// genderCodes are bound instead of genderSpellings for integer gender columns.
var genderCodes = map[string][]any{
	GenderMale:   {int64(1)},
	GenderFemale: {int64(2)},
}

// genderSpellings are matched by the gender scope IN clause.
var genderSpellings = map[string][]any{
	GenderMale:   {"male", "Male", "MALE", "M", "m", "1"},
	GenderFemale: {"female", "Female", "FEMALE", "F", "f", "2"},
}
