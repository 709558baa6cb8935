package sqlutil

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/squirrel"
	libinjection "github.com/corazawaf/libinjection-go"
)

// Filter operators accepted in job predicates.
const (
	OpEq        = "="
	OpNotEq     = "!="
	OpLt        = "<"
	OpLtOrEq    = "<="
	OpGt        = ">"
	OpGtOrEq    = ">="
	OpLike      = "like"
	OpNotLike   = "not like"
	OpIn        = "in"
	OpNotIn     = "not in"
	OpIsNull    = "is null"
	OpIsNotNull = "is not null"
)

var operators = map[string]bool{
	OpEq: true, OpNotEq: true, OpLt: true, OpLtOrEq: true, OpGt: true, OpGtOrEq: true,
	OpLike: true, OpNotLike: true, OpIn: true, OpNotIn: true, OpIsNull: true, OpIsNotNull: true,
}

// NormalizeOperator lowercases an operator, collapses inner whitespace and
// maps "<>" to "!=".
func NormalizeOperator(op string) string {
	op = strings.ToLower(strings.Join(strings.Fields(op), " "))
	if op == "<>" {
		return OpNotEq
	}
	return op
}

// IsValidOperator reports whether op (after normalisation) is supported.
func IsValidOperator(op string) bool {
	return operators[NormalizeOperator(op)]
}

// UnsafeValueError is returned when a filter value looks like SQL injection.
type UnsafeValueError struct {
	Value       string
	Fingerprint string
}

func (e *UnsafeValueError) Error() string {
	return fmt.Sprintf("unsafe filter value %q (fingerprint %s)", e.Value, e.Fingerprint)
}

// CheckValue runs libinjection over every string in a filter value.
// Values are always bound as parameters, this only rejects obviously hostile input early.
func CheckValue(value any) error {
	for _, v := range flatten(value) {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(s); isSQLi {
			return &UnsafeValueError{Value: s, Fingerprint: fingerprint}
		}
	}
	return nil
}

// Condition translates one predicate into a parameterised squirrel clause.
// quote is applied to the column name.
func Condition(column, operator string, value any, quote func(string) string) (squirrel.Sqlizer, error) {
	if !IsValidIdentifier(column) {
		return nil, &InvalidIdentifierError{Name: column}
	}
	col := quote(column)

	switch NormalizeOperator(operator) {
	case OpEq:
		return squirrel.Eq{col: value}, nil
	case OpNotEq:
		return squirrel.NotEq{col: value}, nil
	case OpLt:
		return squirrel.Lt{col: value}, nil
	case OpLtOrEq:
		return squirrel.LtOrEq{col: value}, nil
	case OpGt:
		return squirrel.Gt{col: value}, nil
	case OpGtOrEq:
		return squirrel.GtOrEq{col: value}, nil
	case OpLike:
		return squirrel.Like{col: value}, nil
	case OpNotLike:
		return squirrel.NotLike{col: value}, nil
	case OpIn:
		values := flatten(value)
		if len(values) == 0 {
			return nil, fmt.Errorf("operator %q needs at least one value", operator)
		}
		return squirrel.Eq{col: values}, nil
	case OpNotIn:
		values := flatten(value)
		if len(values) == 0 {
			return nil, fmt.Errorf("operator %q needs at least one value", operator)
		}
		return squirrel.NotEq{col: values}, nil
	case OpIsNull:
		return squirrel.Eq{col: nil}, nil
	case OpIsNotNull:
		return squirrel.NotEq{col: nil}, nil
	}
	return nil, fmt.Errorf("unsupported filter operator %q", operator)
}

// flatten turns a scalar or slice value into a []any.
func flatten(value any) []any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{value}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
