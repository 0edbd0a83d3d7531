package docstore

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Method names a query operator. Values match the hosted store's wire names.
type Method string

const (
	MethodEqual            Method = "equal"
	MethodNotEqual         Method = "notEqual"
	MethodLessThan         Method = "lessThan"
	MethodLessThanEqual    Method = "lessThanEqual"
	MethodGreaterThan      Method = "greaterThan"
	MethodGreaterThanEqual Method = "greaterThanEqual"
	MethodIsNull           Method = "isNull"
	MethodIsNotNull        Method = "isNotNull"
	MethodOrderAsc         Method = "orderAsc"
	MethodOrderDesc        Method = "orderDesc"
	MethodLimit            Method = "limit"
	MethodOffset           Method = "offset"
)

// Query is one filter, ordering or pagination clause of a list call.
type Query struct {
	Method    Method `json:"method"`
	Attribute string `json:"attribute,omitempty"`
	Values    []any  `json:"values,omitempty"`
}

func Equal(attr string, v any) Query {
	return Query{Method: MethodEqual, Attribute: attr, Values: []any{v}}
}

func NotEqual(attr string, v any) Query {
	return Query{Method: MethodNotEqual, Attribute: attr, Values: []any{v}}
}

func LessThan(attr string, v any) Query {
	return Query{Method: MethodLessThan, Attribute: attr, Values: []any{v}}
}

func LessThanEqual(attr string, v any) Query {
	return Query{Method: MethodLessThanEqual, Attribute: attr, Values: []any{v}}
}

func GreaterThan(attr string, v any) Query {
	return Query{Method: MethodGreaterThan, Attribute: attr, Values: []any{v}}
}

func GreaterThanEqual(attr string, v any) Query {
	return Query{Method: MethodGreaterThanEqual, Attribute: attr, Values: []any{v}}
}

func IsNull(attr string) Query {
	return Query{Method: MethodIsNull, Attribute: attr}
}

func IsNotNull(attr string) Query {
	return Query{Method: MethodIsNotNull, Attribute: attr}
}

func OrderAsc(attr string) Query {
	return Query{Method: MethodOrderAsc, Attribute: attr}
}

func OrderDesc(attr string) Query {
	return Query{Method: MethodOrderDesc, Attribute: attr}
}

func Limit(n int) Query {
	return Query{Method: MethodLimit, Values: []any{n}}
}

func Offset(n int) Query {
	return Query{Method: MethodOffset, Values: []any{n}}
}

// String renders the query in the hosted store's JSON wire form.
func (q Query) String() string {
	raw, err := json.Marshal(q)
	if err != nil {
		return fmt.Sprintf("%s(%s)", q.Method, q.Attribute)
	}
	return string(raw)
}

// IsFilter reports whether q restricts the result set.
func (q Query) IsFilter() bool {
	switch q.Method {
	case MethodEqual, MethodNotEqual, MethodLessThan, MethodLessThanEqual,
		MethodGreaterThan, MethodGreaterThanEqual, MethodIsNull, MethodIsNotNull:
		return true
	}
	return false
}

var attributePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,63}$`)

// Validate checks the method and attribute name. Attribute names end up in
// SQL expressions, so only identifier-like names are accepted.
func (q Query) Validate() error {
	switch q.Method {
	case MethodLimit, MethodOffset:
		if len(q.Values) != 1 {
			return fmt.Errorf("%s expects one value", q.Method)
		}
		n, ok := AsFloat(q.Values[0])
		if !ok || n < 0 {
			return fmt.Errorf("%s expects a non-negative number", q.Method)
		}
		return nil
	case MethodOrderAsc, MethodOrderDesc, MethodIsNull, MethodIsNotNull:
	case MethodEqual, MethodNotEqual, MethodLessThan, MethodLessThanEqual,
		MethodGreaterThan, MethodGreaterThanEqual:
		if len(q.Values) == 0 {
			return fmt.Errorf("%s on %q expects a value", q.Method, q.Attribute)
		}
	default:
		return fmt.Errorf("unsupported query method: %s", q.Method)
	}
	if !attributePattern.MatchString(q.Attribute) {
		return fmt.Errorf("invalid attribute name: %q", q.Attribute)
	}
	return nil
}

// ValidateAll validates every query.
func ValidateAll(queries []Query) error {
	for _, q := range queries {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}
