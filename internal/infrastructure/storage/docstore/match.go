package docstore

import (
	"cmp"
	"slices"
	"strings"

	"freshsave/internal/core/apperror"
)

// Evaluate applies queries to docs in memory: filters first, then ordering,
// then offset and limit. It backs the memory and badger stores.
//
// Comparisons follow the hosted store: strings compare byte-wise, numbers
// numerically, and an absent attribute never satisfies a comparison.
func Evaluate(docs []Document, queries []Query) (DocumentList, error) {
	if err := ValidateAll(queries); err != nil {
		return DocumentList{}, apperror.NewInvalidInput(err.Error())
	}

	matched := make([]Document, 0, len(docs))
	for _, d := range docs {
		if Matches(d.Data, queries) {
			matched = append(matched, d)
		}
	}

	var orders []Query
	offset, limit := 0, -1
	for _, q := range queries {
		switch q.Method {
		case MethodOrderAsc, MethodOrderDesc:
			orders = append(orders, q)
		case MethodLimit:
			n, _ := AsFloat(q.Values[0])
			limit = int(n)
		case MethodOffset:
			n, _ := AsFloat(q.Values[0])
			offset = int(n)
		}
	}

	if len(orders) > 0 {
		slices.SortStableFunc(matched, func(a, b Document) int {
			for _, o := range orders {
				c := compareForOrder(a.Data[o.Attribute], b.Data[o.Attribute])
				if o.Method == MethodOrderDesc {
					c = -c
				}
				if c != 0 {
					return c
				}
			}
			return 0
		})
	}

	total := len(matched)
	if offset > len(matched) {
		offset = len(matched)
	}
	page := matched[offset:]
	if limit >= 0 && limit < len(page) {
		page = page[:limit]
	}
	return DocumentList{Total: total, Documents: page}, nil
}

// Matches reports whether data satisfies every filter in queries.
// Non-filter queries are ignored.
func Matches(data Fields, queries []Query) bool {
	for _, q := range queries {
		if q.IsFilter() && !matchOne(data, q) {
			return false
		}
	}
	return true
}

func matchOne(data Fields, q Query) bool {
	v, present := data[q.Attribute]
	present = present && v != nil

	switch q.Method {
	case MethodIsNull:
		return !present
	case MethodIsNotNull:
		return present
	}
	if !present {
		return false
	}

	switch q.Method {
	case MethodEqual:
		for _, want := range q.Values {
			if c, ok := compareValues(v, want); ok && c == 0 {
				return true
			}
		}
		return false
	case MethodNotEqual:
		for _, want := range q.Values {
			if c, ok := compareValues(v, want); ok && c == 0 {
				return false
			}
		}
		return true
	}

	c, ok := compareValues(v, q.Values[0])
	if !ok {
		return false
	}
	switch q.Method {
	case MethodLessThan:
		return c < 0
	case MethodLessThanEqual:
		return c <= 0
	case MethodGreaterThan:
		return c > 0
	case MethodGreaterThanEqual:
		return c >= 0
	}
	return false
}

// compareValues orders two attribute values of the same kind.
func compareValues(a, b any) (int, bool) {
	if as, ok := a.(string); ok {
		bs, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(as, bs), true
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		if !ok {
			return 0, false
		}
		return cmp.Compare(boolRank(ab), boolRank(bb)), true
	}
	af, aok := AsFloat(a)
	bf, bok := AsFloat(b)
	if !aok || !bok {
		return 0, false
	}
	return cmp.Compare(af, bf), true
}

// compareForOrder sorts absent values first and mismatched kinds by kind.
func compareForOrder(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if c, ok := compareValues(a, b); ok {
		return c
	}
	return cmp.Compare(kindRank(a), kindRank(b))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func kindRank(v any) int {
	switch v.(type) {
	case bool:
		return 0
	case string:
		return 2
	}
	if _, ok := AsFloat(v); ok {
		return 1
	}
	return 3
}
