package aggregate

import (
	"fmt"
	"regexp"

	"github.com/samber/mo"
)

// Internal keys back the aggregation dropdown. The vocabulary is
//   ""                no aggregation
//   "count"           count()
//   "uniq_<col>"      uniq over col
//   "topK_<n>_<col>"  topK(n) over col
// and any other key is passed through as a function name.
const (
	countKey   = "count"
	uniqPrefix = "uniq_"
	topKPrefix = "topK_"
)

var (
	uniqKeyRegex = regexp.MustCompile(`^uniq_(.+)$`)
	topKKeyRegex = regexp.MustCompile(`^topK_(\d+)_(.+)$`)
)

// ToInternal converts an aggregation to its dropdown key. Uniq and topK need a
// column; without one ErrMalformedAggregation is returned. Avg and unknown
// functions map to their function name and the column is dropped.
func ToInternal(agg External) (string, error) {
	fn := agg.Function
	switch fn.Kind {
	case KindNoOp:
		return "", nil
	case KindCount:
		return countKey, nil
	case KindUniq:
		col, ok := agg.Column.Get()
		if !ok {
			return "", fmt.Errorf("%w: %s requires a column", ErrMalformedAggregation, fn)
		}
		return uniqPrefix + col, nil
	case KindTopK:
		col, ok := agg.Column.Get()
		if !ok {
			return "", fmt.Errorf("%w: %s requires a column", ErrMalformedAggregation, fn)
		}
		return topKPrefix + fn.K + "_" + col, nil
	default:
		return fn.String(), nil
	}
}

// GetInternal is ToInternal over raw engine strings.
func GetInternal(function, column mo.Option[string]) (string, error) {
	agg, err := ParseExternal(function, column)
	if err != nil {
		return "", err
	}
	return ToInternal(agg)
}

// ToExternal converts a dropdown key to an aggregation carrying the key as its
// alias. Keys outside the vocabulary become KindOther, so
// ToInternal(ToExternal(key)) == key for every key whose top-k count has no
// leading zeros. The empty key is the only one without an alias.
func ToExternal(key string) External {
	if key == "" {
		return NewExternal(NoOp(), mo.None[string]())
	}
	if key == countKey {
		return withAlias(Count(), mo.None[string](), key)
	}
	if match := uniqKeyRegex.FindStringSubmatch(key); match != nil {
		return withAlias(Uniq(), mo.Some(match[1]), key)
	}
	if match := topKKeyRegex.FindStringSubmatch(key); match != nil {
		return withAlias(topKOf(match[1]), mo.Some(match[2]), key)
	}
	return withAlias(Other(key), mo.None[string](), key)
}

func withAlias(fn Function, column mo.Option[string], alias string) External {
	return External{Function: fn, Column: column, Alias: mo.Some(alias)}
}
