package aggregate

import (
	"discover/lib/schema"

	"github.com/samber/mo"
)

// External is an aggregation in the query engine's tuple form
// (function, column, alias). Alias is only set when the aggregation was built
// from a dropdown key.
type External struct {
	Function Function
	Column   mo.Option[string]
	Alias    mo.Option[string]
}

func NewExternal(fn Function, column mo.Option[string]) External {
	return External{Function: fn, Column: column, Alias: mo.None[string]()}
}

// ParseExternal builds an External from the engine's raw strings. A missing
// function is treated like the empty string.
func ParseExternal(function, column mo.Option[string]) (External, error) {
	fn, err := ParseFunction(function.OrEmpty())
	if err != nil {
		return External{}, err
	}
	return NewExternal(fn, column), nil
}

// IsValid reports whether agg can be sent to the query engine for a table with
// the given columns. Top-k counts are not checked against the configured list,
// and any function containing "topK(<n>)" is held to the top-k column rule.
func IsValid(agg External, columns []schema.Column) bool {
	switch agg.Function.Kind {
	case KindCount:
		return agg.Column.IsAbsent()
	case KindUniq, KindTopK:
		return hasColumn(schema.Names(columns), agg.Column)
	case KindAvg:
		return hasColumn(schema.NumericNames(columns), agg.Column)
	case KindOther:
		return agg.Function.mentionsTopK() && hasColumn(schema.Names(columns), agg.Column)
	default:
		return false
	}
}

// IsValidAggregation is IsValid over raw engine strings. Input that cannot be
// parsed is invalid.
func IsValidAggregation(function, column mo.Option[string], columns []schema.Column) bool {
	agg, err := ParseExternal(function, column)
	if err != nil {
		return false
	}
	return IsValid(agg, columns)
}

func hasColumn(names map[string]struct{}, column mo.Option[string]) bool {
	name, ok := column.Get()
	if !ok {
		return false
	}
	_, ok = names[name]
	return ok
}
