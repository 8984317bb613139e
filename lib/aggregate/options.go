package aggregate

import (
	"fmt"

	"discover/lib/schema"

	"github.com/samber/lo"
)

// Option is one entry of the aggregation dropdown. Value is an internal key.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options holds every dropdown entry for a schema, grouped by menu level.
type Options struct {
	TopLevel   []Option `json:"topLevel"`
	Uniq       []Option `json:"uniq"`
	TopKCounts []Option `json:"topKCounts"`
	TopKValues []Option `json:"topKValues"`
}

// NewOptions generates the dropdown for columns. topKValues is ordered by
// count first and column second, both in the order given. Column names are not
// checked for uniqueness.
func NewOptions(columns []schema.Column, topKCounts []uint32) Options {
	topLevel := []Option{
		{Value: countKey, Label: countKey},
		{Value: UNIQ, Label: UNIQ + "(...)"},
		{Value: TOPK, Label: TOPK + "(...)"},
	}
	uniq := lo.Map(columns, func(c schema.Column, _ int) Option {
		return Option{Value: uniqPrefix + c.Name, Label: fmt.Sprintf("%s(%s)", UNIQ, c.Name)}
	})
	counts := lo.Map(topKCounts, func(n uint32, _ int) Option {
		return Option{Value: fmt.Sprintf("%s%d", topKPrefix, n), Label: fmt.Sprintf("%s(%d)(...)", TOPK, n)}
	})
	values := lo.FlatMap(topKCounts, func(n uint32, _ int) []Option {
		return lo.Map(columns, func(c schema.Column, _ int) Option {
			return Option{
				Value: fmt.Sprintf("%s%d_%s", topKPrefix, n, c.Name),
				Label: fmt.Sprintf("%s(%d)(%s)", TOPK, n, c.Name),
			}
		})
	})
	return Options{
		TopLevel:   topLevel,
		Uniq:       uniq,
		TopKCounts: counts,
		TopKValues: values,
	}
}

// Values lists every option value across all groups.
func (o Options) Values() []string {
	all := make([]Option, 0, len(o.TopLevel)+len(o.Uniq)+len(o.TopKCounts)+len(o.TopKValues))
	all = append(all, o.TopLevel...)
	all = append(all, o.Uniq...)
	all = append(all, o.TopKCounts...)
	all = append(all, o.TopKValues...)
	return lo.Map(all, func(opt Option, _ int) string { return opt.Value })
}

// Clone returns a copy that shares no slices with o.
func (o Options) Clone() Options {
	return Options{
		TopLevel:   append([]Option{}, o.TopLevel...),
		Uniq:       append([]Option{}, o.Uniq...),
		TopKCounts: append([]Option{}, o.TopKCounts...),
		TopKValues: append([]Option{}, o.TopKValues...),
	}
}
