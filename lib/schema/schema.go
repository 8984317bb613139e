package schema

import (
	"strconv"

	"github.com/samber/lo"
	"github.com/zeebo/xxh3"
)

// TypeNumber is the only column type that numeric aggregations accept.
const TypeNumber = "number"

// Column describes one field available for aggregation. Columns come from the
// schema provider and are never modified here.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (c Column) IsNumeric() bool {
	return c.Type == TypeNumber
}

// Names returns the set of column names.
func Names(columns []Column) map[string]struct{} {
	return lo.SliceToMap(columns, func(c Column) (string, struct{}) {
		return c.Name, struct{}{}
	})
}

// NumericNames returns the set of names of number-typed columns.
func NumericNames(columns []Column) map[string]struct{} {
	return Names(lo.Filter(columns, func(c Column, _ int) bool {
		return c.IsNumeric()
	}))
}

// Fingerprint hashes the ordered column list together with the top-k counts.
// Two inputs with the same fingerprint generate the same dropdown options.
func Fingerprint(columns []Column, topKCounts []uint32) uint64 {
	h := xxh3.New()
	for _, c := range columns {
		// length prefixes keep ("ab","c") and ("a","bc") apart
		h.WriteString(strconv.Itoa(len(c.Name)))
		h.WriteString(":")
		h.WriteString(c.Name)
		h.WriteString(strconv.Itoa(len(c.Type)))
		h.WriteString(":")
		h.WriteString(c.Type)
	}
	h.WriteString("|")
	for _, n := range topKCounts {
		h.WriteString(strconv.FormatUint(uint64(n), 10))
		h.WriteString(",")
	}
	return h.Sum64()
}
