package aggregate

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// External spellings of the aggregate functions understood by the query engine.
const (
	COUNT = "count()"
	UNIQ  = "uniq"
	AVG   = "avg"
	TOPK  = "topK"
)

var ErrMalformedAggregation = errors.New("malformed aggregation")

// Unanchored: the engine only looks for the first parenthesized count.
var topKFuncRegex = regexp.MustCompile(`topK\((\d+)\)`)

type Kind uint8

const (
	KindNoOp Kind = iota
	KindCount
	KindUniq
	KindTopK
	KindAvg
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNoOp:
		return "noop"
	case KindCount:
		return "count"
	case KindUniq:
		return "uniq"
	case KindTopK:
		return "topk"
	case KindAvg:
		return "avg"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Function is the aggregate function half of an external aggregation. Only one
// of K and Name is meaningful: K for KindTopK, Name for KindOther. K holds the
// count in decimal without leading zeros and may exceed any integer type.
type Function struct {
	Kind Kind
	K    string
	Name string
}

func NoOp() Function { return Function{Kind: KindNoOp} }
func Count() Function { return Function{Kind: KindCount} }
func Uniq() Function { return Function{Kind: KindUniq} }
func Avg() Function { return Function{Kind: KindAvg} }
func TopK(k uint32) Function {
	return Function{Kind: KindTopK, K: strconv.FormatUint(uint64(k), 10)}
}
func Other(name string) Function { return Function{Kind: KindOther, Name: name} }

// topKOf builds a TopK from a run of decimal digits.
func topKOf(digits string) Function {
	k := strings.TrimLeft(digits, "0")
	if k == "" {
		k = "0"
	}
	return Function{Kind: KindTopK, K: k}
}

// ParseFunction reads the engine's string form of a function. The empty string
// means no aggregation. Anything starting with "topK" must contain a
// parenthesized count "topK(<digits>)", otherwise ErrMalformedAggregation is
// returned. Text around the first such count is ignored. Unknown names are
// kept as KindOther.
func ParseFunction(raw string) (Function, error) {
	switch raw {
	case "":
		return NoOp(), nil
	case COUNT:
		return Count(), nil
	case UNIQ:
		return Uniq(), nil
	case AVG:
		return Avg(), nil
	}
	if !strings.HasPrefix(raw, TOPK) {
		return Other(raw), nil
	}
	match := topKFuncRegex.FindStringSubmatch(raw)
	if match == nil {
		return Function{}, fmt.Errorf("%w: '%s' does not contain topK(<n>)", ErrMalformedAggregation, raw)
	}
	return topKOf(match[1]), nil
}

// mentionsTopK reports whether an unrecognized function name still carries a
// tiered count somewhere inside it, e.g. "xtopK(5)".
func (f Function) mentionsTopK() bool {
	return f.Kind == KindOther && topKFuncRegex.MatchString(f.Name)
}

// String renders the function the way the query engine spells it.
func (f Function) String() string {
	switch f.Kind {
	case KindNoOp:
		return ""
	case KindCount:
		return COUNT
	case KindUniq:
		return UNIQ
	case KindAvg:
		return AVG
	case KindTopK:
		return fmt.Sprintf("%s(%s)", TOPK, f.K)
	default:
		return f.Name
	}
}
