package aggregate

import (
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/samber/mo"
)

// MarshalJSON writes the engine tuple [function, column] or
// [function, column, alias]. No-op functions and absent columns are null.
func (agg External) MarshalJSON() ([]byte, error) {
	tuple := []interface{}{nil, nil}
	if agg.Function.Kind != KindNoOp {
		tuple[0] = agg.Function.String()
	}
	if col, ok := agg.Column.Get(); ok {
		tuple[1] = col
	}
	if alias, ok := agg.Alias.Get(); ok {
		tuple = append(tuple, alias)
	}
	return json.Marshal(tuple)
}

// decodeTuple reads a JSON array of at most three strings or nulls. It returns
// the elements and how many were present.
func decodeTuple(data []byte) ([3]mo.Option[string], int, error) {
	var fields [3]mo.Option[string]
	n := 0
	var perr error
	_, err := jsonparser.ArrayEach(data, func(value []byte, vtype jsonparser.ValueType, _ int, err error) {
		if perr != nil {
			return
		}
		if err != nil {
			perr = err
			return
		}
		if n >= len(fields) {
			perr = fmt.Errorf("expected at most %d elements", len(fields))
			return
		}
		switch vtype {
		case jsonparser.Null:
			fields[n] = mo.None[string]()
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				perr = err
				return
			}
			fields[n] = mo.Some(s)
		default:
			perr = fmt.Errorf("element %d should be a string or null but found: '%s'", n, value)
			return
		}
		n++
	})
	if err == nil {
		err = perr
	}
	return fields, n, err
}

func (agg *External) UnmarshalJSON(data []byte) error {
	fields, n, err := decodeTuple(data)
	if err != nil {
		return fmt.Errorf("error unmarshalling aggregation json: %v", err)
	}
	if n < 2 {
		return fmt.Errorf("error unmarshalling aggregation json: expected [function, column] but found %d elements", n)
	}
	// Keys outside the dropdown vocabulary are spelled like functions on the
	// wire ("uniq", "topK_5"). When the alias is a key that decodes to exactly
	// this tuple, trust the key.
	if alias, ok := fields[2].Get(); ok {
		fromKey := ToExternal(alias)
		if fromKey.Function.String() == fields[0].OrEmpty() && fromKey.Column == fields[1] {
			fromKey.Alias = fields[2]
			*agg = fromKey
			return nil
		}
	}
	parsed, err := ParseExternal(fields[0], fields[1])
	if err != nil {
		return err
	}
	parsed.Alias = fields[2]
	*agg = parsed
	return nil
}
