package aggregate

import (
	"encoding/json"

	"discover/lib/schema"

	"github.com/samber/mo"
)

// Bodies of the selector service endpoints.

type OptionsRequest struct {
	Columns []schema.Column `json:"columns"`
}

// ValidateRequest keeps the aggregation as raw JSON so that any malformed
// aggregation is reported as invalid rather than rejected while decoding.
type ValidateRequest struct {
	Aggregation json.RawMessage `json:"aggregation"`
	Columns     []schema.Column `json:"columns"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type InternalRequest struct {
	Aggregation External `json:"aggregation"`
}

type InternalResponse struct {
	Internal string `json:"internal"`
}

type ExternalRequest struct {
	Internal string `json:"internal"`
}

type ExternalResponse struct {
	External External `json:"external"`
}

func NewValidateRequest(function, column mo.Option[string], columns []schema.Column) ValidateRequest {
	// a slice of string pointers always marshals
	ser, _ := json.Marshal([]*string{toPtr(function), toPtr(column)})
	return ValidateRequest{
		Aggregation: ser,
		Columns:     columns,
	}
}

// Tuple returns the function and column of the request. ok is false when the
// aggregation is not an array of two or three strings or nulls.
func (r ValidateRequest) Tuple() (function, column mo.Option[string], ok bool) {
	fields, n, err := decodeTuple(r.Aggregation)
	if err != nil || n < 2 {
		return function, column, false
	}
	return fields[0], fields[1], true
}

// Valid runs the validator on the request. It never fails: anything that is
// not a well formed aggregation is invalid.
func (r ValidateRequest) Valid() bool {
	function, column, ok := r.Tuple()
	return ok && IsValidAggregation(function, column, r.Columns)
}

func toPtr(o mo.Option[string]) *string {
	if v, ok := o.Get(); ok {
		return &v
	}
	return nil
}
