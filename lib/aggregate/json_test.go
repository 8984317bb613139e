package aggregate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternal_MarshalJSON(t *testing.T) {
	scenarios := []struct {
		external External
		expected string
	}{
		{NewExternal(Count(), none()), `["count()",null]`},
		{NewExternal(NoOp(), none()), `[null,null]`},
		{NewExternal(TopK(5), some("price")), `["topK(5)","price"]`},
		{ToExternal("topK_5_price"), `["topK(5)","price","topK_5_price"]`},
		{ToExternal("count"), `["count()",null,"count"]`},
		{ToExternal("topK_10"), `["topK_10",null,"topK_10"]`},
	}
	for _, scenario := range scenarios {
		ser, err := json.Marshal(scenario.external)
		assert.NoError(t, err)
		assert.Equal(t, scenario.expected, string(ser))
	}
}

func TestExternal_UnmarshalJSON(t *testing.T) {
	scenarios := []struct {
		data     string
		expected External
	}{
		{`["count()", null]`, External{Count(), none(), none()}},
		{`[null, null]`, External{NoOp(), none(), none()}},
		{`["uniq", "user.email"]`, External{Uniq(), some("user.email"), none()}},
		{`["topK(5)", "price", "topK_5_price"]`, External{TopK(5), some("price"), some("topK_5_price")}},
		{`["avg", "price", null]`, External{Avg(), some("price"), none()}},
		{`["uniq", "a\"b"]`, External{Uniq(), some(`a"b`), none()}},
	}
	for _, scenario := range scenarios {
		var found External
		require.NoError(t, json.Unmarshal([]byte(scenario.data), &found), scenario.data)
		assert.Equal(t, scenario.expected, found, scenario.data)
	}
}

func TestExternal_UnmarshalJSON_Invalid(t *testing.T) {
	for _, data := range []string{
		`[]`,
		`["count()"]`,
		`["count()", null, "count", "extra"]`,
		`[1, "price"]`,
		`["uniq", {"name": "price"}]`,
		`{"function": "uniq"}`,
		`"count"`,
	} {
		var found External
		assert.Error(t, json.Unmarshal([]byte(data), &found), data)
	}

	var found External
	err := json.Unmarshal([]byte(`["topK", "price"]`), &found)
	assert.ErrorIs(t, err, ErrMalformedAggregation)
}

func TestExternal_JSONRoundTrip(t *testing.T) {
	keys := []string{"count", "uniq_environment", "topK_20_price", "uniq", "topK", "topK_10", "not-a-key"}
	for _, key := range keys {
		agg := ToExternal(key)
		ser, err := json.Marshal(agg)
		require.NoError(t, err)
		var back External
		require.NoError(t, json.Unmarshal(ser, &back))
		assert.Equal(t, agg, back)
	}
}

func TestExternal_UnmarshalJSON_KeyAlias(t *testing.T) {
	// the alias names a dropdown key that decodes to this exact tuple
	var found External
	require.NoError(t, json.Unmarshal([]byte(`["topK_5", null, "topK_5"]`), &found))
	assert.Equal(t, External{Other("topK_5"), none(), some("topK_5")}, found)

	require.NoError(t, json.Unmarshal([]byte(`["uniq", null, "uniq"]`), &found))
	assert.Equal(t, External{Other("uniq"), none(), some("uniq")}, found)

	// an alias that does not describe the tuple is only a label
	require.NoError(t, json.Unmarshal([]byte(`["uniq", "price", "uniq"]`), &found))
	assert.Equal(t, External{Uniq(), some("price"), some("uniq")}, found)

	err := json.Unmarshal([]byte(`["topK", "price", "my label"]`), &found)
	assert.ErrorIs(t, err, ErrMalformedAggregation)
}
