package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"discover/client"
	"discover/lib/aggregate"
	"discover/lib/schema"
	"discover/pcache"
	"discover/tier"

	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []schema.Column{
	{Name: "price", Type: "number"},
	{Name: "environment", Type: "string"},
}

func startTestServer(t *testing.T) (*httptest.Server, *client.Client) {
	args := tier.TierArgs{
		PCacheArgs: pcache.PCacheArgs{
			OptionsCacheMaxCost: 1 << 20,
			OptionsCacheAvgCost: 1 << 8,
			OptionsCacheTTL:     time.Minute,
		},
		TopKCounts:  []uint32{5, 10},
		ServiceName: "test",
		Dev:         true,
	}
	tr, err := tier.CreateFromArgs(&args)
	require.NoError(t, err)
	router := newRouter(server{tier: tr}, ServerArgs{RequestTimeout: time.Second, MaxConcurrentRequests: 10})
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		tr.Close()
	})
	c, err := client.NewClient(srv.URL, srv.Client())
	require.NoError(t, err)
	return srv, c
}

func TestOptions(t *testing.T) {
	_, c := startTestServer(t)
	options, err := c.Options(columns)
	require.NoError(t, err)
	assert.Equal(t, aggregate.NewOptions(columns, []uint32{5, 10}), options)

	// empty schema still has the top level and count groups
	options, err = c.Options(nil)
	require.NoError(t, err)
	assert.Len(t, options.TopLevel, 3)
	assert.Len(t, options.TopKCounts, 2)
	assert.Empty(t, options.Uniq)
	assert.Empty(t, options.TopKValues)
}

func TestValidate(t *testing.T) {
	_, c := startTestServer(t)
	scenarios := []struct {
		function mo.Option[string]
		column   mo.Option[string]
		valid    bool
	}{
		{mo.Some("count()"), mo.None[string](), true},
		{mo.Some("count()"), mo.Some("price"), false},
		{mo.Some("avg"), mo.Some("price"), true},
		{mo.Some("avg"), mo.Some("environment"), false},
		{mo.Some("topK(7)"), mo.Some("environment"), true},
		{mo.Some("topK"), mo.Some("environment"), false},
		{mo.Some("topK(4294967296)"), mo.Some("price"), true},
		{mo.None[string](), mo.None[string](), false},
	}
	for _, scenario := range scenarios {
		valid, err := c.Validate(scenario.function, scenario.column, columns)
		assert.NoError(t, err)
		assert.Equal(t, scenario.valid, valid, scenario)
	}
}

func TestValidate_MalformedBodies(t *testing.T) {
	srv, _ := startTestServer(t)
	for _, body := range []string{
		`{"aggregation": ["count()"]}`,
		`{"aggregation": [1, "price"], "columns": [{"name": "price", "type": "number"}]}`,
		`{"aggregation": "uniq"}`,
		`{}`,
	} {
		resp, err := srv.Client().Post(srv.URL+"/validate", "application/json", bytes.NewBufferString(body))
		require.NoError(t, err)
		var found aggregate.ValidateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&found), body)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, body)
		assert.False(t, found.Valid, body)
	}
}

func TestInternalExternal(t *testing.T) {
	_, c := startTestServer(t)

	key, err := c.GetInternal(aggregate.NewExternal(aggregate.TopK(5), mo.Some("price")))
	require.NoError(t, err)
	assert.Equal(t, "topK_5_price", key)

	agg, err := c.GetExternal("topK_5_price")
	require.NoError(t, err)
	assert.Equal(t, aggregate.External{
		Function: aggregate.TopK(5),
		Column:   mo.Some("price"),
		Alias:    mo.Some("topK_5_price"),
	}, agg)

	// every generated option survives the trip through the service
	options, err := c.Options(columns)
	require.NoError(t, err)
	for _, value := range options.Values() {
		agg, err := c.GetExternal(value)
		require.NoError(t, err)
		back, err := c.GetInternal(agg)
		require.NoError(t, err)
		assert.Equal(t, value, back)
	}

	// uniq without a column cannot become a key
	_, err = c.GetInternal(aggregate.NewExternal(aggregate.Uniq(), mo.None[string]()))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "Bad Request")
}

func TestBadRequests(t *testing.T) {
	srv, _ := startTestServer(t)
	scenarios := []struct {
		path string
		body string
	}{
		{"/options", `{"columns": 3}`},
		{"/validate", `not json`},
		{"/internal", `{"aggregation": ["topK", "price"]}`},
		{"/internal", `{"aggregation": [1, 2]}`},
		{"/external", `{"internal": 5}`},
	}
	for _, scenario := range scenarios {
		resp, err := srv.Client().Post(srv.URL+scenario.path, "application/json", bytes.NewBufferString(scenario.body))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, scenario.path+" "+scenario.body)
	}

	// only POST is routed
	resp, err := srv.Client().Get(srv.URL + "/options")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
