package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"

	"discover/lib/aggregate"
	"discover/lib/schema"

	"github.com/samber/mo"
)

type Client struct {
	httpclient *http.Client
	url        *url.URL
}

func NewClient(hostport string, httpclient *http.Client) (*Client, error) {
	url, err := url.Parse(hostport)
	if err != nil {
		return nil, fmt.Errorf("failed to parse hostport [%s]: %v", hostport, err)
	}
	return &Client{
		url:        url,
		httpclient: httpclient,
	}, nil
}

func (c Client) endpoint(path string) string {
	u := *c.url
	u.Path = path
	return u.String()
}

func (c Client) post(request interface{}, url string, response interface{}) error {
	ser, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("could not convert request to json: %v", err)
	}
	resp, err := c.httpclient.Post(url, "application/json", bytes.NewBuffer(ser))
	if err != nil {
		return fmt.Errorf("server error: %v", err)
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("could not read server response: %v", err)
	}
	// handle http error given by the server
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s: %s", http.StatusText(resp.StatusCode), string(bytes.TrimSpace(body)))
	}
	if err := json.Unmarshal(body, response); err != nil {
		return fmt.Errorf("could not parse server response: %v", err)
	}
	return nil
}

func (c *Client) Options(columns []schema.Column) (aggregate.Options, error) {
	var options aggregate.Options
	err := c.post(aggregate.OptionsRequest{Columns: columns}, c.endpoint("/options"), &options)
	return options, err
}

func (c *Client) Validate(function, column mo.Option[string], columns []schema.Column) (bool, error) {
	var resp aggregate.ValidateResponse
	err := c.post(aggregate.NewValidateRequest(function, column, columns), c.endpoint("/validate"), &resp)
	return resp.Valid, err
}

func (c *Client) GetInternal(agg aggregate.External) (string, error) {
	var resp aggregate.InternalResponse
	err := c.post(aggregate.InternalRequest{Aggregation: agg}, c.endpoint("/internal"), &resp)
	return resp.Internal, err
}

func (c *Client) GetExternal(key string) (aggregate.External, error) {
	var resp aggregate.ExternalResponse
	err := c.post(aggregate.ExternalRequest{Internal: key}, c.endpoint("/external"), &resp)
	return resp.External, err
}
