package supabase

import (
	"context"
	"fmt"
	"strings"

	"buildplate.dev/plate-api-gateway/app/utils/httpclients"
	"resty.dev/v3"
)

// Client calls PostgREST RPC endpoints of a Supabase project.
type Client struct {
	baseURL string
	apiKey  string
	rest    *resty.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		rest:    httpclients.NewClient("SupabaseClient"),
	}
}

// ErrorResponse is the PostgREST error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (c *Client) ListSchemas(ctx context.Context) ([]string, error) {
	var schemas []string
	if err := c.rpc(ctx, "get_schemas", map[string]any{}, &schemas); err != nil {
		return nil, err
	}
	if schemas == nil {
		schemas = []string{}
	}
	return schemas, nil
}

func (c *Client) ListTables(ctx context.Context, schema string) ([]string, error) {
	var tables []string
	if err := c.rpc(ctx, "get_tables_for_schema", map[string]any{"schema": schema}, &tables); err != nil {
		return nil, err
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

func (c *Client) rpc(ctx context.Context, function string, params map[string]any, result any) error {
	var apiErr ErrorResponse
	resp, err := c.rest.R().
		SetContext(ctx).
		SetHeader("apikey", c.apiKey).
		SetAuthToken(c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		SetResult(result).
		SetError(&apiErr).
		Post(c.baseURL + "/rest/v1/rpc/" + function)
	if err != nil {
		return fmt.Errorf("rpc %s: %w", function, err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return fmt.Errorf("%s", apiErr.Message)
		}
		return fmt.Errorf("rpc %s: unexpected status %s", function, resp.Status())
	}
	return nil
}

func (c *Client) Close() error {
	return c.rest.Close()
}
