package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the Gemini GenerateContent API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const apiKeyEnv = "GEMINI_API_KEY"

// Client talks to the Gemini API. Outbound requests ride an otelhttp
// transport, so each completion call carries a client span for the HTTP leg.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = url }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout:   2 * time.Minute,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func NewClientFromEnv(opts ...Option) *Client {
	return NewClient(os.Getenv(apiKeyEnv), opts...)
}

// HasAPIKey reports whether a live Gemini credential is configured.
func HasAPIKey() bool {
	return os.Getenv(apiKeyEnv) != ""
}

// Agent starts building an agent bound to model.
func (c *Client) Agent(model string) *Builder {
	return &Builder{client: c, model: model}
}

func (c *Client) generate(ctx context.Context, model string, body generateRequest) (*generateResponse, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("gemini api key not configured, set %s", apiKeyEnv)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	// header rather than ?key= so the credential never appears in the
	// transport span's url attribute
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, apiError(resp.StatusCode, respBody)
	}

	parsed := &generateResponse{}
	if err := json.Unmarshal(respBody, parsed); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return parsed, nil
}

func apiError(status int, body []byte) error {
	parsed := errorResponse{}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return fmt.Errorf("gemini api returned %d: %s", status, parsed.Error.Message)
	}

	return fmt.Errorf("gemini api returned %d", status)
}
