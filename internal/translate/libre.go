package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/version"
)

// Defaults for a locally hosted LibreTranslate instance.
const (
	DefaultURL     = "http://127.0.0.1:5000"
	DefaultTimeout = 2 * time.Second
)

// HTTPError reports a non-2xx answer from the translation service.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("translation service returned %d: %s", e.StatusCode, e.Body)
}

// LibreOptions configures the LibreTranslate client.
type LibreOptions struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// LibreClient talks to the LibreTranslate /translate endpoint.
type LibreClient struct {
	hc       *http.Client
	endpoint string
	apiKey   string
	do       func(*http.Request) (*http.Response, error)
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error,omitempty"`
}

// NewLibreClient builds a client. Empty options fall back to the local defaults.
func NewLibreClient(opts LibreOptions) *LibreClient {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	hc := &http.Client{Timeout: opts.Timeout}
	return &LibreClient{
		hc:       hc,
		endpoint: strings.TrimRight(opts.URL, "/") + "/translate",
		apiKey:   opts.APIKey,
		do:       hc.Do,
	}
}

// Endpoint returns the full translate URL.
func (c *LibreClient) Endpoint() string { return c.endpoint }

// Translate sends one sentence to the service.
func (c *LibreClient) Translate(ctx context.Context, text, source, target string) (string, error) {
	body, err := json.Marshal(libreRequest{
		Q:      text,
		Source: source,
		Target: target,
		Format: "text",
		APIKey: c.apiKey,
	})
	if err != nil {
		return "", fmt.Errorf("encode translate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build translate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("translate request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read translate response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	var out libreResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decode translate response: %w", err)
	}
	if out.Error != "" {
		return "", errors.New(out.Error)
	}
	return out.TranslatedText, nil
}
