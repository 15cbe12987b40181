package relay

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

	"github.com/hashicorp/go-retryablehttp"

	"github.com/wavythought/relay/pkg/transport"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryWaitMin = 200 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	maxResponseBytes    = 64 << 10
)

var ErrUnhealthy = errors.New("relay is unhealthy")

// Client talks to the relay service. Contact submissions are sent exactly once;
// only health probes are retried.
type Client struct {
	client  *http.Client
	retry   *retryablehttp.Client
	baseURL string
}

func NewClient(baseURL string, timeout time.Duration, healthRetries int) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	client := &http.Client{
		Timeout:   timeout,
		Transport: transport.NewLoggingRoundTripper(http.DefaultTransport),
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = client
	retryClient.RetryMax = healthRetries
	retryClient.RetryWaitMin = defaultRetryWaitMin
	retryClient.RetryWaitMax = defaultRetryWaitMax
	retryClient.Logger = nil

	return &Client{
		client:  client,
		retry:   retryClient,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type ContactRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Message   string `json:"message"`
	Subscribe bool   `json:"subscribe"`
}

type contactResponse struct {
	Message string `json:"message"`
}

// ResponseError is returned when the relay answered with a non-2xx status.
// Message is empty when the body carried no readable message.
type ResponseError struct {
	StatusCode int
	Message    string
}

func (e *ResponseError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("relay responded with status %d", e.StatusCode)
	}

	return fmt.Sprintf("relay responded with status %d: %s", e.StatusCode, e.Message)
}

// Contact posts one submission and returns the relay's confirmation message, which may be empty.
func (c *Client) Contact(ctx context.Context, req ContactRequest) (string, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request in JSON: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/contact", bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var body contactResponse

	// An unreadable body is not an error here; callers fall back to their own text.
	_ = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &ResponseError{StatusCode: resp.StatusCode, Message: body.Message}
	}

	return body.Message, nil
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health probes GET /health, retrying connection errors and 5xx responses.
func (c *Client) Health(ctx context.Context) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.retry.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}
	defer resp.Body.Close()

	var body healthResponse

	err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body)
	if err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrUnhealthy, err)
	}

	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		return fmt.Errorf("%w: status %d %q", ErrUnhealthy, resp.StatusCode, body.Status)
	}

	return nil
}
