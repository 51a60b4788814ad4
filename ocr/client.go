// Package ocr extracts text from scanned timesheet images through a hosted
// OCR service, with bounded retries and an optional local fallback.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// DefaultEndpoint is the hosted parse endpoint.
const DefaultEndpoint = "https://api.ocr.space/parse/image"

// DefaultRequestTimeout bounds a single OCR round trip. The service can sit
// on large table scans for a long time before answering.
const DefaultRequestTimeout = 120 * time.Second

// ErrNoText is returned when the service answered successfully but produced
// no usable text.
var ErrNoText = errors.New("ocr: no parsed text in response")

// Fallback is a local best-effort text extraction tried after all remote
// attempts are exhausted.
type Fallback func(path string) (string, error)

// Client calls the OCR service. The zero value is not usable; construct via
// NewClient.
type Client struct {
	endpoint   string
	apiKey     string
	language   string
	httpClient *http.Client
	retry      RetryPolicy
	fallback   Fallback
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the service URL, used by tests and self-hosted
// deployments.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithRetryPolicy overrides the retry schedule.
func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) { c.retry = policy }
}

// WithFallback wires a local extraction tried when the service gives up.
func WithFallback(fallback Fallback) Option {
	return func(c *Client) { c.fallback = fallback }
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient builds an OCR client for the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	client := &Client{
		endpoint:   DefaultEndpoint,
		apiKey:     apiKey,
		language:   "eng",
		httpClient: &http.Client{Timeout: DefaultRequestTimeout},
		retry:      NewDefaultRetryPolicy(),
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.logger == nil {
		client.logger = slog.Default()
	}
	return client
}

// errorMessages tolerates the service returning ErrorMessage as either a
// bare string or a list of strings.
type errorMessages []string

func (e *errorMessages) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*e = errorMessages{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*e = many
	return nil
}

func (e errorMessages) joined() string {
	return strings.ToUpper(strings.Join(e, " "))
}

type parsedResult struct {
	ParsedText string `json:"ParsedText"`
}

type parseResponse struct {
	OCRExitCode   int            `json:"OCRExitCode"`
	ParsedResults []parsedResult `json:"ParsedResults"`
	ErrorMessage  errorMessages  `json:"ErrorMessage"`
	ErrorDetails  string         `json:"ErrorDetails"`
}

// transientError marks a failure worth retrying.
type transientError struct {
	err error
}

func (t *transientError) Error() string { return t.err.Error() }
func (t *transientError) Unwrap() error { return t.err }

func isTransient(err error) bool {
	var transient *transientError
	return errors.As(err, &transient)
}

// ExtractText runs the retry loop against the service and falls back to the
// local extractor, when configured, after the last attempt fails.
func (c *Client) ExtractText(ctx context.Context, path string) (string, error) {
	data, filename, err := prepareImage(path)
	if err != nil {
		return "", err
	}

	attempts := c.retry.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := c.parseOnce(ctx, data, filename)
		if err == nil {
			c.logger.Debug("ocr: extraction succeeded", "attempt", attempt, "chars", len(text))
			return text, nil
		}
		lastErr = err

		if !isTransient(err) {
			c.logger.Warn("ocr: permanent failure", "attempt", attempt, "err", err)
			break
		}
		if attempt == attempts {
			break
		}

		wait := c.retry.Backoff(attempt)
		c.logger.Warn("ocr: transient failure, backing off",
			"attempt", attempt,
			"wait", wait,
			"err", err,
		)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}

	if c.fallback != nil {
		c.logger.Warn("ocr: remote attempts exhausted, trying local fallback", "err", lastErr)
		text, fallbackErr := c.fallback(path)
		if fallbackErr == nil && strings.TrimSpace(text) != "" {
			return text, nil
		}
		c.logger.Error("ocr: local fallback failed", "err", fallbackErr)
	}

	return "", fmt.Errorf("ocr: extraction failed for %s: %w", path, lastErr)
}

func (c *Client) parseOnce(ctx context.Context, data []byte, filename string) (string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	fields := map[string]string{
		"apikey":            c.apiKey,
		"language":          c.language,
		"isOverlayRequired": "false",
		"detectOrientation": "false",
		"isTable":           "true",
		"scale":             "true",
		"OCREngine":         "2",
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return "", fmt.Errorf("write form field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("write form file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("build ocr request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())

	response, err := c.httpClient.Do(request)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		// Transport failures, timeouts and connection resets included, are
		// the service's usual failure modes under load.
		return "", &transientError{err: err}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		statusErr := fmt.Errorf("ocr service status %d: %s", response.StatusCode, strings.TrimSpace(string(snippet)))
		switch response.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return "", &transientError{err: statusErr}
		}
		return "", statusErr
	}

	var parsed parseResponse
	if err := json.NewDecoder(response.Body).Decode(&parsed); err != nil {
		return "", &transientError{err: fmt.Errorf("decode ocr response: %w", err)}
	}

	if parsed.OCRExitCode != 1 {
		message := parsed.ErrorMessage.joined()
		if message == "" {
			message = strings.ToUpper(parsed.ErrorDetails)
		}
		bodyErr := fmt.Errorf("ocr exit code %d: %s", parsed.OCRExitCode, message)
		// E101 is the service's embedded processing-timeout code, reported
		// inside an HTTP 200 body.
		if strings.Contains(message, "E101") || strings.Contains(message, "TIMED OUT") {
			return "", &transientError{err: bodyErr}
		}
		return "", bodyErr
	}

	if len(parsed.ParsedResults) == 0 {
		return "", ErrNoText
	}
	text := parsed.ParsedResults[0].ParsedText
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
