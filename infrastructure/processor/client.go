// Package processor calls the external content processor over HTTP.
// The client never fails: every problem becomes a degraded result.
package processor

import (
	"bytes"
	"chat-relay/domain"
	"chat-relay/errors"
	"context"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const (
	apiKeyHeader   = "X-Api-Key"
	defaultTimeout = 5 * time.Second
	maxBodySize    = 1 << 20
)

type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

type Client struct {
	log        *slog.Logger
	config     Config
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(log *slog.Logger, config Config) *Client {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	return &Client{
		log:        log,
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (c *Client) Enabled() bool {
	return c.config.Endpoint != ""
}

// Process sends the message to the remote processor and maps the answer to a result.
// The original content is kept whenever the remote call doesn't succeed.
func (c *Client) Process(ctx context.Context, message domain.Message) domain.ProcessingResult {
	if !c.Enabled() {
		return domain.DegradedResult(message.Content, errors.ErrProcessorDisabled.Error(), c.now())
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	response, err := c.call(ctx, domain.NewProcessingRequest(message))
	if err != nil {
		c.log.Warn("Content processor call failed", "message_id", message.ID, "error", err)
		return domain.DegradedResult(message.Content, err.Error(), c.now())
	}

	processed := message.Content
	if response.ProcessedContent != nil {
		processed = *response.ProcessedContent
	}
	return domain.ProcessingResult{
		ProcessedContent:    processed,
		ProcessingTimestamp: c.now(),
		Outcome: domain.ProcessingOutcome{
			Success:        true,
			ProcessingTime: response.ProcessingTime,
			Sanitized:      response.Sanitized,
		},
	}
}

func (c *Client) call(ctx context.Context, request domain.ProcessingRequest) (domain.ProcessingResponse, error) {
	body, err := json.Marshal(request)
	if err != nil {
		return domain.ProcessingResponse{}, fmt.Errorf("encoding content processor request: %w", err)
	}
	httpRequest, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.ProcessingResponse{}, fmt.Errorf("building content processor request: %w", err)
	}
	httpRequest.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpRequest.Header.Set(apiKeyHeader, c.config.APIKey)
	}

	httpResponse, err := c.httpClient.Do(httpRequest)
	if err != nil {
		if isTimeout(err) {
			return domain.ProcessingResponse{}, fmt.Errorf("content processor timed out after %s", c.config.Timeout)
		}
		return domain.ProcessingResponse{}, fmt.Errorf("content processor unreachable: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, httpResponse.Body)
		_ = httpResponse.Body.Close()
	}()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode > 299 {
		return domain.ProcessingResponse{}, fmt.Errorf("content processor responded with status %d", httpResponse.StatusCode)
	}

	var response domain.ProcessingResponse
	if err := json.NewDecoder(io.LimitReader(httpResponse.Body, maxBodySize)).Decode(&response); err != nil {
		if isTimeout(err) {
			return domain.ProcessingResponse{}, fmt.Errorf("content processor timed out after %s", c.config.Timeout)
		}
		return domain.ProcessingResponse{}, fmt.Errorf("invalid content processor response: %w", err)
	}
	return response, nil
}

func isTimeout(err error) bool {
	if goerrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return goerrors.As(err, &netErr) && netErr.Timeout()
}
