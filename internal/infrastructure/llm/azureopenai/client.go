// Package azureopenai is the call executor for the enhancement batch: it
// drives one chat-completions request per document through the shared
// rate gate, per-request timeout, outcome classification and bounded
// retry, and always hands the orchestrator a fully-populated outcome.
package azureopenai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/mlindqvist/school-pipeline/internal/core/domain"
	"github.com/mlindqvist/school-pipeline/internal/infrastructure/resilience"
)

// RequestGate blocks until the provider-wide quota admits one more
// request start. Every retry re-acquires the gate.
type RequestGate interface {
	Wait(ctx context.Context) error
}

type noGate struct{}

func (noGate) Wait(context.Context) error { return nil }

type Config struct {
	Endpoint       string
	APIKey         string
	MaxTokens      int
	Temperature    float64
	RequestTimeout time.Duration
	Retry429Sleep  time.Duration

	// HTTPClient is injectable for transport tests; defaults to a plain
	// client (per-request timeouts come from the context).
	HTTPClient *http.Client
	Gate       RequestGate
	Executor   *resilience.Executor
	Prompt     *PromptTemplate
}

type Client struct {
	endpoint       string
	apiKey         string
	maxTokens      int
	temperature    float64
	requestTimeout time.Duration
	retry429Sleep  time.Duration

	httpClient *http.Client
	gate       RequestGate
	exec       *resilience.Executor
	prompt     *PromptTemplate
}

func New(cfg Config) *Client {
	c := &Client{
		endpoint:       cfg.Endpoint,
		apiKey:         cfg.APIKey,
		maxTokens:      cfg.MaxTokens,
		temperature:    cfg.Temperature,
		requestTimeout: cfg.RequestTimeout,
		retry429Sleep:  cfg.Retry429Sleep,
		httpClient:     cfg.HTTPClient,
		gate:           cfg.Gate,
		exec:           cfg.Executor,
		prompt:         cfg.Prompt,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.gate == nil {
		c.gate = noGate{}
	}
	if c.exec == nil {
		c.exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = 300 * time.Second
	}
	return c
}

// Enhance runs the full call lifecycle for one document. It never returns
// an error: all failure modes are folded into the outcome, and the last
// raw provider payload is always retained for archiving.
func (c *Client) Enhance(ctx context.Context, doc domain.Document) domain.CallOutcome {
	var out domain.CallOutcome

	payload, err := c.prompt.Payload(doc.SourceContent, c.maxTokens, c.temperature)
	if err != nil {
		out.Err = err
		out.ErrorKind = domain.KindClientError
		out.RawResponse = errorPayload(err)
		out.Attempts = 0
		return out
	}

	err = c.exec.Execute(ctx, "enhance", func(ctx context.Context) error {
		out.Attempts++

		if err := c.gate.Wait(ctx); err != nil {
			return err
		}

		reqCtx, cancel := context.WithTimeout(ctx, c.requestTimeout)
		defer cancel()

		status, header, body, err := c.postCompletion(reqCtx, payload)
		if err != nil {
			// Deadline errors from the request context surface as
			// url.Error wrapping context.DeadlineExceeded.
			if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
				err = context.DeadlineExceeded
			}
			out.RawResponse = errorPayload(err)
			return err
		}
		out.RawResponse = body

		if status != http.StatusOK {
			return &HTTPStatusError{
				StatusCode: status,
				Status:     http.StatusText(status),
				Body:       string(body),
				RetryAfter: parseRetryAfter(header),
			}
		}

		content, err := ParseCompletion(body)
		if err != nil {
			return err
		}
		out.Content = content
		return nil
	}, classifyCallError(c.retry429Sleep))

	out.Success = err == nil
	out.Err = err
	out.ErrorKind = errorKind(err)
	return out
}

// errorPayload synthesizes an archivable JSON body for failures that
// never produced a provider response.
func errorPayload(err error) []byte {
	payload := map[string]string{
		"error_type": "TransportError",
		"message":    err.Error(),
	}
	if errors.Is(err, context.DeadlineExceeded) {
		payload["error_type"] = "TimeoutError"
	}
	data, marshalErr := json.Marshal(payload)
	if marshalErr != nil {
		return []byte(`{"error_type":"TransportError"}`)
	}
	return data
}
