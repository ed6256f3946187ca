// Package dify is a client for the Dify workflow API, used to run the
// grammar correction workflow in blocking mode.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/apierror"
	"github.com/grammarpost/grammarpost/pkg/logger"
	"github.com/grammarpost/grammarpost/pkg/metrics"
	"github.com/grammarpost/grammarpost/pkg/telemetry/tracing"
)

const (
	providerName = "dify"
	operationRun = "run_workflow"

	maxResponseBytes = 1 << 20

	msgMissingKey     = "Dify API Key is missing in environment variables"
	msgRequestFailed  = "Failed to run grammar correction workflow"
	msgWorkflowFailed = "Workflow execution failed"
)

// Recorder receives provider call metrics. *metrics.Manager implements it.
type Recorder interface {
	RecordProviderCall(ctx context.Context, provider, operation, outcome string, duration time.Duration)
	RecordWorkflowRun(status string)
	RecordWorkflowUsage(tokens, steps int)
}

// Client runs the grammar workflow. It is immutable after construction and
// safe for concurrent use.
type Client struct {
	cfg     config.DifyConfig
	baseURL string
	http    *http.Client
	log     logger.Logger
	metrics Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client. Its transport is wrapped for tracing.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(cl *Client) {
		cl.log = l
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r Recorder) Option {
	return func(cl *Client) {
		cl.metrics = r
	}
}

// NewClient creates a workflow client. A missing API key is not an error
// here; CorrectGrammar reports it on first use.
func NewClient(cfg config.DifyConfig, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		log:     logger.Global(),
		metrics: metrics.NoOpManager(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: cfg.Timeout}
	}
	if c.log == nil {
		c.log = logger.Global()
	}
	if c.metrics == nil {
		c.metrics = metrics.NoOpManager()
	}
	c.http = tracing.WrapClient(c.http, providerName)
	c.log = c.log.With("provider", providerName)

	return c
}

// Configured reports whether the API key is present.
func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// CorrectGrammar runs the workflow on text and returns the corrected text.
// An empty userID falls back to the configured default user.
func (c *Client) CorrectGrammar(ctx context.Context, text, userID string) (*CorrectionResult, error) {
	if !c.Configured() {
		err := &apierror.ConfigurationError{Setting: "dify.api_key", Message: msgMissingKey}
		c.log.ErrorContext(ctx, "grammar workflow not configured", "error", err)
		return nil, err
	}
	if userID == "" {
		userID = c.cfg.DefaultUser
	}

	ctx, span := tracing.Tracer().Start(ctx, "dify.CorrectGrammar")
	defer span.End()

	start := time.Now()
	result, err := c.run(ctx, text, userID)
	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = apierror.Kind(err)
		span.RecordError(err)
		c.log.ErrorContext(ctx, "grammar workflow failed",
			"error", err,
			"kind", outcome,
			"user", userID,
		)
	}
	c.metrics.RecordProviderCall(ctx, providerName, operationRun, outcome, time.Since(start))

	return result, err
}

func (c *Client) run(ctx context.Context, text, userID string) (*CorrectionResult, error) {
	body, err := json.Marshal(runRequest{
		Inputs:       map[string]string{c.cfg.InputKey: text},
		ResponseMode: ResponseModeBlocking,
		User:         userID,
	})
	if err != nil {
		return nil, fmt.Errorf("encode workflow request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/workflows/run", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build workflow request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call workflow api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read workflow response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError(resp.StatusCode, raw)
	}

	var out runResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode workflow response: %w", err)
	}

	c.metrics.RecordWorkflowRun(out.Data.Status)
	if out.Data.Status != StatusSucceeded {
		msg := out.Data.Error
		if msg == "" {
			msg = msgWorkflowFailed
		}
		return nil, &apierror.ProviderLogicError{
			Provider: providerName,
			Status:   out.Data.Status,
			Message:  msg,
		}
	}

	corrected, err := c.output(out.Data.Outputs)
	if err != nil {
		return nil, err
	}
	c.metrics.RecordWorkflowUsage(out.Data.TotalTokens, out.Data.TotalSteps)

	return &CorrectionResult{
		OriginalText:  text,
		CorrectedText: corrected,
		TaskID:        out.TaskID,
		WorkflowRunID: out.WorkflowRunID,
		Metrics: Metrics{
			ElapsedTime: out.Data.ElapsedTime,
			TotalTokens: out.Data.TotalTokens,
			TotalSteps:  out.Data.TotalSteps,
		},
	}, nil
}

// output extracts the corrected text. A succeeded run without it is a
// provider logic failure.
func (c *Client) output(outputs map[string]json.RawMessage) (string, error) {
	raw, ok := outputs[c.cfg.OutputKey]
	var text string
	if ok {
		ok = json.Unmarshal(raw, &text) == nil
	}
	if !ok {
		return "", &apierror.ProviderLogicError{
			Provider: providerName,
			Status:   StatusSucceeded,
			Message:  fmt.Sprintf("Workflow output %q is missing", c.cfg.OutputKey),
		}
	}
	return text, nil
}

func httpError(status int, body []byte) error {
	var e errorResponse
	_ = json.Unmarshal(body, &e)

	msg := e.Message
	if msg == "" {
		msg = e.Error
	}
	if msg == "" {
		msg = msgRequestFailed
	}
	return &apierror.ProviderHTTPError{
		Provider:   providerName,
		StatusCode: status,
		Code:       e.Code,
		Message:    msg,
	}
}
