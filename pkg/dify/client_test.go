package dify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grammarpost/grammarpost/config"
	"github.com/grammarpost/grammarpost/pkg/apierror"
	"github.com/grammarpost/grammarpost/pkg/logger"
	"github.com/grammarpost/grammarpost/pkg/metrics"
)

type recordedCall struct {
	provider, operation, outcome string
}

type fakeRecorder struct {
	mu     sync.Mutex
	calls  []recordedCall
	runs   []string
	tokens int
}

func (f *fakeRecorder) RecordProviderCall(_ context.Context, provider, operation, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedCall{provider, operation, outcome})
}

func (f *fakeRecorder) RecordWorkflowRun(status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, status)
}

func (f *fakeRecorder) RecordWorkflowUsage(tokens, _ int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens += tokens
}

func testConfig(baseURL string) config.DifyConfig {
	cfg := config.DefaultConfig().Dify
	cfg.BaseURL = baseURL
	cfg.APIKey = "app-test-key"
	cfg.Timeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, cfg config.DifyConfig, rec Recorder) *Client {
	t.Helper()
	return NewClient(cfg, WithLogger(logger.Nop()), WithMetrics(rec))
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestCorrectGrammar_Success(t *testing.T) {
	var got runRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/workflows/run", r.URL.Path)
		assert.Equal(t, "Bearer app-test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		writeJSON(w, http.StatusOK, `{
			"task_id": "task-1",
			"workflow_run_id": "run-1",
			"data": {
				"id": "run-1",
				"status": "succeeded",
				"outputs": {"output": "I have an apple."},
				"error": null,
				"elapsed_time": 1.25,
				"total_tokens": 42,
				"total_steps": 3
			}
		}`)
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	client := newTestClient(t, testConfig(server.URL+"/v1"), rec)

	result, err := client.CorrectGrammar(context.Background(), "i has a apple", "")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"input_text": "i has a apple"}, got.Inputs)
	assert.Equal(t, "blocking", got.ResponseMode)
	assert.Equal(t, "twitter-bot", got.User)

	assert.Equal(t, &CorrectionResult{
		OriginalText:  "i has a apple",
		CorrectedText: "I have an apple.",
		TaskID:        "task-1",
		WorkflowRunID: "run-1",
		Metrics: Metrics{
			ElapsedTime: 1.25,
			TotalTokens: 42,
			TotalSteps:  3,
		},
	}, result)

	assert.Equal(t, []recordedCall{{"dify", "run_workflow", metrics.OutcomeSuccess}}, rec.calls)
	assert.Equal(t, []string{"succeeded"}, rec.runs)
	assert.Equal(t, 42, rec.tokens)
}

func TestCorrectGrammar_CustomUserAndKeys(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusOK, `{"task_id":"t","workflow_run_id":"r","data":{"status":"succeeded","outputs":{"fixed":"Hello."}}}`)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.InputKey = "query"
	cfg.OutputKey = "fixed"
	client := newTestClient(t, cfg, nil)

	result, err := client.CorrectGrammar(context.Background(), "helo", "user-7")
	require.NoError(t, err)
	assert.Equal(t, "Hello.", result.CorrectedText)
	assert.Equal(t, "user-7", got["user"])
	assert.Equal(t, map[string]any{"query": "helo"}, got["inputs"])
}

func TestCorrectGrammar_MissingAPIKey(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.APIKey = ""
	client := newTestClient(t, cfg, nil)
	assert.False(t, client.Configured())

	_, err := client.CorrectGrammar(context.Background(), "text", "")
	require.Error(t, err)

	var configErr *apierror.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, "Dify API Key is missing in environment variables", err.Error())
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no request may be sent without a key")
}

func TestCorrectGrammar_WorkflowFailed(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  string
		message string
	}{
		{
			name:    "provider message",
			body:    `{"data":{"status":"failed","error":"LLM quota exceeded"}}`,
			status:  "failed",
			message: "LLM quota exceeded",
		},
		{
			name:    "no provider message",
			body:    `{"data":{"status":"stopped"}}`,
			status:  "stopped",
			message: "Workflow execution failed",
		},
		{
			name:    "no data",
			body:    `{}`,
			status:  "",
			message: "Workflow execution failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.body)
			}))
			defer server.Close()

			rec := &fakeRecorder{}
			client := newTestClient(t, testConfig(server.URL), rec)

			result, err := client.CorrectGrammar(context.Background(), "text", "")
			require.Error(t, err)
			assert.Nil(t, result)

			var logicErr *apierror.ProviderLogicError
			require.True(t, errors.As(err, &logicErr))
			assert.Equal(t, tt.status, logicErr.Status)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, "provider_logic", rec.calls[0].outcome)
		})
	}
}

func TestCorrectGrammar_MissingOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"data":{"status":"succeeded","outputs":{"other":"x"}}}`)
	}))
	defer server.Close()

	_, err := newTestClient(t, testConfig(server.URL), nil).CorrectGrammar(context.Background(), "text", "")

	var logicErr *apierror.ProviderLogicError
	require.True(t, errors.As(err, &logicErr))
	assert.Contains(t, err.Error(), `"output"`)
}

func TestCorrectGrammar_HTTPError(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		code       string
		message    string
	}{
		{
			name:       "message field",
			statusCode: http.StatusBadRequest,
			body:       `{"code":"invalid_param","message":"input_text is required","status":400}`,
			code:       "invalid_param",
			message:    "input_text is required",
		},
		{
			name:       "error field",
			statusCode: http.StatusUnauthorized,
			body:       `{"error":"Access token is invalid"}`,
			message:    "Access token is invalid",
		},
		{
			name:       "non-json body",
			statusCode: http.StatusBadGateway,
			body:       `<html>bad gateway</html>`,
			message:    "Failed to run grammar correction workflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.statusCode, tt.body)
			}))
			defer server.Close()

			_, err := newTestClient(t, testConfig(server.URL), nil).CorrectGrammar(context.Background(), "text", "")

			var httpErr *apierror.ProviderHTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.statusCode, httpErr.StatusCode)
			assert.Equal(t, tt.code, httpErr.Code)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestCorrectGrammar_DecodeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `not json`)
	}))
	defer server.Close()

	rec := &fakeRecorder{}
	_, err := newTestClient(t, testConfig(server.URL), rec).CorrectGrammar(context.Background(), "text", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode workflow response")
	assert.Equal(t, "transport", rec.calls[0].outcome)
}

func TestCorrectGrammar_ContextCanceled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(t, testConfig(server.URL), nil).CorrectGrammar(ctx, "text", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}
