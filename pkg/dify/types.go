package dify

import "encoding/json"

// ResponseModeBlocking asks the provider to answer once the run completes.
const ResponseModeBlocking = "blocking"

// StatusSucceeded is the only workflow status treated as success.
const StatusSucceeded = "succeeded"

// CorrectionResult is the outcome of one successful grammar workflow run.
type CorrectionResult struct {
	OriginalText  string  `json:"originalText"`
	CorrectedText string  `json:"correctedText"`
	TaskID        string  `json:"taskId"`
	WorkflowRunID string  `json:"workflowRunId"`
	Metrics       Metrics `json:"metrics"`
}

// Metrics reports the provider-side cost of a run.
type Metrics struct {
	// ElapsedTime is in seconds.
	ElapsedTime float64 `json:"elapsedTime"`
	TotalTokens int     `json:"totalTokens"`
	TotalSteps  int     `json:"totalSteps"`
}

type runRequest struct {
	Inputs       map[string]string `json:"inputs"`
	ResponseMode string            `json:"response_mode"`
	User         string            `json:"user"`
}

type runResponse struct {
	TaskID        string  `json:"task_id"`
	WorkflowRunID string  `json:"workflow_run_id"`
	Data          runData `json:"data"`
}

type runData struct {
	ID          string                     `json:"id"`
	WorkflowID  string                     `json:"workflow_id"`
	Status      string                     `json:"status"`
	Outputs     map[string]json.RawMessage `json:"outputs"`
	Error       string                     `json:"error"`
	ElapsedTime float64                    `json:"elapsed_time"`
	TotalTokens int                        `json:"total_tokens"`
	TotalSteps  int                        `json:"total_steps"`
	CreatedAt   int64                      `json:"created_at"`
	FinishedAt  int64                      `json:"finished_at"`
}

// errorResponse is the body of a non-2xx answer.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Status  int    `json:"status"`
}
