// Package models defines API request/response data structures.
package models

// CorrectGrammarRequest is the body of the correct-grammar endpoint.
type CorrectGrammarRequest struct {
	// Text is the text to correct.
	Text string `json:"text" example:"i has a apple"`

	// UserID identifies the end user to the workflow provider.
	UserID string `json:"userId,omitempty" validate:"max=256" example:"twitter-bot"`
}

// CorrectGrammarResponse is returned on a successful correction.
type CorrectGrammarResponse struct {
	OriginalText  string            `json:"originalText" example:"i has a apple"`
	CorrectedText string            `json:"correctedText" example:"I have an apple."`
	TaskID        string            `json:"taskId"`
	WorkflowRunID string            `json:"workflowRunId"`
	Metrics       CorrectionMetrics `json:"metrics"`
}

// CorrectionMetrics reports provider usage for one correction.
type CorrectionMetrics struct {
	// ElapsedTime is the workflow run time in seconds.
	ElapsedTime float64 `json:"elapsedTime" example:"1.25"`
	TotalTokens int     `json:"totalTokens" example:"42"`
	TotalSteps  int     `json:"totalSteps" example:"3"`
}
