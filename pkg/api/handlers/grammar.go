package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/grammarpost/grammarpost/pkg/api/models"
	"github.com/grammarpost/grammarpost/pkg/api/response"
	"github.com/grammarpost/grammarpost/pkg/dify"
	"github.com/grammarpost/grammarpost/pkg/logger"
)

// GrammarCorrector runs grammar correction. *dify.Client implements it.
type GrammarCorrector interface {
	CorrectGrammar(ctx context.Context, text, userID string) (*dify.CorrectionResult, error)
}

// GrammarHandler handles the correct-grammar endpoint.
type GrammarHandler struct {
	corrector GrammarCorrector
	logger    logger.Logger
	validator *validator.Validate
}

// NewGrammarHandler creates a new grammar handler.
func NewGrammarHandler(corrector GrammarCorrector, log logger.Logger) *GrammarHandler {
	return &GrammarHandler{
		corrector: corrector,
		logger:    log,
		validator: validator.New(),
	}
}

// CorrectGrammar handles POST /api/correct-grammar
// @Summary Correct the grammar of a text
// @Description Runs the grammar correction workflow on the submitted text
// @Tags grammar
// @Accept json
// @Produce json
// @Param request body models.CorrectGrammarRequest true "Text to correct"
// @Success 200 {object} models.CorrectGrammarResponse "Corrected text"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or missing text"
// @Failure 500 {object} response.ErrorResponse "Workflow provider failure"
// @Router /api/correct-grammar [post]
func (h *GrammarHandler) CorrectGrammar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.CorrectGrammarRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request", "error", err)
		writeDecodeError(w, r, err)
		return
	}

	if req.Text == "" {
		response.Error(w, http.StatusBadRequest, "Text is required", getRequestID(ctx))
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error(), getRequestID(ctx))
		return
	}

	result, err := h.corrector.CorrectGrammar(ctx, req.Text, req.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Grammar correction failed", "error", err, "request_id", getRequestID(ctx))
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.CorrectGrammarResponse{
		OriginalText:  result.OriginalText,
		CorrectedText: result.CorrectedText,
		TaskID:        result.TaskID,
		WorkflowRunID: result.WorkflowRunID,
		Metrics: models.CorrectionMetrics{
			ElapsedTime: result.Metrics.ElapsedTime,
			TotalTokens: result.Metrics.TotalTokens,
			TotalSteps:  result.Metrics.TotalSteps,
		},
	})
}
