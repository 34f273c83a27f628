package handler

import (
	"encoding/json"
	"net/http"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/service"
	apperrors "maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// JudgeHandler serves the token-authenticated judge surface.
type JudgeHandler struct {
	judging  *service.JudgingService
	validate *validator.Validate
	logger   *logger.Logger
}

// NewJudgeHandler creates a judge handler.
func NewJudgeHandler(judging *service.JudgingService, logger *logger.Logger) *JudgeHandler {
	return &JudgeHandler{
		judging:  judging,
		validate: validator.New(),
		logger:   logger,
	}
}

// RegisterRoutes mounts the judge routes.
func (h *JudgeHandler) RegisterRoutes(r chi.Router) {
	r.Route("/judge/{token}", func(r chi.Router) {
		r.Get("/submissions", h.GetSubmissions)
		r.Post("/score", h.SubmitScore)
	})
}

// GetSubmissions handles GET /api/judge/{token}/submissions.
func (h *JudgeHandler) GetSubmissions(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	board, err := h.judging.GetBoard(r.Context(), token)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, board)
}

// SubmitScore handles POST /api/judge/{token}/score.
func (h *JudgeHandler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req domain.ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.logger)
		return
	}

	if err := h.validate.Struct(&req); err != nil {
		respondError(w, apperrors.NewValidationError(validationMessage(err), nil), h.logger)
		return
	}

	result, err := h.judging.RecordScore(r.Context(), token, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, result)
}

// validationMessage flattens a validator error into something a client can
// show.
func validationMessage(err error) string {
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		first := verrs[0]
		switch first.Tag() {
		case "required":
			return first.Field() + " is required"
		case "min", "max":
			return first.Field() + " is out of range"
		case "oneof":
			return first.Field() + " has an unsupported value"
		}
		return first.Field() + " is invalid"
	}
	return "Invalid request"
}
