package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"maximally-judging/internal/domain"
	"maximally-judging/internal/middleware"
	"maximally-judging/internal/repository"
	"maximally-judging/internal/service"
	apperrors "maximally-judging/pkg/errors"
	"maximally-judging/pkg/logger"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// OrganizerHandler serves the bearer-authenticated organizer surface:
// progress tracking, reminders, winner determination, and moderation.
type OrganizerHandler struct {
	hackathonRepo repository.HackathonRepository
	progress      *service.ProgressService
	winners       *service.WinnerService
	moderation    *service.ModerationService
	validate      *validator.Validate
	logger        *logger.Logger
}

// NewOrganizerHandler creates an organizer handler.
func NewOrganizerHandler(
	hackathonRepo repository.HackathonRepository,
	progress *service.ProgressService,
	winners *service.WinnerService,
	moderation *service.ModerationService,
	logger *logger.Logger,
) *OrganizerHandler {
	return &OrganizerHandler{
		hackathonRepo: hackathonRepo,
		progress:      progress,
		winners:       winners,
		moderation:    moderation,
		validate:      validator.New(),
		logger:        logger,
	}
}

// RegisterRoutes mounts the organizer routes. The caller wraps them in the
// bearer auth middleware.
func (h *OrganizerHandler) RegisterRoutes(r chi.Router) {
	r.Route("/organizer", func(r chi.Router) {
		r.Route("/hackathons/{id}", func(r chi.Router) {
			r.Get("/judge-progress", h.GetJudgeProgress)
			r.Post("/send-judge-reminders", h.SendJudgeReminders)
			r.Post("/calculate-winners", h.CalculateWinners)
			r.Post("/propose-winners", h.ProposeWinners)
			r.Get("/winners", h.ListWinners)
			r.Get("/submissions/moderation", h.ListModeration)
			r.Post("/submissions/moderation", h.ModerateSubmission)
		})
		r.Post("/winners/{id}/approve", h.ApproveWinner)
	})
}

// requireHackathon resolves {id}, loads the hackathon, and verifies the
// authenticated user is its owner or a co-organizer.
func (h *OrganizerHandler) requireHackathon(w http.ResponseWriter, r *http.Request) *domain.Hackathon {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, apperrors.NewValidationError("Invalid hackathon id", nil), h.logger)
		return nil
	}

	hackathon, err := h.hackathonRepo.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, apperrors.NewInternalError("Failed to load hackathon", err), h.logger)
		return nil
	}
	if hackathon == nil {
		respondError(w, apperrors.NewNotFoundError("Hackathon not found"), h.logger)
		return nil
	}

	if !h.authorize(w, r, hackathon.ID) {
		return nil
	}

	return hackathon
}

// authorize checks organizer membership for a hackathon id.
func (h *OrganizerHandler) authorize(w http.ResponseWriter, r *http.Request, hackathonID int64) bool {
	user := middleware.UserFromContext(r.Context())
	if user == nil {
		respondError(w, apperrors.NewAuthenticationError("Authentication required"), h.logger)
		return false
	}

	ok, err := h.hackathonRepo.IsOrganizer(r.Context(), hackathonID, user.Sub)
	if err != nil {
		respondError(w, apperrors.NewInternalError("Failed to check organizer access", err), h.logger)
		return false
	}
	if !ok {
		respondError(w, apperrors.NewAuthorizationError("You are not an organizer of this hackathon"), h.logger)
		return false
	}

	return true
}

// GetJudgeProgress handles GET /api/organizer/hackathons/{id}/judge-progress.
func (h *OrganizerHandler) GetJudgeProgress(w http.ResponseWriter, r *http.Request) {
	hackathon := h.requireHackathon(w, r)
	if hackathon == nil {
		return
	}

	report, err := h.progress.GetReport(r.Context(), hackathon.ID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, report)
}

// SendJudgeReminders handles POST /api/organizer/hackathons/{id}/send-judge-reminders.
func (h *OrganizerHandler) SendJudgeReminders(w http.ResponseWriter, r *http.Request) {
	hackathon := h.requireHackathon(w, r)
	if hackathon == nil {
		return
	}

	result, err := h.progress.SendReminders(r.Context(), hackathon)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, result)
}

// CalculateWinners handles POST /api/organizer/hackathons/{id}/calculate-winners.
// The result is advisory; nothing is persisted until propose.
func (h *OrganizerHandler) CalculateWinners(w http.ResponseWriter, r *http.Request) {
	hackathon := h.requireHackathon(w, r)
	if hackathon == nil {
		return
	}

	candidates, err := h.winners.Calculate(r.Context(), hackathon)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, candidates)
}

// ProposeWinners handles POST /api/organizer/hackathons/{id}/propose-winners.
func (h *OrganizerHandler) ProposeWinners(w http.ResponseWriter, r *http.Request) {
	hackathon := h.requireHackathon(w, r)
	if hackathon == nil {
		return
	}

	var req domain.ProposeWinnersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, apperrors.NewValidationError(validationMessage(err), nil), h.logger)
		return
	}

	winners, err := h.winners.Propose(r.Context(), hackathon, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusCreated, winners)
}

// ListWinners handles GET /api/organizer/hackathons/{id}/winners.
func (h *OrganizerHandler) ListWinners(w http.ResponseWriter, r *http.Request) {
	hackathon := h.requireHackathon(w, r)
	if hackathon == nil {
		return
	}

	winners, err := h.winners.List(r.Context(), hackathon.ID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, winners)
}

// ApproveWinner handles POST /api/organizer/winners/{id}/approve. The
// hackathon for the access check is resolved through the winner row.
func (h *OrganizerHandler) ApproveWinner(w http.ResponseWriter, r *http.Request) {
	winnerID := chi.URLParam(r, "id")
	if winnerID == "" {
		respondError(w, apperrors.NewValidationError("Winner id is required", nil), h.logger)
		return
	}

	winner, err := h.winners.Get(r.Context(), winnerID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	if !h.authorize(w, r, winner.HackathonID) {
		return
	}

	approved, err := h.winners.Approve(r.Context(), winnerID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, approved)
}

// ListModeration handles GET /api/organizer/hackathons/{id}/submissions/moderation.
func (h *OrganizerHandler) ListModeration(w http.ResponseWriter, r *http.Request) {
	hackathon := h.requireHackathon(w, r)
	if hackathon == nil {
		return
	}

	subs, err := h.moderation.List(r.Context(), hackathon.ID)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, subs)
}

// ModerateSubmission handles POST /api/organizer/hackathons/{id}/submissions/moderation.
func (h *OrganizerHandler) ModerateSubmission(w http.ResponseWriter, r *http.Request) {
	hackathon := h.requireHackathon(w, r)
	if hackathon == nil {
		return
	}

	var req domain.ModerationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, apperrors.NewValidationError("Invalid request body", nil), h.logger)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		respondError(w, apperrors.NewValidationError(validationMessage(err), nil), h.logger)
		return
	}

	submission, err := h.moderation.Moderate(r.Context(), hackathon, &req)
	if err != nil {
		respondError(w, err, h.logger)
		return
	}

	respondData(w, http.StatusOK, submission)
}
