package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"subjectswap_server/helpers"
	"subjectswap_server/logger"
	"subjectswap_server/middleware"
	"subjectswap_server/models"
	"subjectswap_server/services"
)

// MatchRequest is the body of POST /api/match.
type MatchRequest struct {
	WantSubject string                `json:"wantSubject" validate:"required"`
	MySubjects  []models.KnownSubject `json:"mySubjects"`
}

// MatchController serves tutor matchmaking.
type MatchController struct {
	MatchService *services.MatchService
	Logger       *logger.Logger
}

// NewMatchController initializes the match controller
func NewMatchController(service *services.MatchService, log *logger.Logger) *MatchController {
	return &MatchController{MatchService: service, Logger: logger.OrGlobal(log)}
}

// FindMatches ranks tutors for the requested subject
func (mc *MatchController) FindMatches(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req MatchRequest
	if err := helpers.DecodeAndValidate(r, &req); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	known := services.ResolveKnownSubjects(req.MySubjects)
	candidates, err := mc.MatchService.Match(r.Context(), userID, req.WantSubject, known)
	if err != nil {
		mc.Logger.Warn("match failed", zap.String("user_id", userID), zap.String("subject", req.WantSubject), zap.Error(err))
		helpers.WriteServiceError(w, err)
		return
	}

	users := make([]models.MatchedUser, 0, len(candidates))
	for _, c := range candidates {
		users = append(users, c.ToMatchedUser())
	}
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"users": users})
}
