package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"subjectswap_server/helpers"
	"subjectswap_server/logger"
	"subjectswap_server/middleware"
	"subjectswap_server/services"
)

// SubjectRatingRequest rates or un-rates a user's teaching subject.
type SubjectRatingRequest struct {
	To          string  `json:"to" validate:"required"`
	SubjectName string  `json:"subjectName" validate:"required"`
	Rating      float64 `json:"rating" validate:"gte=0,lte=10"`
}

// PersonalityRatingRequest rates or un-rates a user's personality.
type PersonalityRatingRequest struct {
	To     string  `json:"to" validate:"required"`
	Rating float64 `json:"rating" validate:"gte=0,lte=10"`
}

// RatingController serves peer ratings.
type RatingController struct {
	RatingService *services.RatingService
	Logger        *logger.Logger
}

// NewRatingController initializes the rating controller
func NewRatingController(service *services.RatingService, log *logger.Logger) *RatingController {
	return &RatingController{RatingService: service, Logger: logger.OrGlobal(log)}
}

// RateSubject handles POST /api/rating/subject
func (rc *RatingController) RateSubject(w http.ResponseWriter, r *http.Request) {
	var req SubjectRatingRequest
	if err := helpers.DecodeAndValidate(r, &req); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := rc.RatingService.RateSubject(r.Context(), userID, req.To, req.SubjectName, req.Rating); err != nil {
		rc.fail(w, "subject rating failed", userID, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Rating saved"})
}

// RatePersonality handles POST /api/rating/personality
func (rc *RatingController) RatePersonality(w http.ResponseWriter, r *http.Request) {
	var req PersonalityRatingRequest
	if err := helpers.DecodeAndValidate(r, &req); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := rc.RatingService.RatePersonality(r.Context(), userID, req.To, req.Rating); err != nil {
		rc.fail(w, "personality rating failed", userID, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Rating saved"})
}

// TakeBackSubject handles DELETE /api/rating/take_back/subject
func (rc *RatingController) TakeBackSubject(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	subject := r.URL.Query().Get("subjectName")
	if to == "" || subject == "" {
		helpers.WriteError(w, http.StatusBadRequest, "to and subjectName are required")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := rc.RatingService.TakeBackSubject(r.Context(), userID, to, subject); err != nil {
		rc.fail(w, "subject rating take back failed", userID, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Rating removed"})
}

// TakeBackPersonality handles DELETE /api/rating/take_back/personality
func (rc *RatingController) TakeBackPersonality(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	if to == "" {
		helpers.WriteError(w, http.StatusBadRequest, "to is required")
		return
	}

	userID := middleware.GetUserID(r.Context())
	if err := rc.RatingService.TakeBackPersonality(r.Context(), userID, to); err != nil {
		rc.fail(w, "personality rating take back failed", userID, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]string{"message": "Rating removed"})
}

func (rc *RatingController) fail(w http.ResponseWriter, msg, userID string, err error) {
	rc.Logger.Warn(msg, zap.String("user_id", userID), zap.Error(err))
	helpers.WriteServiceError(w, err)
}
