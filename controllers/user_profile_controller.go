package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"subjectswap_server/helpers"
	"subjectswap_server/logger"
	"subjectswap_server/middleware"
	"subjectswap_server/services"
)

// UpdateSubjectsRequest is the body of PUT /api/profile/subjects.
type UpdateSubjectsRequest struct {
	TeachingSubjects []services.SubjectDeclaration `json:"teachingSubjects" validate:"dive"`
	LearningSubjects []string                      `json:"learningSubjects"`
}

// UserProfileController serves the caller's own profile.
type UserProfileController struct {
	ProfileService *services.ProfileService
	Users          services.UserDirectory
	Logger         *logger.Logger
}

// NewUserProfileController initializes the profile controller
func NewUserProfileController(profiles *services.ProfileService, users services.UserDirectory, log *logger.Logger) *UserProfileController {
	return &UserProfileController{ProfileService: profiles, Users: users, Logger: logger.OrGlobal(log)}
}

// GetMyProfile returns the caller's profile
func (uc *UserProfileController) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	profile, err := uc.Users.FindActiveByID(r.Context(), userID)
	if err != nil {
		helpers.WriteServiceError(w, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, profile)
}

// UpdateSubjects replaces the caller's teaching and learning subjects
func (uc *UserProfileController) UpdateSubjects(w http.ResponseWriter, r *http.Request) {
	var req UpdateSubjectsRequest
	if err := helpers.DecodeAndValidate(r, &req); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	userID := middleware.GetUserID(r.Context())
	profile, err := uc.ProfileService.UpdateSubjects(r.Context(), userID, req.TeachingSubjects, req.LearningSubjects)
	if err != nil {
		uc.Logger.Warn("subject update failed", zap.String("user_id", userID), zap.Error(err))
		helpers.WriteServiceError(w, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, profile)
}
