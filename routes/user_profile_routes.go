package routes

import (
	"github.com/gorilla/mux"

	"subjectswap_server/controllers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// RegisterUserProfileRoutes sets up routes for the caller's profile under /api/profile
func RegisterUserProfileRoutes(r *mux.Router, profiles *services.ProfileService, users services.UserDirectory, auth Middleware, log *logger.Logger) {
	controller := controllers.NewUserProfileController(profiles, users, log)

	profileRouter := protected(r, "/api/profile", auth)
	profileRouter.HandleFunc("/me", controller.GetMyProfile).Methods("GET")
	profileRouter.HandleFunc("/subjects", controller.UpdateSubjects).Methods("PUT")
}
