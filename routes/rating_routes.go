package routes

import (
	"github.com/gorilla/mux"

	"subjectswap_server/controllers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// RegisterRatingRoutes sets up routes for peer ratings under /api/rating
func RegisterRatingRoutes(r *mux.Router, ratingService *services.RatingService, auth Middleware, log *logger.Logger) {
	controller := controllers.NewRatingController(ratingService, log)

	ratingRouter := protected(r, "/api/rating", auth)
	ratingRouter.HandleFunc("/subject", controller.RateSubject).Methods("POST")
	ratingRouter.HandleFunc("/personality", controller.RatePersonality).Methods("POST")
	ratingRouter.HandleFunc("/take_back/subject", controller.TakeBackSubject).Methods("DELETE")
	ratingRouter.HandleFunc("/take_back/personality", controller.TakeBackPersonality).Methods("DELETE")
}
