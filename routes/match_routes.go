package routes

import (
	"github.com/gorilla/mux"

	"subjectswap_server/controllers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// RegisterMatchRoutes sets up routes for matchmaking under /api/match
func RegisterMatchRoutes(r *mux.Router, matchService *services.MatchService, auth Middleware, log *logger.Logger) {
	controller := controllers.NewMatchController(matchService, log)

	matchRouter := protected(r, "/api/match", auth)
	matchRouter.HandleFunc("", controller.FindMatches).Methods("POST")
}
