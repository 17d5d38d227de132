package routes

import (
	"github.com/gorilla/mux"

	"subjectswap_server/controllers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// RegisterSearchRoutes sets up person search under /api/search
func RegisterSearchRoutes(r *mux.Router, searchService *services.SearchService, auth Middleware, log *logger.Logger) {
	controller := controllers.NewSearchController(searchService, log)

	searchRouter := protected(r, "/api/search", auth)
	searchRouter.HandleFunc("/person", controller.SearchPerson).Methods("POST")
}
