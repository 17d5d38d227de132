package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"subjectswap_server/helpers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// SearchRequest is the body of POST /api/search/person.
type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

// SearchController serves person search.
type SearchController struct {
	SearchService *services.SearchService
	Logger        *logger.Logger
}

// NewSearchController initializes the search controller
func NewSearchController(service *services.SearchService, log *logger.Logger) *SearchController {
	return &SearchController{SearchService: service, Logger: logger.OrGlobal(log)}
}

// SearchPerson autocompletes usernames
func (sc *SearchController) SearchPerson(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := helpers.DecodeAndValidate(r, &req); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, "No query provided")
		return
	}

	results, err := sc.SearchService.SearchPeople(r.Context(), req.Query)
	if err != nil {
		sc.Logger.Error("search failed", zap.String("query", req.Query), zap.Error(err))
		helpers.WriteError(w, http.StatusInternalServerError, "Search operation failed")
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, results)
}
