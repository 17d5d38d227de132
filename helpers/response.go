// Package helpers holds the JSON response and request validation helpers
// shared by the HTTP controllers.
package helpers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

var validate = validator.New()

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Global().Sugar().Errorw("failed to encode response", "error", err)
	}
}

// WriteError writes {"error": message} with the given status.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSONResponse(w, status, map[string]string{"error": message})
}

// WriteServiceError maps a service error to its HTTP status.
func WriteServiceError(w http.ResponseWriter, err error) {
	WriteError(w, StatusFor(err), err.Error())
}

// StatusFor returns the HTTP status for a service error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrPeerNotFound),
		errors.Is(err, models.ErrDocumentNotFound),
		errors.Is(err, models.ErrRatingNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrUnknownSubject),
		errors.Is(err, models.ErrUnsupportedFileType),
		errors.Is(err, models.ErrSelfConversation),
		errors.Is(err, models.ErrSelfRating),
		errors.Is(err, models.ErrInvalidParticipant):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// DecodeAndValidate decodes the JSON body into dst and runs struct validation.
func DecodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request payload: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid request: %s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}
