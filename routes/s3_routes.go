package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"subjectswap_server/controllers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// RegisterS3Routes sets up routes for S3-related operations
func RegisterS3Routes(r *mux.Router, s3 *services.S3Service, auth Middleware, log *logger.Logger) {
	controller := controllers.NewS3Controller(s3, log)

	r.Handle("/generate-presigned-url", auth(http.HandlerFunc(controller.GeneratePresignedURL))).Methods("POST")
	r.Handle("/get-presigned-read-url", auth(http.HandlerFunc(controller.GetPresignedReadURL))).Methods("POST")
}
