package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"subjectswap_server/helpers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// PresignRequest asks for a profile picture upload URL.
type PresignRequest struct {
	FileName string `json:"fileName" validate:"required"`
	FileType string `json:"fileType" validate:"required"`
}

// ReadURLRequest asks for a read URL for an object key.
type ReadURLRequest struct {
	Key string `json:"key" validate:"required"`
}

// S3Controller issues presigned S3 URLs.
type S3Controller struct {
	S3     *services.S3Service
	Logger *logger.Logger
}

// NewS3Controller initializes the S3 controller
func NewS3Controller(s3 *services.S3Service, log *logger.Logger) *S3Controller {
	return &S3Controller{S3: s3, Logger: logger.OrGlobal(log)}
}

// GeneratePresignedURL generates a presigned URL for profile picture uploads
func (sc *S3Controller) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload PresignRequest
	if err := helpers.DecodeAndValidate(r, &payload); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, fileName, err := sc.S3.GenerateUploadURL(r.Context(), payload.FileName, payload.FileType)
	if err != nil {
		sc.Logger.Warn("presigned upload URL refused", zap.String("file", payload.FileName), zap.Error(err))
		helpers.WriteServiceError(w, err)
		return
	}

	sc.Logger.Debug("presigned upload URL issued", zap.String("key", fileName))
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "fileName": fileName})
}

// GetPresignedReadURL generates a presigned URL for reading S3 objects
func (sc *S3Controller) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload ReadURLRequest
	if err := helpers.DecodeAndValidate(r, &payload); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	url, err := sc.S3.GenerateReadURL(r.Context(), payload.Key)
	if err != nil {
		helpers.WriteError(w, http.StatusInternalServerError, "Failed to generate read pre-signed URL")
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
