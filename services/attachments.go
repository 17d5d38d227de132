package services

import (
	"fmt"
	"path/filepath"
	"strings"

	"subjectswap_server/models"
)

// ResourceKind tells the blob store how to treat an uploaded object.
type ResourceKind string

const (
	ResourceRaw   ResourceKind = "raw"
	ResourceImage ResourceKind = "image"
	ResourceAuto  ResourceKind = "auto"
)

var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// ClassifyAttachment returns the lower-cased extension of name and its resource kind.
// PDFs upload as raw, images as image, anything else as auto. With requireImage
// set, non-image files fail with ErrUnsupportedFileType.
func ClassifyAttachment(name string, requireImage bool) (string, ResourceKind, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))

	kind := ResourceAuto
	switch {
	case ext == "pdf":
		kind = ResourceRaw
	case imageExtensions[ext]:
		kind = ResourceImage
	}

	if requireImage && kind != ResourceImage {
		return "", "", fmt.Errorf("%w: %q", models.ErrUnsupportedFileType, name)
	}
	return ext, kind, nil
}

// AttachmentKey is the blob key for a chat attachment.
func AttachmentKey(messageID, ext string) string {
	if ext == "" {
		return models.ChatFilesPrefix + messageID
	}
	return models.ChatFilesPrefix + messageID + "." + ext
}
