package models

import "errors"

// Identity and authorization failures. These end the socket session.
var (
	ErrAuthentication     = errors.New("authentication error")
	ErrSelfConversation   = errors.New("cannot open a conversation with yourself")
	ErrPeerNotFound       = errors.New("conversation peer not found")
	ErrInvalidParticipant = errors.New("conversation participant id is empty")
)

// Request and content failures.
var (
	ErrUnknownSubject      = errors.New("no matching subject found")
	ErrUserNotFound        = errors.New("user not found")
	ErrUpload              = errors.New("attachment upload failed")
	ErrEncryption          = errors.New("content transform failed")
	ErrUnsupportedFileType = errors.New("the uploaded file is not of supported image extension")
	ErrInvalidMessageType  = errors.New("invalid message type")
	ErrMissingAttachment   = errors.New("file message without attachment data")
	ErrRatingNotFound      = errors.New("no rating to take back")
	ErrSelfRating          = errors.New("cannot rate yourself")
)

// Conversation store conditions.
var (
	ErrDocumentFull     = errors.New("conversation document is full")
	ErrDocumentExists   = errors.New("conversation document already exists")
	ErrDocumentNotFound = errors.New("conversation document not found")
)
