package models

// Conversation document limits.
const (
	// MaxMessagesPerDocument is the rollover threshold for a conversation document.
	MaxMessagesPerDocument = 1000
	// RecentMessagesThreshold is the newest-document size above which older documents are not merged in.
	RecentMessagesThreshold = 100
)

// Attachment key prefixes in the blob store.
const (
	ChatFilesPrefix   = "chat_files/"
	ProfilePicsPrefix = "profile-pics/"
)

// Default DynamoDB table names.
const (
	UserProfilesTable  = "Users"
	ConversationsTable = "Conversations"
)
