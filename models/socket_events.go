package models

// Socket.io namespace and event names on the private chat channel.
const (
	ChatNamespace = "/private_chat"

	EventJoinConversation    = "join_conversation"
	EventOffline             = "offline"
	EventPreviousChats       = "previous_chats"
	EventMessageSent         = "message_sent"
	EventMessageReceived     = "message_received"
	EventCantConnectWithSelf = "cantConnectWithSelf"
	EventFailedConnection    = "failedConnection"
	EventAuthError           = "authError"
)

// JoinConversationRequest is the join_conversation payload.
type JoinConversationRequest struct {
	To        string `json:"to"`
	PublicKey string `json:"publicKey,omitempty"`
}

// PeerRequest carries only the peer id (offline, previous_chats).
type PeerRequest struct {
	To string `json:"to"`
}

// FileData is an attachment sent inline with message_sent.
type FileData struct {
	Buffer []byte `json:"buffer"`
	Name   string `json:"name"`
}

// MessageSentRequest is the message_sent payload.
type MessageSentRequest struct {
	To       string      `json:"to"`
	Content  string      `json:"content"`
	Type     MessageType `json:"type"`
	FileData *FileData   `json:"filedata,omitempty"`
}

// PreviousChatsResponse is emitted back to the requester of previous_chats.
type PreviousChatsResponse struct {
	ServerPublicKey string        `json:"server_public_key,omitempty"`
	Archived        bool          `json:"archived"`
	Chats           []ChatMessage `json:"chats"`
}
