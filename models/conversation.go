package models

import "time"

// MessageType enumerates stored message kinds.
type MessageType string

const (
	MessageTypeText    MessageType = "text"
	MessageTypeFile    MessageType = "file"
	MessageTypeDeleted MessageType = "deleted"
)

// Valid reports whether t is one of the stored kinds.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeText, MessageTypeFile, MessageTypeDeleted:
		return true
	}
	return false
}

// Message is one entry of a conversation document. From is false when the
// lexicographically smaller participant sent it and true for the larger one.
type Message struct {
	ID        string      `dynamodbav:"id" json:"id"`
	Type      MessageType `dynamodbav:"type" json:"type"`
	Timestamp time.Time   `dynamodbav:"timestamp" json:"timestamp"`
	Content   string      `dynamodbav:"content,omitempty" json:"content,omitempty"`
	From      bool        `dynamodbav:"from" json:"from"`
}

// ConversationDocument is one storage unit of a conversation's message log.
type ConversationDocument struct {
	ParticipantID string    `dynamodbav:"participantId" json:"participantId"` // Partition key
	Seq           int       `dynamodbav:"docSeq" json:"docSeq"`               // Sort key, 1-based
	Messages      []Message `dynamodbav:"messages" json:"messages"`
	NoOfMessages  int       `dynamodbav:"noOfMessages" json:"noOfMessages"`
	CreatedAt     time.Time `dynamodbav:"createdAt" json:"createdAt"`
}

// RecentMessages is the result of reading a conversation's recent history.
type RecentMessages struct {
	Messages []Message
	Archived bool
}

// ChatMessage is a message as delivered to one participant.
type ChatMessage struct {
	ID        string      `json:"id"`
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Content   string      `json:"content,omitempty"`
	From      bool        `json:"from"`
	ByMe      bool        `json:"byMe"`
	Deleted   bool        `json:"deleted"`
}

// NewChatMessage builds the delivered view of m with content already transformed.
func NewChatMessage(m Message, content string, byMe bool) ChatMessage {
	return ChatMessage{
		ID:        m.ID,
		Type:      m.Type,
		Timestamp: m.Timestamp,
		Content:   content,
		From:      m.From,
		ByMe:      byMe,
		Deleted:   m.Type == MessageTypeDeleted,
	}
}
