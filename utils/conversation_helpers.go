package utils

import (
	"strings"

	"subjectswap_server/models"
)

// ConversationPair is the canonical ordering of a two-party conversation.
type ConversationPair struct {
	Users [2]string // Users[0] < Users[1] lexicographically
	Key   string    // "low_high"
}

// OrderUsers sorts the two participant ids and derives the conversation key.
// The result does not depend on argument order.
func OrderUsers(idA, idB string) (ConversationPair, error) {
	if idA == "" || idB == "" {
		return ConversationPair{}, models.ErrInvalidParticipant
	}
	low, high := idA, idB
	if high < low {
		low, high = high, low
	}
	return ConversationPair{
		Users: [2]string{low, high},
		Key:   low + "_" + high,
	}, nil
}

// EncodeSender returns the stored from flag: true iff the larger id sent it.
func EncodeSender(senderID string, pair ConversationPair) bool {
	return senderID == pair.Users[1]
}

// DecodeSender maps a stored from flag back to the sender id.
func DecodeSender(from bool, pair ConversationPair) string {
	if from {
		return pair.Users[1]
	}
	return pair.Users[0]
}

// DecodeReceiver maps a stored from flag to the receiving participant.
func DecodeReceiver(from bool, pair ConversationPair) string {
	if from {
		return pair.Users[0]
	}
	return pair.Users[1]
}

// OtherParticipant extracts the peer id from a conversation key. It reports
// false when the key is malformed or does not contain self.
func OtherParticipant(key, self string) (string, bool) {
	low, high, ok := strings.Cut(key, "_")
	if !ok || low == "" || high == "" {
		return "", false
	}
	switch self {
	case low:
		return high, true
	case high:
		return low, true
	}
	return "", false
}
