package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/models"
	"subjectswap_server/utils"
)

// ChatService serves the HTTP side of chat: conversation lists, peer lookups
// and archived documents.
type ChatService struct {
	Log    *ConversationLog
	Users  UserDirectory
	Logger *logger.Logger
}

// NewChatService creates a chat service.
func NewChatService(log *ConversationLog, users UserDirectory, l *logger.Logger) *ChatService {
	return &ChatService{Log: log, Users: users, Logger: logger.OrGlobal(l)}
}

// ListConversations returns a summary of every active peer userID has a conversation with.
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]models.UserSummary, error) {
	keys, err := s.Log.ListConversationKeys(ctx, userID)
	if err != nil {
		return nil, err
	}

	peerKeys := make(map[string]string, len(keys))
	peerIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		peer, ok := utils.OtherParticipant(key, userID)
		if !ok {
			continue
		}
		if _, dup := peerKeys[peer]; dup {
			continue
		}
		peerKeys[peer] = key
		peerIDs = append(peerIDs, peer)
	}

	peers, err := s.Users.FindManyActiveByIDs(ctx, peerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation peers: %w", err)
	}

	summaries := make([]models.UserSummary, 0, len(peers))
	for _, p := range peers {
		summaries = append(summaries, models.UserSummary{
			ConvoID:    peerKeys[p.ID],
			Name:       p.Username,
			ProfilePic: p.ProfilePicURL,
		})
	}

	s.Logger.Debug("conversations listed", zap.String("user_id", userID), zap.Int("count", len(summaries)))
	return summaries, nil
}

// GetUserInfo returns the public summary of the active user id.
func (s *ChatService) GetUserInfo(ctx context.Context, id string) (*models.UserSummary, error) {
	user, err := s.Users.FindActiveByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserSummary{ConvoID: user.ID, Name: user.Username, ProfilePic: user.ProfilePicURL}, nil
}

// Archive returns document seq of the conversation between userID and peerID
// as seen by userID.
func (s *ChatService) Archive(ctx context.Context, userID, peerID string, seq int) ([]models.ChatMessage, error) {
	if userID == peerID {
		return nil, models.ErrSelfConversation
	}
	pair, err := utils.OrderUsers(userID, peerID)
	if err != nil {
		return nil, err
	}

	doc, err := s.Log.ReadArchive(ctx, pair.Key, seq)
	if err != nil {
		return nil, err
	}

	chats := make([]models.ChatMessage, 0, len(doc.Messages))
	for _, m := range doc.Messages {
		byMe := utils.DecodeSender(m.From, pair) == userID
		chats = append(chats, models.NewChatMessage(m, m.Content, byMe))
	}
	return chats, nil
}
