// Package socket drives the private chat channel: per-connection session
// state, conversation rooms and message fan-out.
package socket

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/metrics"
	"subjectswap_server/models"
	"subjectswap_server/services"
	"subjectswap_server/utils"
)

// Conn is one client connection on the chat namespace.
type Conn interface {
	ID() string
	Emit(event string, args ...interface{})
	Join(room string)
	Leave(room string)
	Close() error
}

// RoomBroadcaster emits to every connection in a room except one.
type RoomBroadcaster interface {
	BroadcastExcept(room, event string, payload interface{}, except Conn)
}

// SessionState is where a connection is in its lifecycle.
type SessionState int

const (
	StateUnauthenticated SessionState = iota
	StateAuthenticated
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthenticated:
		return "authenticated"
	case StateDisconnected:
		return "disconnected"
	}
	return "unknown"
}

// Session is the server-side state of one authenticated connection.
// Events on a session are handled one at a time.
type Session struct {
	mu     sync.Mutex
	conn   Conn
	userID string
	state  SessionState
	joined map[string]struct{}
	logger *logger.Logger
}

// UserID is the authenticated principal.
func (s *Session) UserID() string { return s.userID }

// State is the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Joined reports whether the session is subscribed to conversation key.
func (s *Session) Joined(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.joined[key]
	return ok
}

// ViolationPolicy decides what happens to a connection after an identity
// violation (self conversation, unknown peer). It reports whether the
// connection was terminated.
type ViolationPolicy interface {
	Apply(conn Conn, err error) bool
}

// DisconnectPolicy notifies the client and closes the connection.
type DisconnectPolicy struct{}

func (DisconnectPolicy) Apply(conn Conn, err error) bool {
	conn.Emit(violationEvent(err))
	return true
}

// RejectPolicy notifies the client and keeps the connection open.
type RejectPolicy struct{}

func (RejectPolicy) Apply(conn Conn, err error) bool {
	conn.Emit(violationEvent(err))
	return false
}

// PolicyFor returns DisconnectPolicy when disconnect is set, RejectPolicy otherwise.
func PolicyFor(disconnect bool) ViolationPolicy {
	if disconnect {
		return DisconnectPolicy{}
	}
	return RejectPolicy{}
}

func violationEvent(err error) string {
	if errors.Is(err, models.ErrSelfConversation) {
		return models.EventCantConnectWithSelf
	}
	return models.EventFailedConnection
}

// Options are the collaborators of a Coordinator.
type Options struct {
	Verifier services.CredentialVerifier
	Users    services.UserDirectory
	Log      *services.ConversationLog
	Keys     services.KeyDirectory
	Crypto   *services.SessionCrypto
	Blobs    services.BlobStore
	Rooms    RoomBroadcaster
	Policy   ViolationPolicy
	Logger   *logger.Logger
}

// Coordinator runs the chat session state machine for every connection.
type Coordinator struct {
	verifier services.CredentialVerifier
	users    services.UserDirectory
	log      *services.ConversationLog
	keys     services.KeyDirectory
	crypto   *services.SessionCrypto
	blobs    services.BlobStore
	rooms    RoomBroadcaster
	policy   ViolationPolicy
	logger   *logger.Logger

	now   func() time.Time
	newID func() string

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewCoordinator creates a coordinator. A nil Policy means DisconnectPolicy.
func NewCoordinator(opts Options) *Coordinator {
	policy := opts.Policy
	if policy == nil {
		policy = DisconnectPolicy{}
	}
	keys := opts.Keys
	if keys == nil {
		keys = services.NewMemoryKeyDirectory()
	}
	return &Coordinator{
		verifier: opts.Verifier,
		users:    opts.Users,
		log:      opts.Log,
		keys:     keys,
		crypto:   opts.Crypto,
		blobs:    opts.Blobs,
		rooms:    opts.Rooms,
		policy:   policy,
		logger:   logger.OrGlobal(opts.Logger),
		now:      time.Now,
		newID:    uuid.NewString,
		sessions: make(map[string]*Session),
	}
}

// Session returns the live session for a connection id.
func (c *Coordinator) Session(connID string) (*Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[connID]
	return s, ok
}

// Connect verifies token once and opens the session. On failure the client
// gets authError and the connection is closed.
func (c *Coordinator) Connect(conn Conn, token string) (*Session, error) {
	userID, err := c.verifier.Verify(token)
	if err != nil {
		metrics.RecordChatEvent("connect", "auth_error")
		c.logger.Warn("chat connection rejected", zap.String("conn", conn.ID()), zap.Error(err))
		conn.Emit(models.EventAuthError, err.Error())
		_ = conn.Close()
		return nil, err
	}

	s := &Session{
		conn:   conn,
		userID: userID,
		state:  StateAuthenticated,
		joined: make(map[string]struct{}),
		logger: c.logger.ForUser(userID).With(zap.String("conn", conn.ID())),
	}

	c.mu.Lock()
	c.sessions[conn.ID()] = s
	c.mu.Unlock()

	metrics.SocketConnectionsActive.Inc()
	metrics.RecordChatEvent("connect", "ok")
	s.logger.Info("chat connected")
	return s, nil
}

// JoinConversation subscribes the connection to its conversation with
// req.To and registers the client's session key if one was sent.
func (c *Coordinator) JoinConversation(ctx context.Context, conn Conn, req models.JoinConversationRequest) error {
	return c.handle(conn, models.EventJoinConversation, func(s *Session) error {
		if req.To == s.userID {
			return c.violation(s, models.ErrSelfConversation)
		}
		if _, err := c.users.FindActiveByID(ctx, req.To); err != nil {
			s.logger.Warn("join rejected, peer lookup failed", zap.String("peer", req.To), zap.Error(err))
			return c.violation(s, fmt.Errorf("%w: %s", models.ErrPeerNotFound, req.To))
		}

		pair, err := utils.OrderUsers(s.userID, req.To)
		if err != nil {
			return c.violation(s, fmt.Errorf("%w: %v", models.ErrPeerNotFound, err))
		}

		conn.Join(pair.Key)
		s.joined[pair.Key] = struct{}{}

		if req.PublicKey != "" {
			if err := c.keys.Set(ctx, s.userID, req.PublicKey); err != nil {
				s.logger.Error("failed to register session key", zap.Error(err))
			}
		}
		s.logger.Debug("joined conversation", zap.String("conversation", pair.Key))
		return nil
	})
}

// Offline leaves the conversation room with req.To. The session key stays.
func (c *Coordinator) Offline(_ context.Context, conn Conn, req models.PeerRequest) error {
	return c.handle(conn, models.EventOffline, func(s *Session) error {
		pair, err := utils.OrderUsers(s.userID, req.To)
		if err != nil {
			return err
		}
		conn.Leave(pair.Key)
		delete(s.joined, pair.Key)
		return nil
	})
}

// PreviousChats sends the recent history with req.To back to this connection,
// sealed for the caller's session key when one is registered.
func (c *Coordinator) PreviousChats(ctx context.Context, conn Conn, req models.PeerRequest) error {
	return c.handle(conn, models.EventPreviousChats, func(s *Session) error {
		if req.To == s.userID {
			return c.violation(s, models.ErrSelfConversation)
		}
		pair, err := utils.OrderUsers(s.userID, req.To)
		if err != nil {
			return err
		}

		recent, err := c.log.ReadRecent(ctx, pair.Key)
		if err != nil {
			s.logger.Error("failed to read recent chats", zap.String("conversation", pair.Key), zap.Error(err))
			return err
		}

		publicKey := c.sessionKey(ctx, s, s.userID)
		chats := make([]models.ChatMessage, 0, len(recent.Messages))
		for _, m := range recent.Messages {
			byMe := utils.DecodeSender(m.From, pair) == s.userID
			chats = append(chats, models.NewChatMessage(m, c.seal(s, publicKey, m.Content), byMe))
		}

		conn.Emit(models.EventPreviousChats, models.PreviousChatsResponse{
			ServerPublicKey: c.serverPublicKey(),
			Archived:        recent.Archived,
			Chats:           chats,
		})
		return nil
	})
}

// MessageSent stores a message from this connection to req.To and delivers
// it to both sides, each copy sealed for its recipient.
func (c *Coordinator) MessageSent(ctx context.Context, conn Conn, req models.MessageSentRequest) error {
	return c.handle(conn, models.EventMessageSent, func(s *Session) error {
		if req.To == s.userID {
			return c.violation(s, models.ErrSelfConversation)
		}
		pair, err := utils.OrderUsers(s.userID, req.To)
		if err != nil {
			return err
		}
		if req.Type != models.MessageTypeText && req.Type != models.MessageTypeFile {
			return fmt.Errorf("%w: %q", models.ErrInvalidMessageType, req.Type)
		}

		msg := models.Message{
			ID:        c.newID(),
			Type:      req.Type,
			Timestamp: c.now().UTC(),
			From:      utils.EncodeSender(s.userID, pair),
		}

		switch req.Type {
		case models.MessageTypeText:
			msg.Content = c.open(s, req.Content)
		case models.MessageTypeFile:
			url, err := c.uploadAttachment(ctx, msg.ID, req.FileData)
			if err != nil {
				s.logger.Error("attachment dropped", zap.String("conversation", pair.Key), zap.Error(err))
				return err
			}
			msg.Content = url
		}

		stored, err := c.log.Append(ctx, pair.Key, msg)
		if err != nil {
			s.logger.Error("failed to store message", zap.String("conversation", pair.Key), zap.Error(err))
			return err
		}
		metrics.MessagesStoredTotal.WithLabelValues(string(stored.Type)).Inc()

		senderCopy := models.NewChatMessage(stored, c.seal(s, c.sessionKey(ctx, s, s.userID), stored.Content), true)
		peerCopy := models.NewChatMessage(stored, c.seal(s, c.sessionKey(ctx, s, req.To), stored.Content), false)

		conn.Emit(models.EventMessageReceived, senderCopy)
		if c.rooms != nil {
			c.rooms.BroadcastExcept(pair.Key, models.EventMessageReceived, peerCopy, conn)
		}
		return nil
	})
}

// Disconnect ends the session for conn and drops the user's session key.
func (c *Coordinator) Disconnect(conn Conn, reason string) {
	s, ok := c.Session(conn.ID())
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.endSession(s, reason)
}

// handle runs fn with the session locked and records the outcome.
func (c *Coordinator) handle(conn Conn, event string, fn func(s *Session) error) error {
	s, ok := c.Session(conn.ID())
	if !ok {
		metrics.RecordChatEvent(event, "unauthenticated")
		return models.ErrAuthentication
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateAuthenticated {
		metrics.RecordChatEvent(event, "closed")
		return models.ErrAuthentication
	}

	err := fn(s)
	switch {
	case err == nil:
		metrics.RecordChatEvent(event, "ok")
	case errors.Is(err, models.ErrSelfConversation), errors.Is(err, models.ErrPeerNotFound):
		metrics.RecordChatEvent(event, "violation")
	default:
		metrics.RecordChatEvent(event, "dropped")
	}
	return err
}

// violation applies the policy to err and ends the session if it terminated.
// The session lock must be held.
func (c *Coordinator) violation(s *Session, err error) error {
	s.logger.Warn("chat violation", zap.Error(err))
	if c.policy.Apply(s.conn, err) {
		c.endSession(s, err.Error())
	}
	return err
}

// endSession moves s to Disconnected. The session lock must be held.
func (c *Coordinator) endSession(s *Session, reason string) {
	if s.state == StateDisconnected {
		return
	}
	s.state = StateDisconnected
	s.joined = map[string]struct{}{}

	c.mu.Lock()
	delete(c.sessions, s.conn.ID())
	c.mu.Unlock()

	if err := c.keys.Remove(context.Background(), s.userID); err != nil {
		s.logger.Error("failed to drop session key", zap.Error(err))
	}
	metrics.SocketConnectionsActive.Dec()
	metrics.RecordChatEvent("disconnect", "ok")
	s.logger.Info("chat disconnected", zap.String("reason", reason))

	_ = s.conn.Close()
}

func (c *Coordinator) sessionKey(ctx context.Context, s *Session, userID string) string {
	key, ok, err := c.keys.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("session key lookup failed", zap.String("for", userID), zap.Error(err))
		return ""
	}
	if !ok {
		return ""
	}
	return key
}

func (c *Coordinator) seal(s *Session, publicKey, content string) string {
	if c.crypto == nil || publicKey == "" || content == "" {
		return content
	}
	sealed := c.crypto.SealFor(publicKey, content)
	if sealed.Fallback != nil {
		metrics.EncryptionFallbacksTotal.WithLabelValues("outbound").Inc()
		s.logger.Debug("sending plaintext", zap.Error(sealed.Fallback))
	}
	return sealed.Content
}

func (c *Coordinator) open(s *Session, content string) string {
	if c.crypto == nil || content == "" {
		return content
	}
	opened := c.crypto.Open(content)
	if opened.Fallback != nil {
		metrics.EncryptionFallbacksTotal.WithLabelValues("inbound").Inc()
		s.logger.Debug("treating content as plaintext", zap.Error(opened.Fallback))
	}
	return opened.Content
}

func (c *Coordinator) serverPublicKey() string {
	if c.crypto == nil {
		return ""
	}
	return c.crypto.PublicKeyPEM()
}

func (c *Coordinator) uploadAttachment(ctx context.Context, messageID string, file *models.FileData) (string, error) {
	if file == nil || len(file.Buffer) == 0 || file.Name == "" {
		return "", models.ErrMissingAttachment
	}
	ext, kind, err := services.ClassifyAttachment(file.Name, false)
	if err != nil {
		return "", err
	}
	if c.blobs == nil {
		return "", fmt.Errorf("%w: no blob store configured", models.ErrUpload)
	}
	url, err := c.blobs.Upload(ctx, file.Buffer, services.AttachmentKey(messageID, ext), kind)
	if err != nil {
		if errors.Is(err, models.ErrUpload) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", models.ErrUpload, err)
	}
	return url, nil
}
