package socket

import (
	"context"
	"net/http"
	"strings"

	socketio "github.com/googollee/go-socket.io"
	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

// Server binds a Coordinator to go-socket.io on the private chat namespace.
type Server struct {
	IO          *socketio.Server
	Coordinator *Coordinator
	logger      *logger.Logger
}

// ioConn adapts socketio.Conn to Conn.
type ioConn struct {
	socketio.Conn
}

// roomBroadcaster fans out through the socket.io rooms of one namespace.
type roomBroadcaster struct {
	io        *socketio.Server
	namespace string
}

func (b roomBroadcaster) BroadcastExcept(room, event string, payload interface{}, except Conn) {
	exceptID := ""
	if except != nil {
		exceptID = except.ID()
	}
	b.io.ForEach(b.namespace, room, func(c socketio.Conn) {
		if c.ID() != exceptID {
			c.Emit(event, payload)
		}
	})
}

// NewSocketServer initializes the Socket.IO server and registers the chat handlers.
// opts.Rooms is filled in with the socket.io room broadcaster.
func NewSocketServer(opts Options) *Server {
	io := socketio.NewServer(nil)
	opts.Rooms = roomBroadcaster{io: io, namespace: models.ChatNamespace}
	coord := NewCoordinator(opts)

	srv := &Server{IO: io, Coordinator: coord, logger: logger.OrGlobal(opts.Logger)}
	srv.register()
	return srv
}

func (srv *Server) register() {
	nsp := models.ChatNamespace

	srv.IO.OnConnect(nsp, func(s socketio.Conn) error {
		_, err := srv.Coordinator.Connect(ioConn{s}, tokenFrom(s))
		return err
	})

	srv.IO.OnEvent(nsp, models.EventJoinConversation, func(s socketio.Conn, req models.JoinConversationRequest) {
		_ = srv.Coordinator.JoinConversation(context.Background(), ioConn{s}, req)
	})

	srv.IO.OnEvent(nsp, models.EventOffline, func(s socketio.Conn, req models.PeerRequest) {
		_ = srv.Coordinator.Offline(context.Background(), ioConn{s}, req)
	})

	srv.IO.OnEvent(nsp, models.EventPreviousChats, func(s socketio.Conn, req models.PeerRequest) {
		_ = srv.Coordinator.PreviousChats(context.Background(), ioConn{s}, req)
	})

	srv.IO.OnEvent(nsp, models.EventMessageSent, func(s socketio.Conn, req models.MessageSentRequest) {
		_ = srv.Coordinator.MessageSent(context.Background(), ioConn{s}, req)
	})

	srv.IO.OnError(nsp, func(s socketio.Conn, err error) {
		if s == nil {
			srv.logger.Warn("socket error", zap.Error(err))
			return
		}
		srv.logger.Warn("socket error", zap.String("conn", s.ID()), zap.Error(err))
	})

	srv.IO.OnDisconnect(nsp, func(s socketio.Conn, reason string) {
		srv.Coordinator.Disconnect(ioConn{s}, reason)
	})
}

// Start serves socket.io in the background.
func (srv *Server) Start() {
	go func() {
		if err := srv.IO.Serve(); err != nil {
			srv.logger.Error("socket.io server stopped", zap.Error(err))
		}
	}()
}

// Close shuts the socket.io server down.
func (srv *Server) Close() error {
	return srv.IO.Close()
}

// ServeHTTP lets the server be mounted on a router.
func (srv *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	srv.IO.ServeHTTP(w, r)
}

// tokenFrom reads the login token from the handshake query or Authorization header.
func tokenFrom(s socketio.Conn) string {
	u := s.URL()
	if token := u.Query().Get("token"); token != "" {
		return token
	}
	auth := s.RemoteHeader().Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}
