package controllers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"subjectswap_server/helpers"
	"subjectswap_server/logger"
	"subjectswap_server/middleware"
	"subjectswap_server/services"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
	Logger      *logger.Logger
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService, log *logger.Logger) *ChatController {
	return &ChatController{ChatService: service, Logger: logger.OrGlobal(log)}
}

// ListConversations returns everyone the caller has a conversation with
func (c *ChatController) ListConversations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	summaries, err := c.ChatService.ListConversations(r.Context(), userID)
	if err != nil {
		c.Logger.Error("failed to list conversations", zap.String("user_id", userID), zap.Error(err))
		helpers.WriteServiceError(w, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, summaries)
}

// GetUserInfo returns a chat peer's name and picture
func (c *ChatController) GetUserInfo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	summary, err := c.ChatService.GetUserInfo(r.Context(), id)
	if err != nil {
		helpers.WriteServiceError(w, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, summary)
}

// GetArchive returns one archived conversation document
func (c *ChatController) GetArchive(w http.ResponseWriter, r *http.Request) {
	to := r.URL.Query().Get("to")
	seq, err := strconv.Atoi(r.URL.Query().Get("doc"))
	if to == "" || err != nil || seq < 1 {
		helpers.WriteError(w, http.StatusBadRequest, "to and a positive doc are required")
		return
	}

	userID := middleware.GetUserID(r.Context())
	chats, err := c.ChatService.Archive(r.Context(), userID, to, seq)
	if err != nil {
		helpers.WriteServiceError(w, err)
		return
	}
	helpers.WriteJSONResponse(w, http.StatusOK, map[string]interface{}{"doc": seq, "chats": chats})
}
