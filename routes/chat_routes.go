package routes

import (
	"github.com/gorilla/mux"

	"subjectswap_server/controllers"
	"subjectswap_server/logger"
	"subjectswap_server/services"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, auth Middleware, log *logger.Logger) {
	controller := controllers.NewChatController(chatService, log)

	chatRouter := protected(r, "/api/chat", auth)
	chatRouter.HandleFunc("/conversations", controller.ListConversations).Methods("GET")
	chatRouter.HandleFunc("/users/{id}", controller.GetUserInfo).Methods("GET")
	chatRouter.HandleFunc("/archive", controller.GetArchive).Methods("GET")
}
