package routes

import (
	"Majanaaber/controllers"
	"Majanaaber/middlewares"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.Engine,
	chat *controllers.ChatController,
	conversations *controllers.ConversationController,
	notices *controllers.NoticeController,
	profiles *controllers.ProfileController,
	ws *controllers.WebSocketController,
) {
	r.GET("/ws", middlewares.AuthMiddleware(), ws.ServeWs)

	// Building chat
	buildings := r.Group("/buildings")
	buildings.Use(middlewares.AuthMiddleware())
	{
		buildings.GET("/:building_id/residents", profiles.ListBuildingResidents)
		buildings.GET("/:building_id/messages", chat.GetBuildingMessages)
		buildings.POST("/:building_id/messages", chat.SendBuildingMessage)
		buildings.DELETE("/:building_id/messages/:message_id", chat.DeleteBuildingMessage)
	}

	// Peer conversations
	convs := r.Group("/conversations")
	convs.Use(middlewares.AuthMiddleware())
	{
		convs.GET("", conversations.ListConversations)
		convs.POST("", conversations.GetOrCreateConversation)
		convs.GET("/:conversation_id/messages", chat.GetConversationMessages)
		convs.POST("/:conversation_id/messages", chat.SendConversationMessage)
		convs.PUT("/:conversation_id/messages/:message_id", chat.EditConversationMessage)
		convs.DELETE("/:conversation_id/messages/:message_id", chat.DeleteConversationMessage)
	}

	// Reactions, read receipts and attachments apply to both chat flavors
	messages := r.Group("/messages")
	messages.Use(middlewares.AuthMiddleware())
	{
		messages.POST("/:message_id/reactions", chat.AddReaction)
		messages.DELETE("/:message_id/reactions", chat.RemoveReaction)
		messages.POST("/:message_id/read", chat.MarkMessageAsRead)
	}
	r.GET("/attachments/url", middlewares.AuthMiddleware(), chat.GetAttachmentURL)

	// Profiles and device tokens
	profileGroup := r.Group("/profiles")
	profileGroup.Use(middlewares.AuthMiddleware())
	{
		profileGroup.GET("/:user_id", profiles.GetProfile)
		profileGroup.POST("/device-token", profiles.RegisterDeviceToken)
	}

	// Notice board read receipts
	noticeGroup := r.Group("/notices")
	noticeGroup.Use(middlewares.AuthMiddleware())
	{
		noticeGroup.GET("/:notice_id/receipts", notices.GetReceipts)
		noticeGroup.POST("/:notice_id/read", notices.MarkAsRead)
	}
}
