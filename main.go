package main

import (
	"log"
	"os"

	"Majanaaber/config"
	"Majanaaber/controllers"
	"Majanaaber/realtime"
	"Majanaaber/repositories/impl"
	"Majanaaber/routes"
	"Majanaaber/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	db := config.InitDatabase()
	firebaseApp := config.InitFirebase()

	hub := realtime.NewHub()
	go hub.Run()

	// Repositories
	chatRepo := impl.NewChatRepository(db)
	convRepo := impl.NewConversationRepository(db)
	profileRepo := impl.NewProfileRepository(db)
	noticeRepo := impl.NewNoticeRepository(db)

	// Firebase-backed pieces are optional: without credentials the server
	// runs chat without pushes and attachments.
	var storage services.FileStorage
	var notifier services.Notifier
	if firebaseApp != nil {
		fs, err := services.NewFirebaseStorage(firebaseApp)
		if err != nil {
			log.Printf("File storage unavailable: %v", err)
		} else {
			storage = fs
		}

		ns, err := services.NewNotificationService(firebaseApp, profileRepo)
		if err != nil {
			log.Printf("Push notifications unavailable: %v", err)
		} else {
			notifier = ns
		}
	}

	chatService := services.NewChatService(chatRepo, convRepo, profileRepo, hub, storage, notifier)

	chatController := controllers.NewChatController(chatService)
	conversationController := controllers.NewConversationController(chatService)
	noticeController := controllers.NewNoticeController(noticeRepo, hub)
	profileController := controllers.NewProfileController(profileRepo)
	wsController := controllers.NewWebSocketController(chatService, noticeRepo, hub)

	r := gin.Default()
	routes.RegisterRoutes(r, chatController, conversationController, noticeController, profileController, wsController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}

	r.Run(":" + port)
}
