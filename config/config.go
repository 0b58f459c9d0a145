package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"Majanaaber/models"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDatabase opens the Postgres connection and migrates the schema.
// TranslateError is required: the duplicate-key handling in the services
// matches on gorm.ErrDuplicatedKey.
func InitDatabase() *gorm.DB {
	host := os.Getenv("DB_HOST")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	port := os.Getenv("DB_PORT")

	sslmode := os.Getenv("DB_SSLMODE")
	if sslmode == "" {
		if strings.Contains(host, "render.com") {
			sslmode = "require"
		} else {
			sslmode = "disable"
		}
	}

	log.Printf("Connecting to database: host=%s user=%s dbname=%s port=%s sslmode=%s",
		host, user, dbname, port, sslmode)

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=Asia/Almaty",
		host, user, password, dbname, port, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	log.Println("Successfully connected to database!")

	if err := db.AutoMigrate(
		&models.Profile{},
		&models.Building{},
		&models.Conversation{},
		&models.Message{},
		&models.Reaction{},
		&models.ReadReceipt{},
		&models.Attachment{},
		&models.Notice{},
		&models.NoticeReadReceipt{},
	); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}
	return db
}

// InitFirebase builds the Firebase app used for push messaging and file
// storage. Returns nil when no credentials are configured so the server can
// run without pushes and attachments in development.
func InitFirebase() *firebase.App {
	credentials := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credentials == "" {
		log.Println("FIREBASE_CREDENTIALS_PATH not set, push notifications and attachments disabled")
		return nil
	}

	conf := &firebase.Config{
		StorageBucket: os.Getenv("FIREBASE_STORAGE_BUCKET"),
	}
	opt := option.WithCredentialsFile(credentials)
	app, err := firebase.NewApp(context.Background(), conf, opt)
	if err != nil {
		log.Fatalf("error initializing firebase app: %v\n", err)
	}
	return app
}
