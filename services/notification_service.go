package services

import (
	"context"
	"fmt"
	"log"

	"Majanaaber/repositories"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
)

// NotificationService отправляет push-уведомления через Firebase Cloud Messaging
type NotificationService struct {
	FCMClient   *messaging.Client
	ProfileRepo repositories.ProfileRepository
}

func NewNotificationService(app *firebase.App, profileRepo repositories.ProfileRepository) (*NotificationService, error) {
	ctx := context.Background()
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing FCM client: %w", err)
	}

	return &NotificationService{
		FCMClient:   client,
		ProfileRepo: profileRepo,
	}, nil
}

// SendNotification отправляет push-уведомление на устройство
func (s *NotificationService) SendNotification(deviceToken, title, body string, data map[string]string) error {
	if deviceToken == "" {
		return fmt.Errorf("device token is empty")
	}

	message := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data:  data,
		Token: deviceToken,
	}

	ctx := context.Background()
	resp, err := s.FCMClient.Send(ctx, message)
	if err != nil {
		log.Printf("[FCM] error sending notification: %v", err)
		return err
	}

	log.Printf("[FCM] notification sent. ID: %s, Title: %s", resp, title)
	return nil
}

// NotifyNewMessage pushes a new-message notification to the recipient's
// device. Users without a registered token are skipped silently.
func (s *NotificationService) NotifyNewMessage(recipientID, senderName, preview string) error {
	recipient, err := s.ProfileRepo.FindByID(recipientID)
	if err != nil {
		return fmt.Errorf("recipient not found: %w", err)
	}

	if recipient.DeviceToken == "" {
		return nil
	}

	return s.SendNotification(recipient.DeviceToken, senderName, preview, map[string]string{
		"type": "new_message",
	})
}
