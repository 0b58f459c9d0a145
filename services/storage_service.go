package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
)

// FileStorage stores attachment blobs under opaque keys and resolves
// time-limited download URLs on demand. Keys, not URLs, are what gets
// persisted on attachment rows.
type FileStorage interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) error
	SignedURL(path string, ttl time.Duration) (string, error)
}

// FirebaseStorage keeps chat attachments in the project's default Firebase
// Storage bucket.
type FirebaseStorage struct {
	Bucket *storage.BucketHandle
}

func NewFirebaseStorage(app *firebase.App) (*FirebaseStorage, error) {
	ctx := context.Background()
	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing storage client: %w", err)
	}

	bucket, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("error getting default bucket: %w", err)
	}

	return &FirebaseStorage{Bucket: bucket}, nil
}

func (s *FirebaseStorage) Upload(ctx context.Context, path string, r io.Reader, contentType string) error {
	w := s.Bucket.Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("upload %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}
	return nil
}

func (s *FirebaseStorage) SignedURL(path string, ttl time.Duration) (string, error) {
	url, err := s.Bucket.SignedURL(path, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign url for %s: %w", path, err)
	}
	return url, nil
}
