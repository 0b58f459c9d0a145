package models

import "errors"

var (
	// ErrEmptyMessage: content is empty after trimming and no files attached.
	ErrEmptyMessage = errors.New("message cannot be empty")
	// ErrMessageTooLong: content exceeds MaxMessageLength characters.
	ErrMessageTooLong = errors.New("message is too long")
	// ErrTooManyFiles: a single message carries more than MaxAttachments files.
	ErrTooManyFiles = errors.New("too many attached files")
	// ErrNotFound: the referenced row does not exist.
	ErrNotFound = errors.New("not found")
)
