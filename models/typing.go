package models

// TypingUser is a transient in-memory entry for the typing indicator. Never
// persisted; entries expire a few seconds after the last typing signal.
type TypingUser struct {
	UserID   string `json:"user_id"`
	UserName string `json:"user_name"`
}
