package models

import "time"

// Notice is an announcement posted on a building's notice board.
type Notice struct {
	ID         string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	BuildingID string    `json:"building_id" gorm:"index;not null"`
	AuthorID   string    `json:"author_id" gorm:"not null"`
	Title      string    `json:"title"`
	Content    string    `json:"content" gorm:"type:text"`
	CreatedAt  time.Time `json:"created_at"`
}

// NoticeReadReceipt records that a user opened a notice. Upserted on
// (notice_id, user_id) so repeated reads stay idempotent.
type NoticeReadReceipt struct {
	ID       string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	NoticeID string    `json:"notice_id" gorm:"index;not null;uniqueIndex:idx_notice_receipt_once,priority:1"`
	UserID   string    `json:"user_id" gorm:"not null;uniqueIndex:idx_notice_receipt_once,priority:2"`
	ReadAt   time.Time `json:"read_at"`

	Reader Profile `json:"reader" gorm:"foreignKey:UserID"`
}
