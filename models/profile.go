package models

import "time"

// Роли пользователей в доме
const (
	RoleManager  = "manager"
	RoleOwner    = "owner"
	RoleResident = "resident"
)

type Profile struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	BuildingID  *string   `json:"building_id" gorm:"index"`
	ApartmentNo string    `json:"apartment_no"`
	IsApproved  bool      `json:"is_approved"`
	DeviceToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Profile) IsManager() bool {
	return p.Role == RoleManager
}
