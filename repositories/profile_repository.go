package repositories

import "Majanaaber/models"

type ProfileRepository interface {
	FindByID(id string) (models.Profile, error)
	FindByBuilding(buildingID string) ([]models.Profile, error)
	UpdateDeviceToken(userID, token string) error
}
