package impl

import (
	"errors"

	"Majanaaber/models"

	"gorm.io/gorm"
)

type ProfileRepositoryImpl struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepositoryImpl {
	return &ProfileRepositoryImpl{DB: db}
}

func (r *ProfileRepositoryImpl) FindByID(id string) (models.Profile, error) {
	var profile models.Profile
	err := r.DB.Where("id = ?", id).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return profile, models.ErrNotFound
	}
	return profile, err
}

func (r *ProfileRepositoryImpl) FindByBuilding(buildingID string) ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.DB.
		Where("building_id = ?", buildingID).
		Order("full_name ASC").
		Find(&profiles).Error
	return profiles, err
}

func (r *ProfileRepositoryImpl) UpdateDeviceToken(userID, token string) error {
	return r.DB.Model(&models.Profile{}).
		Where("id = ?", userID).
		Update("device_token", token).Error
}
