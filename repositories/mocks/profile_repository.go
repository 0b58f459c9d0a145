package mocks

import (
	"Majanaaber/models"

	"github.com/stretchr/testify/mock"
)

// ProfileRepository is a testify mock of repositories.ProfileRepository.
type ProfileRepository struct {
	mock.Mock
}

func (m *ProfileRepository) FindByID(id string) (models.Profile, error) {
	args := m.Called(id)
	return args.Get(0).(models.Profile), args.Error(1)
}

func (m *ProfileRepository) FindByBuilding(buildingID string) ([]models.Profile, error) {
	args := m.Called(buildingID)
	return args.Get(0).([]models.Profile), args.Error(1)
}

func (m *ProfileRepository) UpdateDeviceToken(userID, token string) error {
	args := m.Called(userID, token)
	return args.Error(0)
}
