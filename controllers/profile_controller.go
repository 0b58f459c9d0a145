package controllers

import (
	"errors"
	"net/http"

	"Majanaaber/models"
	"Majanaaber/repositories"

	"github.com/gin-gonic/gin"
)

type ProfileController struct {
	Profiles repositories.ProfileRepository
}

func NewProfileController(profiles repositories.ProfileRepository) *ProfileController {
	return &ProfileController{Profiles: profiles}
}

// GetProfile возвращает профиль пользователя
func (ctl *ProfileController) GetProfile(c *gin.Context) {
	profile, err := ctl.Profiles.FindByID(c.Param("user_id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// ListBuildingResidents lists a building's residents, used to pick a peer
// when starting a conversation.
func (ctl *ProfileController) ListBuildingResidents(c *gin.Context) {
	profiles, err := ctl.Profiles.FindByBuilding(c.Param("building_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profiles})
}

// RegisterDeviceToken сохраняет FCM-токен устройства для push-уведомлений
func (ctl *ProfileController) RegisterDeviceToken(c *gin.Context) {
	var input struct {
		DeviceToken string `json:"device_token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetString("user_id")
	if err := ctl.Profiles.UpdateDeviceToken(userID, input.DeviceToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
