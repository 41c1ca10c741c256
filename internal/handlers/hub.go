package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haven-dev/haven/db"
	"github.com/haven-dev/haven/internal/auth"
	"github.com/haven-dev/haven/internal/models"
	"github.com/haven-dev/haven/internal/utils"
	"gorm.io/gorm"
)

type CreateHubRequest struct {
	Name  string `json:"name" binding:"required"`
	Model string `json:"model"`
}

type UpdateHubRequest struct {
	Name     string `json:"name"`
	Model    string `json:"model"`
	IsActive *bool  `json:"is_active"`
}

type HubSummary struct {
	ID             uint       `json:"id"`
	Name           string     `json:"name"`
	Model          string     `json:"model"`
	IsActive       bool       `json:"is_active"`
	LastConnection *time.Time `json:"last_connection"`
	IPAddress      string     `json:"ip_address"`
	DeviceCount    int64      `json:"device_count"`
	CreatedAt      time.Time  `json:"created_at"`
}

func hubSummary(hub models.Hub) HubSummary {
	var deviceCount int64

	db.DB.Model(&models.Device{}).Where("hub_id = ?", hub.ID).Count(&deviceCount)

	return HubSummary{
		ID:             hub.ID,
		Name:           hub.Name,
		Model:          hub.Model,
		IsActive:       hub.IsActive,
		LastConnection: hub.LastConnection,
		IPAddress:      hub.IPAddress,
		DeviceCount:    deviceCount,
		CreatedAt:      hub.CreatedAt,
	}
}

func findSpaceHub(ctx *gin.Context, spaceID uint) (models.Hub, bool) {
	hubID, err := utils.GetHubID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Hub{}, false
	}

	var hub models.Hub

	if err := db.DB.Where("id = ? AND space_id = ?", hubID, spaceID).First(&hub).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Hub not found"})
		} else {
			log.Printf("Failed to fetch hub %d: %v", hubID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve hub"})
		}
		return models.Hub{}, false
	}

	return hub, true
}

func CreateHub(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	var req CreateHubRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hub := models.Hub{
		Name:     req.Name,
		Model:    req.Model,
		APIKey:   auth.GenerateAPIKey(),
		IsActive: true,
		SpaceID:  space.ID,
	}

	if err := db.DB.Create(&hub).Error; err != nil {
		log.Printf("Failed to create hub: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create hub"})
		return
	}

	// The API key is returned once, at creation time only.
	ctx.JSON(http.StatusCreated, gin.H{
		"hub":     hubSummary(hub),
		"api_key": hub.APIKey,
	})
}

func ListHubs(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	skip, limit := utils.GetPagination(ctx)

	var hubs []models.Hub

	if err := db.DB.Where("space_id = ?", space.ID).Offset(skip).Limit(limit).Find(&hubs).Error; err != nil {
		log.Printf("Failed to list hubs for space %d: %v", space.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve hubs"})
		return
	}

	summaries := make([]HubSummary, 0, len(hubs))

	for _, hub := range hubs {
		summaries = append(summaries, hubSummary(hub))
	}

	ctx.JSON(http.StatusOK, gin.H{"hubs": summaries})
}

func GetHub(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	hub, ok := findSpaceHub(ctx, space.ID)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"hub": hubSummary(hub)})
}

func UpdateHub(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	hub, ok := findSpaceHub(ctx, space.ID)

	if !ok {
		return
	}

	var req UpdateHubRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Model != "" {
		updates["model"] = req.Model
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&hub).Updates(updates).Error; err != nil {
		log.Printf("Failed to update hub %d: %v", hub.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update hub"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"hub": hubSummary(hub)})
}

func DeleteHub(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	hub, ok := findSpaceHub(ctx, space.ID)

	if !ok {
		return
	}

	if err := db.DB.Delete(&hub).Error; err != nil {
		log.Printf("Failed to delete hub %d: %v", hub.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete hub"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Hub deleted successfully"})
}
