package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haven-dev/haven/db"
	"github.com/haven-dev/haven/internal/models"
	"github.com/haven-dev/haven/internal/utils"
	"gorm.io/gorm"
)

type CreateSpaceRequest struct {
	Name    string           `json:"name" binding:"required"`
	Type    models.SpaceType `json:"type"`
	Address string           `json:"address"`
}

type UpdateSpaceRequest struct {
	Name    string           `json:"name"`
	Type    models.SpaceType `json:"type"`
	Address string           `json:"address"`
}

type SpaceSummary struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Type        models.SpaceType `json:"type"`
	Address     string           `json:"address"`
	HubCount    int64            `json:"hub_count"`
	DeviceCount int64            `json:"device_count"`
	CreatedAt   time.Time        `json:"created_at"`
}

func spaceSummary(space models.Space) SpaceSummary {
	var hubCount, deviceCount int64

	db.DB.Model(&models.Hub{}).Where("space_id = ?", space.ID).Count(&hubCount)
	db.DB.Model(&models.Device{}).Where("space_id = ?", space.ID).Count(&deviceCount)

	return SpaceSummary{
		ID:          space.ID,
		Name:        space.Name,
		Type:        space.Type,
		Address:     space.Address,
		HubCount:    hubCount,
		DeviceCount: deviceCount,
		CreatedAt:   space.CreatedAt,
	}
}

// requireOwnedSpace fetches the space from the route and verifies it
// belongs to the current user, writing the error response itself when the
// lookup fails.
func requireOwnedSpace(ctx *gin.Context) (models.Space, bool) {
	spaceID, err := utils.GetSpaceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Space{}, false
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return models.Space{}, false
	}

	var space models.Space

	if err := db.DB.Where("id = ? AND owner_id = ?", spaceID, userID).First(&space).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Space not found"})
		} else {
			log.Printf("Failed to fetch space %d: %v", spaceID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve space"})
		}
		return models.Space{}, false
	}

	return space, true
}

func CreateSpace(ctx *gin.Context) {
	var req CreateSpaceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	spaceType := req.Type

	if spaceType == "" {
		spaceType = models.SpaceHome
	}

	space := models.Space{
		Name:    req.Name,
		Type:    spaceType,
		Address: req.Address,
		OwnerID: userID,
	}

	if err := db.DB.Create(&space).Error; err != nil {
		log.Printf("Failed to create space: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create space"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"space": spaceSummary(space)})
}

func ListSpaces(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	skip, limit := utils.GetPagination(ctx)

	var spaces []models.Space

	if err := db.DB.Where("owner_id = ?", userID).Offset(skip).Limit(limit).Find(&spaces).Error; err != nil {
		log.Printf("Failed to list spaces: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve spaces"})
		return
	}

	summaries := make([]SpaceSummary, 0, len(spaces))

	for _, space := range spaces {
		summaries = append(summaries, spaceSummary(space))
	}

	ctx.JSON(http.StatusOK, gin.H{"spaces": summaries})
}

func GetSpace(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"space": spaceSummary(space)})
}

func UpdateSpace(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	var req UpdateSpaceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Type != "" {
		updates["type"] = req.Type
	}

	if req.Address != "" {
		updates["address"] = req.Address
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&space).Updates(updates).Error; err != nil {
		log.Printf("Failed to update space %d: %v", space.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update space"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"space": spaceSummary(space)})
}

func DeleteSpace(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	if err := db.DB.Delete(&space).Error; err != nil {
		log.Printf("Failed to delete space %d: %v", space.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete space"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Space deleted successfully"})
}
