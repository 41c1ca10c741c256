package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haven-dev/haven/db"
	"github.com/haven-dev/haven/internal/models"
	"github.com/haven-dev/haven/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateDeviceRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Type     models.DeviceType      `json:"type" binding:"required"`
	ZigbeeID string                 `json:"zigbee_id"`
	Location string                 `json:"location"`
	HubID    *uint                  `json:"hub_id"`
	Config   map[string]interface{} `json:"config"`
}

type UpdateDeviceRequest struct {
	Name     string                 `json:"name"`
	Location string                 `json:"location"`
	IsActive *bool                  `json:"is_active"`
	Config   map[string]interface{} `json:"config"`
}

type DeviceSummary struct {
	ID           uint              `json:"id"`
	Name         string            `json:"name"`
	Type         models.DeviceType `json:"type"`
	ZigbeeID     *string           `json:"zigbee_id"`
	Location     string            `json:"location"`
	IsActive     bool              `json:"is_active"`
	BatteryLevel *float64          `json:"battery_level"`
	LastSeen     *time.Time        `json:"last_seen"`
	HubID        *uint             `json:"hub_id"`
	SpaceID      uint              `json:"space_id"`
	CreatedAt    time.Time         `json:"created_at"`
}

func deviceSummary(device models.Device) DeviceSummary {
	return DeviceSummary{
		ID:           device.ID,
		Name:         device.Name,
		Type:         device.Type,
		ZigbeeID:     device.ZigbeeID,
		Location:     device.Location,
		IsActive:     device.IsActive,
		BatteryLevel: device.BatteryLevel,
		LastSeen:     device.LastSeen,
		HubID:        device.HubID,
		SpaceID:      device.SpaceID,
		CreatedAt:    device.CreatedAt,
	}
}

func findSpaceDevice(ctx *gin.Context, spaceID uint) (models.Device, bool) {
	deviceID, err := utils.GetDeviceID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Device{}, false
	}

	var device models.Device

	if err := db.DB.Where("id = ? AND space_id = ?", deviceID, spaceID).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		} else {
			log.Printf("Failed to fetch device %d: %v", deviceID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve device"})
		}
		return models.Device{}, false
	}

	return device, true
}

func marshalConfig(ctx *gin.Context, config map[string]interface{}) (datatypes.JSON, bool) {
	if config == nil {
		return nil, true
	}

	raw, err := json.Marshal(config)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid config format"})
		return nil, false
	}

	return raw, true
}

func CreateDevice(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	var req CreateDeviceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.HubID != nil {
		var hub models.Hub

		if err := db.DB.Where("id = ? AND space_id = ?", *req.HubID, space.ID).First(&hub).Error; err != nil {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Hub not found in this space"})
			return
		}
	}

	config, ok := marshalConfig(ctx, req.Config)

	if !ok {
		return
	}

	device := models.Device{
		Name:     req.Name,
		Type:     req.Type,
		Location: req.Location,
		IsActive: true,
		Config:   config,
		HubID:    req.HubID,
		SpaceID:  space.ID,
	}

	if req.ZigbeeID != "" {
		device.ZigbeeID = &req.ZigbeeID
	}

	if err := db.DB.Create(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Device with this Zigbee ID already exists"})
			return
		}
		log.Printf("Failed to create device: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create device"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"device": deviceSummary(device)})
}

func ListDevices(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	skip, limit := utils.GetPagination(ctx)

	query := db.DB.Where("space_id = ?", space.ID)

	if deviceType := ctx.Query("type"); deviceType != "" {
		query = query.Where("type = ?", deviceType)
	}

	var devices []models.Device

	if err := query.Offset(skip).Limit(limit).Find(&devices).Error; err != nil {
		log.Printf("Failed to list devices for space %d: %v", space.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve devices"})
		return
	}

	summaries := make([]DeviceSummary, 0, len(devices))

	for _, device := range devices {
		summaries = append(summaries, deviceSummary(device))
	}

	ctx.JSON(http.StatusOK, gin.H{"devices": summaries})
}

func GetDevice(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	device, ok := findSpaceDevice(ctx, space.ID)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"device": deviceSummary(device)})
}

func UpdateDevice(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	device, ok := findSpaceDevice(ctx, space.ID)

	if !ok {
		return
	}

	var req UpdateDeviceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	updates := make(map[string]interface{})

	if req.Name != "" {
		updates["name"] = req.Name
	}

	if req.Location != "" {
		updates["location"] = req.Location
	}

	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if req.Config != nil {
		config, ok := marshalConfig(ctx, req.Config)

		if !ok {
			return
		}

		updates["config"] = config
	}

	if len(updates) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields to update"})
		return
	}

	if err := db.DB.Model(&device).Updates(updates).Error; err != nil {
		log.Printf("Failed to update device %d: %v", device.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"device": deviceSummary(device)})
}

func DeleteDevice(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	device, ok := findSpaceDevice(ctx, space.ID)

	if !ok {
		return
	}

	if err := db.DB.Delete(&device).Error; err != nil {
		log.Printf("Failed to delete device %d: %v", device.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete device"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Device deleted successfully"})
}

// RegisterDeviceFromHub lets an authenticated hub register or refresh one
// of its devices. An existing device is matched by Zigbee ID and updated in
// place so hubs can re-announce after a restart.
func RegisterDeviceFromHub(ctx *gin.Context) {
	hub, err := utils.GetCurrentHub(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Hub not authenticated"})
		return
	}

	var req CreateDeviceRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	config, ok := marshalConfig(ctx, req.Config)

	if !ok {
		return
	}

	if req.ZigbeeID != "" {
		var existing models.Device

		err := db.DB.Where("zigbee_id = ? AND hub_id = ?", req.ZigbeeID, hub.ID).First(&existing).Error

		if err == nil {
			updates := map[string]interface{}{
				"name": req.Name,
				"type": req.Type,
			}

			if req.Location != "" {
				updates["location"] = req.Location
			}

			if config != nil {
				updates["config"] = config
			}

			if err := db.DB.Model(&existing).Updates(updates).Error; err != nil {
				log.Printf("Failed to refresh device %d: %v", existing.ID, err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update device"})
				return
			}

			ctx.JSON(http.StatusOK, gin.H{"device": deviceSummary(existing)})
			return
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Database error when checking existing device: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
	}

	device := models.Device{
		Name:     req.Name,
		Type:     req.Type,
		Location: req.Location,
		IsActive: true,
		Config:   config,
		HubID:    &hub.ID,
		SpaceID:  hub.SpaceID,
	}

	if req.ZigbeeID != "" {
		device.ZigbeeID = &req.ZigbeeID
	}

	if err := db.DB.Create(&device).Error; err != nil {
		log.Printf("Failed to register device from hub %d: %v", hub.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"device": deviceSummary(device)})
}
