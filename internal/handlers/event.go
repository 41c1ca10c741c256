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
	"github.com/haven-dev/haven/internal/workers"
	"gorm.io/gorm"
)

type CreateEventRequest struct {
	Type     models.EventType       `json:"type" binding:"required"`
	Data     map[string]interface{} `json:"data"`
	DeviceID *uint                  `json:"device_id"`
	ZigbeeID string                 `json:"zigbee_id"`
}

type EventSummary struct {
	ID        uint                   `json:"id"`
	Type      models.EventType       `json:"type"`
	Data      map[string]interface{} `json:"data"`
	Processed bool                   `json:"processed"`
	DeviceID  uint                   `json:"device_id"`
	CreatedAt time.Time              `json:"created_at"`
}

func eventSummary(event models.Event) EventSummary {
	var data map[string]interface{}

	if len(event.Data) > 0 {
		if err := json.Unmarshal(event.Data, &data); err != nil {
			log.Printf("Failed to decode payload of event %d: %v", event.ID, err)
		}
	}

	return EventSummary{
		ID:        event.ID,
		Type:      event.Type,
		Data:      data,
		Processed: event.Processed,
		DeviceID:  event.DeviceID,
		CreatedAt: event.CreatedAt,
	}
}

func listEvents(ctx *gin.Context, query *gorm.DB) {
	skip, limit := utils.GetPagination(ctx)

	if eventType := ctx.Query("type"); eventType != "" {
		if !models.EventType(eventType).Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type"})
			return
		}
		query = query.Where("events.type = ?", eventType)
	}

	var events []models.Event

	if err := query.Order("events.created_at DESC").Offset(skip).Limit(limit).Find(&events).Error; err != nil {
		log.Printf("Failed to list events: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve events"})
		return
	}

	summaries := make([]EventSummary, 0, len(events))

	for _, event := range events {
		summaries = append(summaries, eventSummary(event))
	}

	ctx.JSON(http.StatusOK, gin.H{"events": summaries})
}

// ListSpaceEvents returns the newest events across all devices of a space,
// optionally filtered by event type or device.
func ListSpaceEvents(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	query := db.DB.Model(&models.Event{}).
		Joins("JOIN devices ON devices.id = events.device_id").
		Where("devices.space_id = ?", space.ID)

	if deviceID := ctx.Query("device_id"); deviceID != "" {
		query = query.Where("events.device_id = ?", deviceID)
	}

	listEvents(ctx, query)
}

// ListDeviceEvents returns the newest events of a single device.
func ListDeviceEvents(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	device, ok := findSpaceDevice(ctx, space.ID)

	if !ok {
		return
	}

	listEvents(ctx, db.DB.Model(&models.Event{}).Where("events.device_id = ?", device.ID))
}

// CreateEventFromHub is the ingestion entry point. It persists the raw
// event, acknowledges the hub, and schedules the classification pipeline in
// the background; everything after the acknowledgment is asynchronous.
func CreateEventFromHub(ctx *gin.Context) {
	hub, err := utils.GetCurrentHub(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Hub not authenticated"})
		return
	}

	var req CreateEventRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.Type.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown event type"})
		return
	}

	if req.DeviceID == nil && req.ZigbeeID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Either device_id or zigbee_id must be provided"})
		return
	}

	device, found := resolveHubDevice(hub, req)

	if !found {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Device not found"})
		return
	}

	var data []byte

	if req.Data != nil {
		data, err = json.Marshal(req.Data)

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event data"})
			return
		}
	}

	event := models.Event{
		Type:     req.Type,
		Data:     data,
		DeviceID: device.ID,
	}

	if err := db.DB.Create(&event).Error; err != nil {
		log.Printf("Failed to persist event from hub %d: %v", hub.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record event"})
		return
	}

	touchHub(ctx, hub)

	if !workers.Enqueue(event.ID) {
		log.Printf("Worker pool rejected event %d, processing is shutting down", event.ID)
	}

	ctx.JSON(http.StatusCreated, gin.H{"event": eventSummary(event)})
}

func resolveHubDevice(hub models.Hub, req CreateEventRequest) (models.Device, bool) {
	var device models.Device

	if req.DeviceID != nil {
		err := db.DB.Where("id = ? AND hub_id = ?", *req.DeviceID, hub.ID).First(&device).Error

		if err == nil {
			return device, true
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to resolve device %d: %v", *req.DeviceID, err)
			return models.Device{}, false
		}
	}

	if req.ZigbeeID != "" {
		err := db.DB.Where("zigbee_id = ? AND hub_id = ?", req.ZigbeeID, hub.ID).First(&device).Error

		if err == nil {
			return device, true
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("Failed to resolve device by zigbee id %q: %v", req.ZigbeeID, err)
		}
	}

	return models.Device{}, false
}

// touchHub refreshes the hub's connection bookkeeping. Failures are logged
// only; the event has already been accepted.
func touchHub(ctx *gin.Context, hub models.Hub) {
	updates := map[string]interface{}{
		"last_connection": time.Now(),
		"ip_address":      ctx.ClientIP(),
	}

	if err := db.DB.Model(&hub).Updates(updates).Error; err != nil {
		log.Printf("Failed to update hub %d connection info: %v", hub.ID, err)
	}
}
