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
	"gorm.io/gorm"
)

type UpdateIncidentRequest struct {
	Status models.IncidentStatus `json:"status" binding:"required"`
}

type IncidentSummary struct {
	ID          uint                    `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Status      models.IncidentStatus   `json:"status"`
	Severity    models.IncidentSeverity `json:"severity"`
	Data        map[string]interface{}  `json:"data"`
	EventID     uint                    `json:"event_id"`
	CreatedAt   time.Time               `json:"created_at"`
	UpdatedAt   time.Time               `json:"updated_at"`
	ResolvedAt  *time.Time              `json:"resolved_at"`
}

func incidentSummary(incident models.Incident) IncidentSummary {
	var data map[string]interface{}

	if len(incident.Data) > 0 {
		if err := json.Unmarshal(incident.Data, &data); err != nil {
			log.Printf("Failed to decode payload of incident %d: %v", incident.ID, err)
		}
	}

	return IncidentSummary{
		ID:          incident.ID,
		Title:       incident.Title,
		Description: incident.Description,
		Status:      incident.Status,
		Severity:    incident.Severity,
		Data:        data,
		EventID:     incident.EventID,
		CreatedAt:   incident.CreatedAt,
		UpdatedAt:   incident.UpdatedAt,
		ResolvedAt:  incident.ResolvedAt,
	}
}

func findSpaceIncident(ctx *gin.Context, spaceID uint) (models.Incident, bool) {
	incidentID, err := utils.GetIncidentID(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return models.Incident{}, false
	}

	var incident models.Incident

	err = db.DB.
		Joins("JOIN events ON events.id = incidents.event_id").
		Joins("JOIN devices ON devices.id = events.device_id").
		Where("incidents.id = ? AND devices.space_id = ?", incidentID, spaceID).
		First(&incident).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Incident not found"})
		} else {
			log.Printf("Failed to fetch incident %d: %v", incidentID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incident"})
		}
		return models.Incident{}, false
	}

	return incident, true
}

// ListIncidents returns the newest incidents across all devices of a
// space, optionally filtered by status.
func ListIncidents(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	skip, limit := utils.GetPagination(ctx)

	query := db.DB.Model(&models.Incident{}).
		Joins("JOIN events ON events.id = incidents.event_id").
		Joins("JOIN devices ON devices.id = events.device_id").
		Where("devices.space_id = ?", space.ID)

	if status := ctx.Query("status"); status != "" {
		if !models.IncidentStatus(status).Valid() {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown incident status"})
			return
		}
		query = query.Where("incidents.status = ?", status)
	}

	var incidents []models.Incident

	if err := query.Order("incidents.created_at DESC").Offset(skip).Limit(limit).Find(&incidents).Error; err != nil {
		log.Printf("Failed to list incidents for space %d: %v", space.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve incidents"})
		return
	}

	summaries := make([]IncidentSummary, 0, len(incidents))

	for _, incident := range incidents {
		summaries = append(summaries, incidentSummary(incident))
	}

	ctx.JSON(http.StatusOK, gin.H{"incidents": summaries})
}

func GetIncident(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	incident, ok := findSpaceIncident(ctx, space.ID)

	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"incident": incidentSummary(incident)})
}

// UpdateIncidentStatus advances the incident workflow. Only the status and
// the resolution time ever change after creation; title, description and
// severity are fixed by classification.
func UpdateIncidentStatus(ctx *gin.Context) {
	space, ok := requireOwnedSpace(ctx)

	if !ok {
		return
	}

	incident, ok := findSpaceIncident(ctx, space.ID)

	if !ok {
		return
	}

	var req UpdateIncidentRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !req.Status.Valid() {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Unknown incident status"})
		return
	}

	updates := map[string]interface{}{"status": req.Status}

	if req.Status == models.IncidentResolved || req.Status == models.IncidentFalseAlarm {
		now := time.Now()
		updates["resolved_at"] = now
		incident.ResolvedAt = &now
	}

	if err := db.DB.Model(&incident).Updates(updates).Error; err != nil {
		log.Printf("Failed to update incident %d: %v", incident.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update incident"})
		return
	}

	incident.Status = req.Status

	ctx.JSON(http.StatusOK, gin.H{"incident": incidentSummary(incident)})
}
