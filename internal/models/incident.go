package models

import (
	"time"

	"gorm.io/datatypes"
)

type IncidentStatus string

const (
	IncidentNew          IncidentStatus = "new"
	IncidentAcknowledged IncidentStatus = "acknowledged"
	IncidentResolved     IncidentStatus = "resolved"
	IncidentFalseAlarm   IncidentStatus = "false_alarm"
)

// Valid reports whether s is one of the known incident statuses.
func (s IncidentStatus) Valid() bool {
	switch s {
	case IncidentNew, IncidentAcknowledged, IncidentResolved, IncidentFalseAlarm:
		return true
	}
	return false
}

type IncidentSeverity string

const (
	SeverityLow      IncidentSeverity = "low"
	SeverityMedium   IncidentSeverity = "medium"
	SeverityHigh     IncidentSeverity = "high"
	SeverityCritical IncidentSeverity = "critical"
)

// Rank orders severities: low < medium < high < critical.
func (s IncidentSeverity) Rank() int {
	switch s {
	case SeverityLow:
		return 0
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return -1
}

// Label returns the uppercase severity name used in notification subjects.
func (s IncidentSeverity) Label() string {
	switch s {
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	}
	return "UNKNOWN"
}

// Incident records that an event was classified as significant. The unique
// index on EventID guarantees at most one incident per event even when the
// pipeline is triggered twice for the same event.
type Incident struct {
	BaseModel

	Title       string `gorm:"not null"`
	Description string
	Status      IncidentStatus   `gorm:"not null"`
	Severity    IncidentSeverity `gorm:"not null"`
	Data        datatypes.JSON   `gorm:"type:jsonb"`
	EventID     uint             `gorm:"not null;uniqueIndex"`
	ResolvedAt  *time.Time

	// Relationships
	Event Event `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
