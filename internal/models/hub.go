package models

import "time"

type Hub struct {
	BaseModel

	Name           string `gorm:"not null"`
	Model          string
	APIKey         string `gorm:"uniqueIndex;not null"`
	IsActive       bool   `gorm:"default:true"`
	LastConnection *time.Time
	IPAddress      string
	SpaceID        uint `gorm:"not null;index"`

	// Relationships
	Space   Space    `gorm:"foreignKey:SpaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Devices []Device `gorm:"foreignKey:HubID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
