package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

type DeviceType string

const (
	DeviceCamera            DeviceType = "camera"
	DeviceMotionSensor      DeviceType = "motion_sensor"
	DeviceDoorSensor        DeviceType = "door_sensor"
	DeviceWindowSensor      DeviceType = "window_sensor"
	DeviceSmokeDetector     DeviceType = "smoke_detector"
	DeviceWaterLeakSensor   DeviceType = "water_leak_sensor"
	DeviceTemperatureSensor DeviceType = "temperature_sensor"
	DeviceHumiditySensor    DeviceType = "humidity_sensor"
	DeviceAirQualitySensor  DeviceType = "air_quality_sensor"
	DeviceOther             DeviceType = "other"
)

// Label returns a human readable form of the device type, e.g.
// "smoke_detector" -> "Smoke Detector".
func (t DeviceType) Label() string {
	words := strings.Split(string(t), "_")
	for i, word := range words {
		if word != "" {
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

type Device struct {
	BaseModel

	Name         string     `gorm:"not null"`
	Type         DeviceType `gorm:"not null"`
	ZigbeeID     *string    `gorm:"uniqueIndex"`
	Location     string
	IsActive     bool `gorm:"default:true"`
	BatteryLevel *float64
	Config       datatypes.JSON `gorm:"type:jsonb"`
	LastSeen     *time.Time
	HubID        *uint `gorm:"index"`
	SpaceID      uint  `gorm:"not null;index"`

	// Relationships
	Hub    *Hub    `gorm:"foreignKey:HubID;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
	Space  Space   `gorm:"foreignKey:SpaceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Events []Event `gorm:"foreignKey:DeviceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
