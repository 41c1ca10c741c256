package models

import (
	"gorm.io/datatypes"
)

type EventType string

const (
	EventMotionDetected    EventType = "motion_detected"
	EventDoorOpened        EventType = "door_opened"
	EventWindowOpened      EventType = "window_opened"
	EventSmokeDetected     EventType = "smoke_detected"
	EventWaterLeakDetected EventType = "water_leak_detected"
	EventTemperature       EventType = "temperature"
	EventBattery           EventType = "battery"
	EventHumidity          EventType = "humidity"
	EventPoorAirQuality    EventType = "poor_air_quality"
	EventDeviceOffline     EventType = "device_offline"
	EventDeviceOnline      EventType = "device_online"
	EventOther             EventType = "other"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventMotionDetected, EventDoorOpened, EventWindowOpened,
		EventSmokeDetected, EventWaterLeakDetected, EventTemperature,
		EventBattery, EventHumidity, EventPoorAirQuality,
		EventDeviceOffline, EventDeviceOnline, EventOther:
		return true
	}
	return false
}

// Event is an immutable fact reported by a device. The pipeline flips
// Processed exactly once; nothing else mutates an event after creation.
type Event struct {
	BaseModel

	Type      EventType      `gorm:"not null;index"`
	Data      datatypes.JSON `gorm:"type:jsonb"`
	Processed bool           `gorm:"not null;default:false"`
	DeviceID  uint           `gorm:"not null;index"`

	// Relationships
	Device   Device    `gorm:"foreignKey:DeviceID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Incident *Incident `gorm:"foreignKey:EventID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
