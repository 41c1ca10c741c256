package pipeline

import (
	"time"

	"github.com/haven-dev/haven/internal/models"
	"gorm.io/gorm"
)

// applyTelemetry records a battery reading carried on an event payload,
// refreshing the device's telemetry snapshot and last-seen time. It runs
// before classification, regardless of what classification later decides,
// so offline rules observe the freshest device state. The loaded struct is
// updated in place along with the row.
func applyTelemetry(tx *gorm.DB, device *models.Device, payload map[string]interface{}) error {
	battery, ok := hasNumberValue(payload, "battery")

	if !ok {
		return nil
	}

	now := time.Now()

	if err := tx.Model(device).Updates(map[string]interface{}{
		"battery_level": battery,
		"last_seen":     now,
	}).Error; err != nil {
		return err
	}

	device.BatteryLevel = &battery
	device.LastSeen = &now

	return nil
}
