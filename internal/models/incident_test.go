package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeverityOrdering(t *testing.T) {
	assert.Less(t, SeverityLow.Rank(), SeverityMedium.Rank())
	assert.Less(t, SeverityMedium.Rank(), SeverityHigh.Rank())
	assert.Less(t, SeverityHigh.Rank(), SeverityCritical.Rank())
	assert.Equal(t, -1, IncidentSeverity("bogus").Rank())
}

func TestDeviceTypeLabel(t *testing.T) {
	assert.Equal(t, "Smoke Detector", DeviceSmokeDetector.Label())
	assert.Equal(t, "Water Leak Sensor", DeviceWaterLeakSensor.Label())
	assert.Equal(t, "Camera", DeviceCamera.Label())
}

func TestEventTypeValid(t *testing.T) {
	assert.True(t, EventSmokeDetected.Valid())
	assert.True(t, EventOther.Valid())
	assert.False(t, EventType("earthquake").Valid())
}
