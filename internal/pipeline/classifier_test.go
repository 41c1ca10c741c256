package pipeline

import (
	"io"
	"testing"

	"github.com/haven-dev/haven/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func testDevice(deviceType models.DeviceType, location string) models.Device {
	device := models.Device{
		Name:     "Test Sensor",
		Type:     deviceType,
		Location: location,
	}
	device.ID = 1
	return device
}

func testEvent(eventType models.EventType, data string) models.Event {
	event := models.Event{
		Type:     eventType,
		DeviceID: 1,
	}
	event.ID = 1
	if data != "" {
		event.Data = datatypes.JSON([]byte(data))
	}
	return event
}

func TestClassifyAlwaysIncidentTypes(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())

	tests := []struct {
		name      string
		eventType models.EventType
		severity  models.IncidentSeverity
		title     string
	}{
		{"smoke detected", models.EventSmokeDetected, models.SeverityHigh, "Smoke detected"},
		{"water leak detected", models.EventWaterLeakDetected, models.SeverityMedium, "Water leak detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := testDevice(models.DeviceSmokeDetector, "Kitchen")
			draft := classifier.Classify(testEvent(tt.eventType, ""), device)

			require.NotNil(t, draft)
			assert.Equal(t, tt.severity, draft.Severity)
			assert.Equal(t, tt.title, draft.Title)
			assert.Contains(t, draft.Description, device.Name)
			assert.Contains(t, draft.Description, "Kitchen")
		})
	}
}

func TestClassifyLocationFallback(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())

	draft := classifier.Classify(
		testEvent(models.EventSmokeDetected, ""),
		testDevice(models.DeviceSmokeDetector, ""),
	)

	require.NotNil(t, draft)
	assert.Contains(t, draft.Description, "unknown location")
}

func TestClassifyBenignTypes(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())

	benign := []models.EventType{
		models.EventMotionDetected,
		models.EventDoorOpened,
		models.EventWindowOpened,
		models.EventBattery,
		models.EventDeviceOnline,
		models.EventPoorAirQuality,
		models.EventOther,
	}

	for _, eventType := range benign {
		t.Run(string(eventType), func(t *testing.T) {
			draft := classifier.Classify(
				testEvent(eventType, `{"battery": 10}`),
				testDevice(models.DeviceMotionSensor, "Hall"),
			)
			assert.Nil(t, draft)
		})
	}
}

func TestClassifyTemperature(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())
	device := testDevice(models.DeviceTemperatureSensor, "Attic")

	tests := []struct {
		name  string
		data  string
		title string
	}{
		{"above threshold", `{"temperature": 20}`, "High temperature detected"},
		{"below threshold", `{"temperature": 10}`, "Low temperature detected"},
		{"at threshold", `{"temperature": 15}`, ""},
		{"missing field reads as zero", `{}`, "Low temperature detected"},
		{"wrong type reads as zero", `{"temperature": "hot"}`, "Low temperature detected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := classifier.Classify(testEvent(models.EventTemperature, tt.data), device)

			if tt.title == "" {
				assert.Nil(t, draft)
				return
			}

			require.NotNil(t, draft)
			assert.Equal(t, tt.title, draft.Title)
			assert.Equal(t, models.SeverityMedium, draft.Severity)
		})
	}
}

func TestClassifyTemperatureSplitThresholds(t *testing.T) {
	thresholds := DefaultThresholds()
	thresholds.TemperatureLow = 10
	thresholds.TemperatureHigh = 25

	classifier := NewClassifier(thresholds, testLogger())
	device := testDevice(models.DeviceTemperatureSensor, "Attic")

	// Inside the comfort band nothing is raised.
	assert.Nil(t, classifier.Classify(testEvent(models.EventTemperature, `{"temperature": 18}`), device))

	draft := classifier.Classify(testEvent(models.EventTemperature, `{"temperature": 30}`), device)
	require.NotNil(t, draft)
	assert.Equal(t, "High temperature detected", draft.Title)

	draft = classifier.Classify(testEvent(models.EventTemperature, `{"temperature": 5}`), device)
	require.NotNil(t, draft)
	assert.Equal(t, "Low temperature detected", draft.Title)
}

func TestClassifyHumidity(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())
	device := testDevice(models.DeviceHumiditySensor, "Basement")

	draft := classifier.Classify(testEvent(models.EventHumidity, `{"humidity": 40}`), device)
	require.NotNil(t, draft)
	assert.Equal(t, "High humidity detected", draft.Title)
	assert.Equal(t, models.SeverityMedium, draft.Severity)

	draft = classifier.Classify(testEvent(models.EventHumidity, `{"humidity": 5}`), device)
	require.NotNil(t, draft)
	assert.Equal(t, "Low humidity detected", draft.Title)

	assert.Nil(t, classifier.Classify(testEvent(models.EventHumidity, `{"humidity": 15}`), device))
}

func TestClassifyDeviceOffline(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())

	tests := []struct {
		name       string
		deviceType models.DeviceType
		incident   bool
		title      string
	}{
		{"smoke detector offline", models.DeviceSmokeDetector, true, "Smoke Detector is offline"},
		{"water leak sensor offline", models.DeviceWaterLeakSensor, true, "Water Leak Sensor is offline"},
		{"motion sensor offline", models.DeviceMotionSensor, false, ""},
		{"camera offline", models.DeviceCamera, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := testDevice(tt.deviceType, "Garage")
			draft := classifier.Classify(testEvent(models.EventDeviceOffline, ""), device)

			if !tt.incident {
				assert.Nil(t, draft)
				return
			}

			require.NotNil(t, draft)
			assert.Equal(t, tt.title, draft.Title)
			assert.Equal(t, models.SeverityLow, draft.Severity)
			assert.Contains(t, draft.Description, "Lost connection with")
		})
	}
}

func TestClassifyMalformedPayload(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())

	draft := classifier.Classify(
		testEvent(models.EventTemperature, `{"temperature": `),
		testDevice(models.DeviceTemperatureSensor, "Attic"),
	)

	assert.Nil(t, draft)
}

func TestClassifyCarriesEventData(t *testing.T) {
	classifier := NewClassifier(DefaultThresholds(), testLogger())
	event := testEvent(models.EventSmokeDetected, `{"density": 0.8}`)

	draft := classifier.Classify(event, testDevice(models.DeviceSmokeDetector, "Kitchen"))

	require.NotNil(t, draft)
	assert.Equal(t, event.Data, draft.Data)
}
