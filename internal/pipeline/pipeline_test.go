package pipeline

import (
	"context"
	"testing"

	"github.com/haven-dev/haven/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newTestProcessor(dbh *gorm.DB) (*Processor, *fakeEmailSender, *fakeSMSSender) {
	email := &fakeEmailSender{}
	sms := &fakeSMSSender{}

	classifier := NewClassifier(DefaultThresholds(), testLogger())
	dispatcher := NewDispatcher(email, sms, testLogger())

	return NewProcessor(dbh, classifier, dispatcher, testLogger()), email, sms
}

func createEvent(t *testing.T, dbh *gorm.DB, deviceID uint, eventType models.EventType, data string) models.Event {
	t.Helper()

	event := models.Event{Type: eventType, DeviceID: deviceID}
	if data != "" {
		event.Data = datatypes.JSON([]byte(data))
	}
	require.NoError(t, dbh.Create(&event).Error)

	return event
}

func TestProcessSmokeEvent(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceSmokeDetector, "Kitchen", "owner@example.com", "")
	processor, email, sms := newTestProcessor(dbh)

	event := createEvent(t, dbh, fx.Device.ID, models.EventSmokeDetected, "")

	require.NoError(t, processor.Process(context.Background(), event.ID))

	var incident models.Incident
	require.NoError(t, dbh.Where("event_id = ?", event.ID).First(&incident).Error)
	assert.Equal(t, models.SeverityHigh, incident.Severity)
	assert.Equal(t, "Smoke detected", incident.Title)
	assert.Equal(t, models.IncidentNew, incident.Status)

	var processed models.Event
	require.NoError(t, dbh.First(&processed, event.ID).Error)
	assert.True(t, processed.Processed)

	// Owner has email only, so exactly one email and no SMS.
	assert.Len(t, email.calls, 1)
	assert.Len(t, sms.calls, 0)
}

func TestProcessHighTemperatureEvent(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceTemperatureSensor, "Attic", "owner@example.com", "")
	processor, _, _ := newTestProcessor(dbh)

	event := createEvent(t, dbh, fx.Device.ID, models.EventTemperature, `{"temperature": 20}`)

	require.NoError(t, processor.Process(context.Background(), event.ID))

	var incident models.Incident
	require.NoError(t, dbh.Where("event_id = ?", event.ID).First(&incident).Error)
	assert.Equal(t, models.SeverityMedium, incident.Severity)
	assert.Equal(t, "High temperature detected", incident.Title)
}

func TestProcessNonCriticalOffline(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceMotionSensor, "Hall", "owner@example.com", "")
	processor, email, sms := newTestProcessor(dbh)

	event := createEvent(t, dbh, fx.Device.ID, models.EventDeviceOffline, "")

	require.NoError(t, processor.Process(context.Background(), event.ID))

	var count int64
	require.NoError(t, dbh.Model(&models.Incident{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var processed models.Event
	require.NoError(t, dbh.First(&processed, event.ID).Error)
	assert.True(t, processed.Processed)

	assert.Len(t, email.calls, 0)
	assert.Len(t, sms.calls, 0)
}

func TestProcessDuplicateTrigger(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceSmokeDetector, "Kitchen", "owner@example.com", "+15550100")
	processor, email, sms := newTestProcessor(dbh)

	event := createEvent(t, dbh, fx.Device.ID, models.EventSmokeDetected, "")

	require.NoError(t, processor.Process(context.Background(), event.ID))
	require.NoError(t, processor.Process(context.Background(), event.ID))

	var count int64
	require.NoError(t, dbh.Model(&models.Incident{}).Where("event_id = ?", event.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// The second trigger observes the processed flag and stops, so the
	// owner is notified once per channel.
	assert.Len(t, email.calls, 1)
	assert.Len(t, sms.calls, 1)
}

func TestProcessBatteryTelemetry(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceMotionSensor, "Hall", "owner@example.com", "")
	processor, _, _ := newTestProcessor(dbh)

	event := createEvent(t, dbh, fx.Device.ID, models.EventBattery, `{"battery": 87}`)

	require.NoError(t, processor.Process(context.Background(), event.ID))

	var device models.Device
	require.NoError(t, dbh.First(&device, fx.Device.ID).Error)
	require.NotNil(t, device.BatteryLevel)
	assert.Equal(t, 87.0, *device.BatteryLevel)
	assert.NotNil(t, device.LastSeen)

	// Battery reports are telemetry, not incidents.
	var count int64
	require.NoError(t, dbh.Model(&models.Incident{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestProcessMalformedPayload(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceTemperatureSensor, "Attic", "owner@example.com", "")
	processor, _, _ := newTestProcessor(dbh)

	event := createEvent(t, dbh, fx.Device.ID, models.EventTemperature, `{"temperature": `)

	// A malformed payload degrades to "no incident"; the run still succeeds
	// and the event is still marked processed.
	require.NoError(t, processor.Process(context.Background(), event.ID))

	var count int64
	require.NoError(t, dbh.Model(&models.Incident{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)

	var processed models.Event
	require.NoError(t, dbh.First(&processed, event.ID).Error)
	assert.True(t, processed.Processed)
}

func TestProcessMissingEvent(t *testing.T) {
	dbh := openTestDB(t)
	processor, _, _ := newTestProcessor(dbh)

	assert.NoError(t, processor.Process(context.Background(), 12345))
}

func TestProcessInvokesIncidentHook(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceSmokeDetector, "Kitchen", "owner@example.com", "")
	processor, _, _ := newTestProcessor(dbh)

	var hooked []models.Incident
	processor.OnIncident(func(incident models.Incident) {
		hooked = append(hooked, incident)
	})

	event := createEvent(t, dbh, fx.Device.ID, models.EventSmokeDetected, "")

	require.NoError(t, processor.Process(context.Background(), event.ID))

	require.Len(t, hooked, 1)
	assert.Equal(t, event.ID, hooked[0].EventID)
}
