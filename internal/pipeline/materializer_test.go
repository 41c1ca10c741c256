package pipeline

import (
	"testing"

	"github.com/haven-dev/haven/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMaterializeCreatesIncident(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceSmokeDetector, "Kitchen", "owner@example.com", "")

	event := models.Event{Type: models.EventSmokeDetected, DeviceID: fx.Device.ID}
	require.NoError(t, dbh.Create(&event).Error)

	draft := Draft{
		Title:       "Smoke detected",
		Description: "Smoke was detected by device Kitchen Sensor in Kitchen",
		Severity:    models.SeverityHigh,
		Data:        datatypes.JSON([]byte(`{"density": 0.8}`)),
	}

	incident, err := Materialize(dbh, event.ID, draft)
	require.NoError(t, err)

	assert.NotZero(t, incident.ID)
	assert.Equal(t, models.IncidentNew, incident.Status)
	assert.Equal(t, models.SeverityHigh, incident.Severity)
	assert.Equal(t, event.ID, incident.EventID)
	assert.Equal(t, draft.Data, incident.Data)
}

func TestMaterializeIsIdempotent(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceSmokeDetector, "Kitchen", "owner@example.com", "")

	event := models.Event{Type: models.EventSmokeDetected, DeviceID: fx.Device.ID}
	require.NoError(t, dbh.Create(&event).Error)

	draft := Draft{Title: "Smoke detected", Severity: models.SeverityHigh}

	first, err := Materialize(dbh, event.ID, draft)
	require.NoError(t, err)

	second, err := Materialize(dbh, event.ID, draft)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, dbh.Model(&models.Incident{}).Where("event_id = ?", event.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestMaterializeDistinctEvents(t *testing.T) {
	dbh := openTestDB(t)
	fx := seedFixture(t, dbh, models.DeviceSmokeDetector, "Kitchen", "owner@example.com", "")

	first := models.Event{Type: models.EventSmokeDetected, DeviceID: fx.Device.ID}
	require.NoError(t, dbh.Create(&first).Error)

	second := models.Event{Type: models.EventSmokeDetected, DeviceID: fx.Device.ID}
	require.NoError(t, dbh.Create(&second).Error)

	draft := Draft{Title: "Smoke detected", Severity: models.SeverityHigh}

	a, err := Materialize(dbh, first.ID, draft)
	require.NoError(t, err)

	b, err := Materialize(dbh, second.ID, draft)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}
