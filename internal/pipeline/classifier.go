package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/haven-dev/haven/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Draft is the in-memory classification result before it is durably
// materialized as an incident. Severity, title and description are fixed
// here and never altered by later workflow.
type Draft struct {
	Title       string
	Description string
	Severity    models.IncidentSeverity
	Data        datatypes.JSON
}

// Thresholds configure the two-sided comparisons for measurement events.
// The legacy rules used the single value 15 on both sides of each
// comparison, so both bounds default to it; deployments are expected to
// override them with a sensible low < high pair.
type Thresholds struct {
	TemperatureLow  float64
	TemperatureHigh float64
	HumidityLow     float64
	HumidityHigh    float64
}

const legacyThreshold = 15

func DefaultThresholds() Thresholds {
	return Thresholds{
		TemperatureLow:  legacyThreshold,
		TemperatureHigh: legacyThreshold,
		HumidityLow:     legacyThreshold,
		HumidityHigh:    legacyThreshold,
	}
}

// ThresholdsFromEnv reads threshold overrides from the environment,
// falling back to the defaults for unset or unparsable values.
func ThresholdsFromEnv() Thresholds {
	t := DefaultThresholds()

	t.TemperatureLow = envFloat("TEMPERATURE_LOW_THRESHOLD", t.TemperatureLow)
	t.TemperatureHigh = envFloat("TEMPERATURE_HIGH_THRESHOLD", t.TemperatureHigh)
	t.HumidityLow = envFloat("HUMIDITY_LOW_THRESHOLD", t.HumidityLow)
	t.HumidityHigh = envFloat("HUMIDITY_HIGH_THRESHOLD", t.HumidityHigh)

	return t
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)

	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseFloat(raw, 64)

	if err != nil {
		return fallback
	}

	return value
}

type ruleInput struct {
	event      models.Event
	device     models.Device
	payload    map[string]interface{}
	thresholds Thresholds
}

type ruleFunc func(in ruleInput) *Draft

// rules maps each event type to its classification rule. Types absent from
// the table never produce an incident: motion, door and window openings,
// battery and online reports, and air quality are telemetry or benign
// signals in this design.
var rules = map[models.EventType]ruleFunc{
	models.EventSmokeDetected:     classifySmoke,
	models.EventWaterLeakDetected: classifyWaterLeak,
	models.EventTemperature:       classifyTemperature,
	models.EventHumidity:          classifyHumidity,
	models.EventDeviceOffline:     classifyDeviceOffline,
}

// criticalOfflineTypes are the device categories whose offline state alone
// warrants an incident.
var criticalOfflineTypes = map[models.DeviceType]bool{
	models.DeviceSmokeDetector:   true,
	models.DeviceWaterLeakSensor: true,
}

// Classifier decides whether an event represents an incident. It is pure
// with respect to storage: no reads, no writes, no retries.
type Classifier struct {
	thresholds Thresholds
	log        *logrus.Logger
}

func NewClassifier(thresholds Thresholds, log *logrus.Logger) *Classifier {
	return &Classifier{thresholds: thresholds, log: log}
}

// Classify returns a draft incident for the event, or nil when the event is
// not significant. A malformed payload degrades to nil rather than failing
// the pipeline run.
func (c *Classifier) Classify(event models.Event, device models.Device) *Draft {
	payload, err := decodePayload(event.Data)

	if err != nil {
		c.log.WithFields(logrus.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
		}).WithError(err).Warn("Malformed event payload, treating as no incident")
		return nil
	}

	rule, ok := rules[event.Type]

	if !ok {
		return nil
	}

	return rule(ruleInput{
		event:      event,
		device:     device,
		payload:    payload,
		thresholds: c.thresholds,
	})
}

func decodePayload(data datatypes.JSON) (map[string]interface{}, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var payload map[string]interface{}

	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	return payload, nil
}

// numberValue extracts a numeric payload field. Missing or wrong-typed
// fields read as zero, matching the legacy behavior.
func numberValue(payload map[string]interface{}, key string) float64 {
	value, ok := payload[key].(float64)

	if !ok {
		return 0
	}

	return value
}

func hasNumberValue(payload map[string]interface{}, key string) (float64, bool) {
	value, ok := payload[key].(float64)
	return value, ok
}

func locationOrUnknown(device models.Device) string {
	if device.Location == "" {
		return "unknown location"
	}
	return device.Location
}

func classifySmoke(in ruleInput) *Draft {
	return &Draft{
		Title:       "Smoke detected",
		Description: fmt.Sprintf("Smoke was detected by device %s in %s", in.device.Name, locationOrUnknown(in.device)),
		Severity:    models.SeverityHigh,
		Data:        in.event.Data,
	}
}

func classifyWaterLeak(in ruleInput) *Draft {
	return &Draft{
		Title:       "Water leak detected",
		Description: fmt.Sprintf("Water leak was detected by device %s in %s", in.device.Name, locationOrUnknown(in.device)),
		Severity:    models.SeverityMedium,
		Data:        in.event.Data,
	}
}

func classifyTemperature(in ruleInput) *Draft {
	temperature := numberValue(in.payload, "temperature")

	var title string

	switch {
	case temperature > in.thresholds.TemperatureHigh:
		title = "High temperature detected"
	case temperature < in.thresholds.TemperatureLow:
		title = "Low temperature detected"
	default:
		return nil
	}

	return &Draft{
		Title:       title,
		Description: fmt.Sprintf("Temperature of %g°C was detected by device %s in %s", temperature, in.device.Name, locationOrUnknown(in.device)),
		Severity:    models.SeverityMedium,
		Data:        in.event.Data,
	}
}

func classifyHumidity(in ruleInput) *Draft {
	humidity := numberValue(in.payload, "humidity")

	var title string

	switch {
	case humidity > in.thresholds.HumidityHigh:
		title = "High humidity detected"
	case humidity < in.thresholds.HumidityLow:
		title = "Low humidity detected"
	default:
		return nil
	}

	return &Draft{
		Title:       title,
		Description: fmt.Sprintf("Humidity: %g%% was detected by device %s in %s", humidity, in.device.Name, locationOrUnknown(in.device)),
		Severity:    models.SeverityMedium,
		Data:        in.event.Data,
	}
}

func classifyDeviceOffline(in ruleInput) *Draft {
	if !criticalOfflineTypes[in.device.Type] {
		return nil
	}

	return &Draft{
		Title:       fmt.Sprintf("%s is offline", in.device.Type.Label()),
		Description: fmt.Sprintf("Lost connection with %s in %s", in.device.Name, locationOrUnknown(in.device)),
		Severity:    models.SeverityLow,
		Data:        in.event.Data,
	}
}
