package auth

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateAPIKey issues an opaque credential for a hub. Keys are random
// UUIDs with the dashes stripped, prefixed so they are recognizable in logs.
func GenerateAPIKey() string {
	return "hub_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}
