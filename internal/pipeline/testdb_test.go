package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/haven-dev/haven/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dbh, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "haven.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := dbh.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = dbh.AutoMigrate(
		&models.User{},
		&models.Space{},
		&models.Hub{},
		&models.Device{},
		&models.Event{},
		&models.Incident{},
	)
	require.NoError(t, err)

	return dbh
}

type fixture struct {
	Owner  models.User
	Space  models.Space
	Hub    models.Hub
	Device models.Device
}

// seedFixture creates an owner, space, hub and device wired together.
func seedFixture(t *testing.T, dbh *gorm.DB, deviceType models.DeviceType, location string, email, phone string) fixture {
	t.Helper()

	owner := models.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Alice",
		Phone:        phone,
		IsActive:     true,
	}
	require.NoError(t, dbh.Create(&owner).Error)

	space := models.Space{
		Name:    "My Home",
		Type:    models.SpaceHome,
		OwnerID: owner.ID,
	}
	require.NoError(t, dbh.Create(&space).Error)

	hub := models.Hub{
		Name:     "Main Hub",
		APIKey:   "hub_testkey",
		IsActive: true,
		SpaceID:  space.ID,
	}
	require.NoError(t, dbh.Create(&hub).Error)

	device := models.Device{
		Name:     "Kitchen Sensor",
		Type:     deviceType,
		Location: location,
		IsActive: true,
		HubID:    &hub.ID,
		SpaceID:  space.ID,
	}
	require.NoError(t, dbh.Create(&device).Error)

	return fixture{Owner: owner, Space: space, Hub: hub, Device: device}
}
