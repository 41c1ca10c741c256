package main

import (
	"log"
	"os"
	"strconv"

	"github.com/haven-dev/haven/db"
	"github.com/haven-dev/haven/internal/auth"
	"github.com/haven-dev/haven/internal/handlers"
	"github.com/haven-dev/haven/internal/models"
	"github.com/haven-dev/haven/internal/notifiers"
	"github.com/haven-dev/haven/internal/pipeline"
	"github.com/haven-dev/haven/internal/router"
	"github.com/haven-dev/haven/internal/workers"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	if err := auth.InitJWTSecret(); err != nil {
		log.Fatalf("Failed to initialize JWT: %v", err)
	}

	if err := db.ConnectDatabase(os.Getenv("DATABASE_URL")); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	classifier := pipeline.NewClassifier(pipeline.ThresholdsFromEnv(), logger)
	dispatcher := pipeline.NewDispatcher(emailSender(logger), smsSender(logger), logger)

	processor := pipeline.NewProcessor(db.DB, classifier, dispatcher, logger)
	processor.OnIncident(func(incident models.Incident) {
		var event models.Event
		if err := db.DB.Preload("Device").First(&event, incident.EventID).Error; err != nil {
			log.Printf("Failed to resolve space for incident %d: %v", incident.ID, err)
			return
		}
		handlers.BroadcastIncidentCreated(event.Device.SpaceID, incident)
	})

	workers.Initialize(envInt("PIPELINE_WORKERS"), envInt("PIPELINE_QUEUE_SIZE"), processor.Process, logger)
	defer workers.Shutdown()

	r := router.NewRouter()

	var port string

	if port = os.Getenv("PORT"); port == "" {
		port = "8000"
		log.Println("PORT not set, defaulting to 8000")
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func emailSender(logger *logrus.Logger) pipeline.EmailSender {
	if url := os.Getenv("EMAIL_PROVIDER_URL"); url != "" {
		return notifiers.NewHTTPEmailSender(url, os.Getenv("EMAIL_PROVIDER_TOKEN"))
	}
	return notifiers.LogEmailSender{Log: logger}
}

func smsSender(logger *logrus.Logger) pipeline.SMSSender {
	if url := os.Getenv("SMS_PROVIDER_URL"); url != "" {
		return notifiers.NewHTTPSMSSender(url, os.Getenv("SMS_PROVIDER_TOKEN"))
	}
	return notifiers.LogSMSSender{Log: logger}
}

func envInt(key string) int {
	raw := os.Getenv(key)

	if raw == "" {
		return 0
	}

	value, err := strconv.Atoi(raw)

	if err != nil {
		return 0
	}

	return value
}
