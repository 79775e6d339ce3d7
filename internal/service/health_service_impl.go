package service

import (
	"context"
	"fmt"

	"github.com/alimikegami/snowboard-review-service/config"
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	maxListedCollections  = 10
	maxHealthErrorLength  = 50
	statusBackendRunning  = "✅ Running"
	statusDBNotAvailable  = "❌ Not Available"
	statusDBAvailable     = "✅ Available"
	statusDBWorking       = "✅ Connected & Working"
	statusDBUninitialized = "⚠️  Available but not initialized"
	statusURLSet          = "✅ Set"
	statusURLNotSet       = "❌ Not Set"
	connectionConnected   = "Connected"
	connectionNone        = "Not Connected"
)

type HealthServiceImpl struct {
	db     DatabaseInspector
	config config.Config
}

// CreateHealthService takes a nil db when the store could not be reached.
func CreateHealthService(db DatabaseInspector, config config.Config) HealthService {
	return &HealthServiceImpl{db: db, config: config}
}

func (s *HealthServiceImpl) CheckHealth(ctx context.Context) dto.HealthResponse {
	resp := dto.HealthResponse{
		Backend:          statusBackendRunning,
		Database:         statusDBNotAvailable,
		ConnectionStatus: connectionNone,
		Collections:      []string{},
	}

	if s.db == nil {
		resp.Database = statusDBUninitialized
		return resp
	}

	urlStatus := statusURLNotSet
	if s.config.DatabaseURLSet() {
		urlStatus = statusURLSet
	}
	name := s.db.Name()

	resp.Database = statusDBAvailable
	resp.DatabaseURL = &urlStatus
	resp.DatabaseName = &name
	resp.ConnectionStatus = connectionConnected

	collections, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		resp.Database = fmt.Sprintf("⚠️  Connected but Error: %s", truncate(err.Error(), maxHealthErrorLength))
		return resp
	}

	if len(collections) > maxListedCollections {
		collections = collections[:maxListedCollections]
	}
	if collections != nil {
		resp.Collections = collections
	}
	resp.Database = statusDBWorking

	return resp
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n])
}
