package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/alimikegami/snowboard-review-service/config"
)

func TestHealthService_NoDatabase(t *testing.T) {
	svc := CreateHealthService(nil, config.Config{})

	resp := svc.CheckHealth(context.Background())

	assert.Equal(t, "✅ Running", resp.Backend)
	assert.Equal(t, "⚠️  Available but not initialized", resp.Database)
	assert.Nil(t, resp.DatabaseURL)
	assert.Nil(t, resp.DatabaseName)
	assert.Equal(t, "Not Connected", resp.ConnectionStatus)
	assert.Equal(t, []string{}, resp.Collections)
}

func TestHealthService_Connected(t *testing.T) {
	db := new(mockDatabase)
	conf := config.Config{MongoDBConfig: config.MongoDBConfig{URI: "mongodb://localhost:27017"}}
	svc := CreateHealthService(db, conf)

	collections := make([]string, 12)
	for i := range collections {
		collections[i] = fmt.Sprintf("c%d", i)
	}
	db.On("Name").Return("snowboard")
	db.On("ListCollectionNames", mock.Anything, mock.Anything).Return(collections, nil)

	resp := svc.CheckHealth(context.Background())

	assert.Equal(t, "✅ Connected & Working", resp.Database)
	assert.Equal(t, "✅ Set", *resp.DatabaseURL)
	assert.Equal(t, "snowboard", *resp.DatabaseName)
	assert.Equal(t, "Connected", resp.ConnectionStatus)
	assert.Equal(t, collections[:10], resp.Collections)
}

func TestHealthService_ListError(t *testing.T) {
	db := new(mockDatabase)
	svc := CreateHealthService(db, config.Config{})

	db.On("Name").Return("snowboard")
	db.On("ListCollectionNames", mock.Anything, mock.Anything).Return(nil, errors.New(strings.Repeat("x", 80)))

	resp := svc.CheckHealth(context.Background())

	assert.Equal(t, "⚠️  Connected but Error: "+strings.Repeat("x", 50), resp.Database)
	assert.Equal(t, "❌ Not Set", *resp.DatabaseURL)
	assert.Equal(t, "Connected", resp.ConnectionStatus)
	assert.Equal(t, []string{}, resp.Collections)
}
