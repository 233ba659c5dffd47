package testutil

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates a connection to the test PostgreSQL database
// It uses environment variables or falls back to docker-compose defaults
func SetupTestDB(t *testing.T) *gorm.DB {
	host := getEnvOrDefault("DATABASE_HOST", "localhost")
	port := getEnvOrDefault("DATABASE_PORT", "5432")
	user := getEnvOrDefault("DATABASE_USER", "sales_user")
	password := getEnvOrDefault("DATABASE_PASSWORD", "sales_password")
	dbname := getEnvOrDefault("DATABASE_NAME", "sales")

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		host, port, user, password, dbname)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err, "Failed to connect to test database. Ensure PostgreSQL is running.")

	return db
}

// CleanupTestData cleans up test data from all tables
// This should be called after tests to ensure a clean state
func CleanupTestData(t *testing.T, db *gorm.DB) {
	// Delete in order to respect foreign key constraints
	tables := []string{
		"audit_logs",
		"notifications",
		"activities",
		"documents",
		"item_materials",
		"configured_items",
		"workflow_steps",
		"amendments",
		"contract_upgrades",
		"contracts",
		"quotation_items",
		"quotations",
		"upgrades",
		"option_items",
		"memorial_items",
		"yacht_models",
		"clients",
		"number_sequences",
	}

	for _, table := range tables {
		err := db.Exec(fmt.Sprintf("DELETE FROM %s WHERE id IS NOT NULL", table)).Error
		if err != nil {
			// Table might not exist, that's ok
			t.Logf("Note: Could not clean table %s: %v", table, err)
		}
	}
}

// CreateTestClient creates a test client and returns it
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	// Use the last 11 digits of nanoseconds to make the document unique
	document := fmt.Sprintf("%011d", randomInt()%100000000000)
	client := &domain.Client{
		Name:     name,
		Document: document,
		Email:    "teste@example.com.br",
		Phone:    "11999990000",
		Country:  "Brazil",
		Status:   domain.ClientStatusActive,
	}
	// Omit associations to avoid GORM trying to create related records
	err := db.Omit(clause.Associations).Create(client).Error
	require.NoError(t, err)
	return client
}

// CreateTestYachtModel creates a catalog model with no memorial items or options
func CreateTestYachtModel(t *testing.T, db *gorm.DB, name string, basePrice float64) *domain.YachtModel {
	model := &domain.YachtModel{
		Name:             fmt.Sprintf("%s %d", name, randomInt()%100000),
		LengthFeet:       42.5,
		BasePrice:        basePrice,
		BaseDeliveryDays: 180,
		IsActive:         true,
	}
	err := db.Omit(clause.Associations).Create(model).Error
	require.NoError(t, err)
	return model
}

// CreateTestContract creates an active contract for the given client and model
func CreateTestContract(t *testing.T, db *gorm.DB, client *domain.Client, model *domain.YachtModel) *domain.Contract {
	contract := &domain.Contract{
		Number:            fmt.Sprintf("CT-2026-%03d", randomInt()%1000),
		ClientID:          client.ID,
		YachtModelID:      model.ID,
		Status:            domain.ContractStatusActive,
		BasePrice:         model.BasePrice,
		BaseDeliveryDays:  model.BaseDeliveryDays,
		TotalPrice:        model.BasePrice,
		TotalDeliveryDays: model.BaseDeliveryDays,
	}
	err := db.Omit(clause.Associations).Create(contract).Error
	require.NoError(t, err)
	return contract
}

// randomInt returns a unique integer for test data
func randomInt() int64 {
	return time.Now().UnixNano()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
