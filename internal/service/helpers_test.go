package service_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/dealbridge/negotiation-api/internal/database"
	"github.com/dealbridge/negotiation-api/internal/domain"
	"github.com/dealbridge/negotiation-api/internal/realtime"
	"github.com/dealbridge/negotiation-api/internal/repository"
	"github.com/dealbridge/negotiation-api/internal/service"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory sqlite database and migrates the
// schema. Each test gets its own database keyed by the test name.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")
	return db
}

type testEnv struct {
	db           *gorm.DB
	hub          *realtime.Hub
	negotiations *service.NegotiationService
	messages     *service.MessageService
	terms        *service.TermService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	db := setupTestDB(t)
	log := zap.NewNop()
	hub := realtime.NewHub(log)
	t.Cleanup(hub.Close)

	negotiationRepo := repository.NewNegotiationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	termRepo := repository.NewTermRepository(db)

	return &testEnv{
		db:           db,
		hub:          hub,
		negotiations: service.NewNegotiationService(negotiationRepo, messageRepo, hub, log),
		messages:     service.NewMessageService(negotiationRepo, messageRepo, hub, log),
		terms:        service.NewTermService(termRepo, negotiationRepo, log),
	}
}

func testCreateRequest() *domain.CreateNegotiationRequest {
	return &domain.CreateNegotiationRequest{
		Name:        "Steel Pipe Procurement",
		BuyerName:   "Dana Reyes",
		CompanyName: "Northwind Industrial",
		Suppliers: []domain.CreateSupplierRequest{
			{
				Name:           "Apex Metals",
				Email:          "sales@apexmetals.example",
				Representative: "Kim Larsen",
				Items: []domain.CreateItemRequest{
					{
						Name:     "Carbon steel pipe DN200",
						Quantity: "500",
						Unit:     "m",
						Terms: domain.ItemTermsRequest{
							Price:        "42.50",
							PaymentTerms: "Net 45",
							Freight:      "CIF Rotterdam",
						},
					},
				},
			},
		},
	}
}

func createTestNegotiation(t *testing.T, env *testEnv) *domain.CreateNegotiationResponse {
	t.Helper()

	resp, err := env.negotiations.Create(context.Background(), testCreateRequest())
	require.NoError(t, err)
	return resp
}
