// internal/services/ledger_service_test.go
package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veritrace/veritrace-backend/internal/config"
	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

const (
	identityA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	identityB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	identityC = "0xcccccccccccccccccccccccccccccccccccccccc"
)

func testConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		Ledger: config.LedgerConfig{
			RegisterMaxAttempts: 5,
		},
		JWT: config.JWTConfig{
			SecretKey:       "test-secret",
			AccessTokenTTL:  1,
			RefreshTokenTTL: 1,
		},
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.CustodianBinding{},
		&models.Product{},
		&models.CustodyEvent{},
		&models.CounterfeitReport{},
		&models.LedgerEvent{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

type LedgerServiceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	events *EventService
	ledger *LedgerService
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	cfg := testConfig()
	suite.db = openTestDB(suite.T())
	suite.events = NewEventService(suite.db, cfg)
	suite.ledger = NewLedgerService(suite.db, suite.events, cfg)
}

func (suite *LedgerServiceTestSuite) register(identity string) *models.Product {
	product, err := suite.ledger.RegisterProduct(identity, &RegisterProductRequest{
		ProductName:      "Leather Handbag",
		ManufacturerName: "Acme Goods Ltd",
	})
	suite.Require().NoError(err)
	return product
}

func (suite *LedgerServiceTestSuite) TestRegisterGeneratesIdentifier() {
	product := suite.register(identityA)

	assert.True(suite.T(), utils.ValidIdentifierFormat(product.Identifier))
	assert.Equal(suite.T(), identityA, product.ManufacturerIdentity)
	assert.Equal(suite.T(), identityA, product.CurrentOwner)
	assert.True(suite.T(), product.IsAuthentic)

	history, err := suite.ledger.GetHistory(product.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 1)
	assert.Equal(suite.T(), models.EventManufactured, history[0].EventType)
	assert.Equal(suite.T(), models.GenesisIdentity, history[0].FromIdentity)
	assert.Equal(suite.T(), identityA, history[0].ToIdentity)
	assert.Equal(suite.T(), "Factory", history[0].Location)
}

func (suite *LedgerServiceTestSuite) TestRegisterDuplicateIdentifier() {
	req := &RegisterProductRequest{
		ProductName:      "Leather Handbag",
		ManufacturerName: "Acme Goods Ltd",
		Identifier:       "PRD-TEST-0001",
	}

	_, err := suite.ledger.RegisterProduct(identityA, req)
	suite.Require().NoError(err)

	_, err = suite.ledger.RegisterProduct(identityA, req)
	assert.ErrorIs(suite.T(), err, ErrDuplicateIdentifier)

	var count int64
	suite.db.Model(&models.Product{}).Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *LedgerServiceTestSuite) TestRegisterIdentifierCaseInsensitive() {
	_, err := suite.ledger.RegisterProduct(identityA, &RegisterProductRequest{
		ProductName:      "Leather Handbag",
		ManufacturerName: "Acme Goods Ltd",
		Identifier:       "PRD-TEST-0002",
	})
	suite.Require().NoError(err)

	_, err = suite.ledger.RegisterProduct(identityA, &RegisterProductRequest{
		ProductName:      "Leather Handbag",
		ManufacturerName: "Acme Goods Ltd",
		Identifier:       "prd-test-0002",
	})
	assert.ErrorIs(suite.T(), err, ErrDuplicateIdentifier)
}

func (suite *LedgerServiceTestSuite) TestVerifyOutcomes() {
	product := suite.register(identityA)

	outcome, found, err := suite.ledger.VerifyProduct(product.Identifier)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.VerificationAuthentic, outcome)
	suite.Require().NotNil(found)
	assert.Equal(suite.T(), product.ProductID, found.ProductID)

	// Unknown but well-formed identifier
	outcome, found, err = suite.ledger.VerifyProduct("PRD-UNKNOWN-0000")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.VerificationUnregistered, outcome)
	assert.Nil(suite.T(), found)

	// Malformed identifier is also just unregistered
	outcome, _, err = suite.ledger.VerifyProduct("not-an-identifier")
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.VerificationUnregistered, outcome)

	// Flag it and verify again
	_, err = suite.ledger.ReportCounterfeit(product.ProductID, identityB, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	outcome, found, err = suite.ledger.VerifyProduct(product.Identifier)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.VerificationFlagged, outcome)
	suite.Require().NotNil(found)
	assert.False(suite.T(), found.IsAuthentic)
}

func (suite *LedgerServiceTestSuite) TestVerifyIsCaseInsensitive() {
	product := suite.register(identityA)

	outcome, _, err := suite.ledger.VerifyProduct(product.Identifier)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.VerificationAuthentic, outcome)

	lowered, _, err := suite.ledger.VerifyProduct("prd-" + product.Identifier[4:])
	suite.Require().NoError(err)
	assert.Equal(suite.T(), outcome, lowered)
}

func (suite *LedgerServiceTestSuite) TestTransferAppendsEventAndMovesOwnership() {
	product := suite.register(identityA)

	updated, err := suite.ledger.TransferOwnership(product.ProductID, identityA, &TransferRequest{
		NewOwner:  identityB,
		EventType: models.EventDistributed,
		Location:  "Warehouse 7",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), identityB, updated.CurrentOwner)

	history, err := suite.ledger.GetHistory(product.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)
	assert.Equal(suite.T(), models.EventManufactured, history[0].EventType)
	assert.Equal(suite.T(), models.EventDistributed, history[1].EventType)
	assert.Equal(suite.T(), identityA, history[1].FromIdentity)
	assert.Equal(suite.T(), identityB, history[1].ToIdentity)
	assert.Equal(suite.T(), "Warehouse 7", history[1].Location)
}

func (suite *LedgerServiceTestSuite) TestTransferByNonOwnerLeavesStateUnchanged() {
	product := suite.register(identityA)

	_, err := suite.ledger.TransferOwnership(product.ProductID, identityB, &TransferRequest{
		NewOwner:  identityC,
		EventType: models.EventSold,
		Location:  "Retail Store",
	})
	assert.ErrorIs(suite.T(), err, ErrNotOwner)

	reloaded, err := suite.ledger.GetProduct(product.ProductID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), identityA, reloaded.CurrentOwner)

	history, err := suite.ledger.GetHistory(product.ProductID)
	suite.Require().NoError(err)
	assert.Len(suite.T(), history, 1)
}

func (suite *LedgerServiceTestSuite) TestTransferRejectsManufacturedEventType() {
	product := suite.register(identityA)

	_, err := suite.ledger.TransferOwnership(product.ProductID, identityA, &TransferRequest{
		NewOwner:  identityB,
		EventType: models.EventManufactured,
		Location:  "Factory",
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidInput)

	history, err := suite.ledger.GetHistory(product.ProductID)
	suite.Require().NoError(err)
	assert.Len(suite.T(), history, 1)
}

func (suite *LedgerServiceTestSuite) TestTransferUnknownProduct() {
	_, err := suite.ledger.TransferOwnership(9999, identityA, &TransferRequest{
		NewOwner:  identityB,
		EventType: models.EventSold,
		Location:  "Retail Store",
	})
	assert.ErrorIs(suite.T(), err, ErrProductNotFound)
}

func (suite *LedgerServiceTestSuite) TestReportFlagsProductOnce() {
	product := suite.register(identityA)

	report, err := suite.ledger.ReportCounterfeit(product.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "duplicate QR code seen on two items",
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "Leather Handbag", report.ProductName)
	assert.Equal(suite.T(), "Acme Goods Ltd", report.ManufacturerName)

	reloaded, err := suite.ledger.GetProduct(product.ProductID)
	suite.Require().NoError(err)
	assert.False(suite.T(), reloaded.IsAuthentic)

	// A second report appends but does not change state
	_, err = suite.ledger.ReportCounterfeit(product.ProductID, identityB, &ReportCounterfeitRequest{
		Reason: "packaging looks fake",
	})
	suite.Require().NoError(err)

	var reportCount int64
	suite.db.Model(&models.CounterfeitReport{}).Where("product_id = ?", product.ProductID).Count(&reportCount)
	assert.Equal(suite.T(), int64(2), reportCount)

	reloaded, err = suite.ledger.GetProduct(product.ProductID)
	suite.Require().NoError(err)
	assert.False(suite.T(), reloaded.IsAuthentic)
}

func (suite *LedgerServiceTestSuite) TestTransferOfFlaggedProductFails() {
	product := suite.register(identityA)

	_, err := suite.ledger.ReportCounterfeit(product.ProductID, identityB, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	_, err = suite.ledger.TransferOwnership(product.ProductID, identityA, &TransferRequest{
		NewOwner:  identityB,
		EventType: models.EventSold,
		Location:  "Retail Store",
	})
	assert.ErrorIs(suite.T(), err, ErrProductFlagged)

	history, err := suite.ledger.GetHistory(product.ProductID)
	suite.Require().NoError(err)
	assert.Len(suite.T(), history, 1)
}

func (suite *LedgerServiceTestSuite) TestFullLifecycle() {
	product := suite.register(identityA)

	outcome, _, err := suite.ledger.VerifyProduct(product.Identifier)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.VerificationAuthentic, outcome)

	_, err = suite.ledger.TransferOwnership(product.ProductID, identityA, &TransferRequest{
		NewOwner:  identityB,
		EventType: models.EventDistributed,
		Location:  "Distribution Center",
	})
	suite.Require().NoError(err)

	history, err := suite.ledger.GetHistory(product.ProductID)
	suite.Require().NoError(err)
	suite.Require().Len(history, 2)

	reloaded, err := suite.ledger.GetProduct(product.ProductID)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), identityB, reloaded.CurrentOwner)

	_, err = suite.ledger.ReportCounterfeit(product.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	outcome, _, err = suite.ledger.VerifyProduct(product.Identifier)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.VerificationFlagged, outcome)

	_, err = suite.ledger.TransferOwnership(product.ProductID, identityB, &TransferRequest{
		NewOwner:  identityC,
		EventType: models.EventSold,
		Location:  "Retail Store",
	})
	assert.ErrorIs(suite.T(), err, ErrProductFlagged)
}

func (suite *LedgerServiceTestSuite) TestConcurrentTransfersSingleWinner() {
	product := suite.register(identityA)

	var wg sync.WaitGroup
	results := make([]error, 2)
	targets := []string{identityB, identityC}

	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = suite.ledger.TransferOwnership(product.ProductID, identityA, &TransferRequest{
				NewOwner:  targets[i],
				EventType: models.EventTransferred,
				Location:  "Handover Point",
			})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(suite.T(), err, ErrNotOwner)
		}
	}
	assert.Equal(suite.T(), 1, succeeded)

	history, err := suite.ledger.GetHistory(product.ProductID)
	suite.Require().NoError(err)
	assert.Len(suite.T(), history, 2)
}

func (suite *LedgerServiceTestSuite) TestLedgerEventFeed() {
	product := suite.register(identityA)

	_, err := suite.ledger.TransferOwnership(product.ProductID, identityA, &TransferRequest{
		NewOwner:  identityB,
		EventType: models.EventDistributed,
		Location:  "Warehouse 7",
	})
	suite.Require().NoError(err)

	_, err = suite.ledger.ReportCounterfeit(product.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	events, err := suite.events.List(0, 100)
	suite.Require().NoError(err)
	suite.Require().Len(events, 3)
	assert.Equal(suite.T(), models.LedgerEventRegistered, events[0].EventKind)
	assert.Equal(suite.T(), models.LedgerEventTransferred, events[1].EventKind)
	assert.Equal(suite.T(), models.LedgerEventFlagged, events[2].EventKind)

	// Cursor skips what the caller already saw
	tail, err := suite.events.List(events[1].ID, 100)
	suite.Require().NoError(err)
	suite.Require().Len(tail, 1)
	assert.Equal(suite.T(), models.LedgerEventFlagged, tail[0].EventKind)
}

func TestLedgerServiceSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
