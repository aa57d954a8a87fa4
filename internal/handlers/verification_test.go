// internal/handlers/verification_test.go
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/veritrace/veritrace-backend/internal/config"
	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/services"
)

const testManufacturer = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"

type VerificationHandlerTestSuite struct {
	suite.Suite
	db     *gorm.DB
	ledger *services.LedgerService
	router *gin.Engine
}

func (suite *VerificationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(db.AutoMigrate(
		&models.Product{},
		&models.CustodyEvent{},
		&models.CounterfeitReport{},
		&models.LedgerEvent{},
	))
	suite.db = db

	cfg := &config.Config{
		Environment: "test",
		Ledger:      config.LedgerConfig{RegisterMaxAttempts: 5},
	}
	suite.ledger = services.NewLedgerService(db, nil, cfg)

	handler := NewVerificationHandler(suite.ledger)
	suite.router = gin.New()
	suite.router.GET("/v1/verify/:identifier", handler.Verify)
}

func (suite *VerificationHandlerTestSuite) verify(identifier string) (int, map[string]interface{}) {
	req, _ := http.NewRequest("GET", "/v1/verify/"+identifier, nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	suite.Require().NoError(err)
	return w.Code, response
}

func (suite *VerificationHandlerTestSuite) TestVerifyAuthenticProduct() {
	product, err := suite.ledger.RegisterProduct(testManufacturer, &services.RegisterProductRequest{
		ProductName:      "Leather Handbag",
		ManufacturerName: "Acme Goods Ltd",
	})
	suite.Require().NoError(err)

	code, response := suite.verify(product.Identifier)
	assert.Equal(suite.T(), http.StatusOK, code)
	assert.True(suite.T(), response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "authentic", data["status"])

	productData := data["product"].(map[string]interface{})
	assert.Equal(suite.T(), product.Identifier, productData["identifier"])

	history := data["history"].([]interface{})
	suite.Require().Len(history, 1)
	first := history[0].(map[string]interface{})
	assert.Equal(suite.T(), "MANUFACTURED", first["event_type"])
}

func (suite *VerificationHandlerTestSuite) TestVerifyFlaggedProduct() {
	product, err := suite.ledger.RegisterProduct(testManufacturer, &services.RegisterProductRequest{
		ProductName:      "Leather Handbag",
		ManufacturerName: "Acme Goods Ltd",
	})
	suite.Require().NoError(err)

	_, err = suite.ledger.ReportCounterfeit(product.ProductID, testManufacturer, &services.ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	code, response := suite.verify(product.Identifier)
	assert.Equal(suite.T(), http.StatusOK, code)

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "flagged", data["status"])
	assert.NotNil(suite.T(), data["product"])
}

func (suite *VerificationHandlerTestSuite) TestVerifyUnregisteredIdentifier() {
	code, response := suite.verify("PRD-UNKNOWN-0000")
	assert.Equal(suite.T(), http.StatusOK, code)
	assert.True(suite.T(), response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "unregistered", data["status"])
	assert.Nil(suite.T(), data["product"])
	assert.Nil(suite.T(), data["history"])
}

func (suite *VerificationHandlerTestSuite) TestVerifyMalformedIdentifier() {
	code, response := suite.verify("garbage")
	assert.Equal(suite.T(), http.StatusOK, code)

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), "unregistered", data["status"])
}

func TestVerificationHandlerSuite(t *testing.T) {
	suite.Run(t, new(VerificationHandlerTestSuite))
}
