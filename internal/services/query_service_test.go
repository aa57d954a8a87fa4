// internal/services/query_service_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

type QueryServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	ledger  *LedgerService
	reports *ReportService
	query   *QueryService
}

func (suite *QueryServiceTestSuite) SetupTest() {
	cfg := testConfig()
	suite.db = openTestDB(suite.T())
	suite.ledger = NewLedgerService(suite.db, nil, cfg)
	suite.reports = NewReportService(suite.db)
	suite.query = NewQueryService(suite.db, suite.reports)
}

func (suite *QueryServiceTestSuite) seed() (*models.Product, *models.Product) {
	bag, err := suite.ledger.RegisterProduct(identityA, &RegisterProductRequest{
		ProductName:      "Leather Handbag",
		ManufacturerName: "Acme Goods Ltd",
	})
	suite.Require().NoError(err)

	watch, err := suite.ledger.RegisterProduct(identityB, &RegisterProductRequest{
		ProductName:      "Chronograph Watch",
		ManufacturerName: "Timekeepers Inc",
	})
	suite.Require().NoError(err)

	return bag, watch
}

func (suite *QueryServiceTestSuite) TestByOwnerIsExactAndCaseInsensitive() {
	bag, _ := suite.seed()

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "registered_at", Order: "asc"}
	products, total, err := suite.query.ByOwner("0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA", params)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	suite.Require().Len(products, 1)
	assert.Equal(suite.T(), bag.ProductID, products[0].ProductID)
}

func (suite *QueryServiceTestSuite) TestByOwnerFollowsTransfers() {
	bag, _ := suite.seed()

	_, err := suite.ledger.TransferOwnership(bag.ProductID, identityA, &TransferRequest{
		NewOwner:  identityC,
		EventType: models.EventSold,
		Location:  "Retail Store",
	})
	suite.Require().NoError(err)

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "registered_at", Order: "asc"}
	_, total, err := suite.query.ByOwner(identityA, params)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(0), total)

	products, total, err := suite.query.ByOwner(identityC, params)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Equal(suite.T(), bag.ProductID, products[0].ProductID)
}

func (suite *QueryServiceTestSuite) TestByManufacturerMatchesIdentityOrName() {
	bag, _ := suite.seed()

	params := utils.PaginationParams{Page: 1, Limit: 20, Sort: "registered_at", Order: "asc"}

	byIdentity, total, err := suite.query.ByManufacturer(identityA, params)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Equal(suite.T(), bag.ProductID, byIdentity[0].ProductID)

	byName, total, err := suite.query.ByManufacturer("acme goods ltd", params)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), total)
	assert.Equal(suite.T(), bag.ProductID, byName[0].ProductID)
}

func (suite *QueryServiceTestSuite) TestCountsByAuthenticity() {
	bag, _ := suite.seed()

	_, err := suite.ledger.ReportCounterfeit(bag.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	authentic, flagged, err := suite.query.CountsByAuthenticity()
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(1), authentic)
	assert.Equal(suite.T(), int64(1), flagged)
}

func (suite *QueryServiceTestSuite) TestReportFiltersAreANDCombined() {
	bag, watch := suite.seed()

	_, err := suite.ledger.ReportCounterfeit(bag.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)
	_, err = suite.ledger.ReportCounterfeit(watch.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "serial number reused",
	})
	suite.Require().NoError(err)

	// Single filter
	matches, err := suite.reports.Query(ReportFilter{Reason: "QR"})
	suite.Require().NoError(err)
	suite.Require().Len(matches, 1)
	assert.Equal(suite.T(), bag.ProductID, matches[0].ProductID)

	// Both filters must match
	matches, err = suite.reports.Query(ReportFilter{
		Manufacturer: "acme",
		Reason:       "serial",
	})
	suite.Require().NoError(err)
	assert.Len(suite.T(), matches, 0)

	matches, err = suite.reports.Query(ReportFilter{
		Manufacturer: "timekeepers",
		Reason:       "serial",
	})
	suite.Require().NoError(err)
	suite.Require().Len(matches, 1)
	assert.Equal(suite.T(), watch.ProductID, matches[0].ProductID)

	// Descending order flips insertion order
	all, err := suite.reports.Query(ReportFilter{Order: "desc"})
	suite.Require().NoError(err)
	suite.Require().Len(all, 2)
	assert.Equal(suite.T(), watch.ProductID, all[0].ProductID)
}

func (suite *QueryServiceTestSuite) TestEnrichedReportsFallBackForMissingProduct() {
	bag, _ := suite.seed()

	_, err := suite.ledger.ReportCounterfeit(bag.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	// Orphan report pointing at a product id that does not exist
	orphan := &models.CounterfeitReport{
		ProductID:        9999,
		Reason:           "reported against a ghost",
		ReporterIdentity: identityC,
		ProductName:      "Ghost Product",
		ManufacturerName: "Nobody",
	}
	suite.Require().NoError(suite.db.Create(orphan).Error)

	enriched, err := suite.query.EnrichedReports(ReportFilter{})
	suite.Require().NoError(err)
	suite.Require().Len(enriched, 2)

	assert.Equal(suite.T(), "Leather Handbag", enriched[0].ResolvedProductName)
	assert.Equal(suite.T(), string(models.VerificationFlagged), enriched[0].ProductStatus)

	assert.Equal(suite.T(), "Unknown Product", enriched[1].ResolvedProductName)
	assert.Equal(suite.T(), "Unknown Manufacturer", enriched[1].ResolvedManufacturerName)
	assert.Equal(suite.T(), string(models.VerificationUnregistered), enriched[1].ProductStatus)
}

func (suite *QueryServiceTestSuite) TestComplianceExport() {
	bag, _ := suite.seed()

	_, err := suite.ledger.ReportCounterfeit(bag.ProductID, identityC, &ReportCounterfeitRequest{
		Reason: "duplicate QR code",
	})
	suite.Require().NoError(err)

	export, err := suite.query.ComplianceExport(ReportFilter{})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), int64(2), export.TotalProducts)
	assert.Equal(suite.T(), int64(1), export.AuthenticCount)
	assert.Equal(suite.T(), int64(1), export.FlaggedCount)
	assert.Equal(suite.T(), int64(1), export.ReportCount)
	assert.Len(suite.T(), export.Reports, 1)
	assert.False(suite.T(), export.GeneratedAt.IsZero())
}

func TestQueryServiceSuite(t *testing.T) {
	suite.Run(t, new(QueryServiceTestSuite))
}
