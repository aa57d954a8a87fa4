// internal/services/query_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

// QueryService holds the read-only dashboard projections. Everything is
// derived on demand from the ledger and the report log; nothing here ever
// mutates state or keeps derived state of its own.
type QueryService struct {
	db      *gorm.DB
	reports *ReportService
}

// EnrichedReport carries a report plus product fields resolved at query
// time, distinct from the report's own write-time snapshot.
type EnrichedReport struct {
	models.CounterfeitReport
	ResolvedProductName      string `json:"resolved_product_name"`
	ResolvedManufacturerName string `json:"resolved_manufacturer_name"`
	ProductStatus            string `json:"product_status"`
}

// ComplianceExport is the regulator-facing aggregate snapshot, serialized
// as a self-describing JSON document for offline review.
type ComplianceExport struct {
	GeneratedAt    time.Time        `json:"generatedAt"`
	TotalProducts  int64            `json:"totalProducts"`
	AuthenticCount int64            `json:"authenticCount"`
	FlaggedCount   int64            `json:"flaggedCount"`
	ReportCount    int64            `json:"reportCount"`
	Reports        []EnrichedReport `json:"reports"`
}

const (
	unknownProductName      = "Unknown Product"
	unknownManufacturerName = "Unknown Manufacturer"
)

func NewQueryService(db *gorm.DB, reports *ReportService) *QueryService {
	return &QueryService{db: db, reports: reports}
}

// ByOwner lists products currently held by the given custodian identity,
// exact case-insensitive match.
func (s *QueryService) ByOwner(identity string, params utils.PaginationParams) ([]models.Product, int64, error) {
	return s.listProducts(s.db.Model(&models.Product{}).
		Where("LOWER(current_owner) = ?", strings.ToLower(identity)), params)
}

// ByManufacturer matches either the registering custodian identity or the
// manufacturer display name, exact case-insensitive.
func (s *QueryService) ByManufacturer(term string, params utils.PaginationParams) ([]models.Product, int64, error) {
	lowered := strings.ToLower(term)
	return s.listProducts(s.db.Model(&models.Product{}).
		Where("LOWER(manufacturer_identity) = ? OR LOWER(manufacturer_name) = ?", lowered, lowered), params)
}

func (s *QueryService) listProducts(query *gorm.DB, params utils.PaginationParams) ([]models.Product, int64, error) {
	if params.Search != "" {
		searchTerm := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(product_name) LIKE ? OR LOWER(description) LIKE ?", searchTerm, searchTerm)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"registered_at", "product_name", "manufacturer_name", "price"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

// CountsByAuthenticity partitions the ledger into authentic and flagged.
func (s *QueryService) CountsByAuthenticity() (authentic int64, flagged int64, err error) {
	if err = s.db.Model(&models.Product{}).Where("is_authentic = ?", true).Count(&authentic).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count authentic products: %w", err)
	}
	if err = s.db.Model(&models.Product{}).Where("is_authentic = ?", false).Count(&flagged).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count flagged products: %w", err)
	}
	return authentic, flagged, nil
}

// EnrichedReports resolves product fields for each matching report at query
// time. A report whose product cannot be resolved degrades to the fallback
// display strings instead of failing.
func (s *QueryService) EnrichedReports(filter ReportFilter) ([]EnrichedReport, error) {
	reports, err := s.reports.Query(filter)
	if err != nil {
		return nil, err
	}

	productIDs := make([]uint, 0, len(reports))
	seen := make(map[uint]bool, len(reports))
	for _, report := range reports {
		if !seen[report.ProductID] {
			seen[report.ProductID] = true
			productIDs = append(productIDs, report.ProductID)
		}
	}

	productsByID := make(map[uint]models.Product, len(productIDs))
	if len(productIDs) > 0 {
		var products []models.Product
		if err := s.db.Where("product_id IN ?", productIDs).Find(&products).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve report products: %w", err)
		}
		for _, product := range products {
			productsByID[product.ProductID] = product
		}
	}

	enriched := make([]EnrichedReport, 0, len(reports))
	for _, report := range reports {
		entry := EnrichedReport{
			CounterfeitReport:        report,
			ResolvedProductName:      unknownProductName,
			ResolvedManufacturerName: unknownManufacturerName,
			ProductStatus:            string(models.VerificationUnregistered),
		}
		if product, ok := productsByID[report.ProductID]; ok {
			entry.ResolvedProductName = product.ProductName
			entry.ResolvedManufacturerName = product.ManufacturerName
			if product.IsAuthentic {
				entry.ProductStatus = string(models.VerificationAuthentic)
			} else {
				entry.ProductStatus = string(models.VerificationFlagged)
			}
		}
		enriched = append(enriched, entry)
	}

	return enriched, nil
}

// ComplianceExport builds the regulator snapshot. The optional filter
// narrows the included reports; the counters always cover the whole ledger.
func (s *QueryService) ComplianceExport(filter ReportFilter) (*ComplianceExport, error) {
	authentic, flagged, err := s.CountsByAuthenticity()
	if err != nil {
		return nil, err
	}

	reportCount, err := s.reports.Count()
	if err != nil {
		return nil, err
	}

	reports, err := s.EnrichedReports(filter)
	if err != nil {
		return nil, err
	}

	return &ComplianceExport{
		GeneratedAt:    time.Now().UTC(),
		TotalProducts:  authentic + flagged,
		AuthenticCount: authentic,
		FlaggedCount:   flagged,
		ReportCount:    reportCount,
		Reports:        reports,
	}, nil
}
