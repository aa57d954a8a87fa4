// internal/services/report_service.go
package services

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/veritrace/veritrace-backend/internal/models"
)

// ReportService is the read side of the counterfeit report log. Appends
// happen inside LedgerService.ReportCounterfeit so the flag flip and the
// report row commit together.
type ReportService struct {
	db *gorm.DB
}

// ReportFilter terms are case-insensitive substrings, AND-combined when
// more than one is given. ProductID matches against the decimal rendering
// of the id.
type ReportFilter struct {
	ProductID    string `json:"product_id,omitempty"`
	Manufacturer string `json:"manufacturer,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Order        string `json:"order,omitempty"` // asc (default) or desc
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

func (s *ReportService) Query(filter ReportFilter) ([]models.CounterfeitReport, error) {
	query := s.db.Model(&models.CounterfeitReport{})

	if filter.ProductID != "" {
		query = query.Where("CAST(product_id AS TEXT) LIKE ?", "%"+strings.ToLower(filter.ProductID)+"%")
	}
	if filter.Manufacturer != "" {
		query = query.Where("LOWER(manufacturer_name) LIKE ?", "%"+strings.ToLower(filter.Manufacturer)+"%")
	}
	if filter.Reason != "" {
		query = query.Where("LOWER(reason) LIKE ?", "%"+strings.ToLower(filter.Reason)+"%")
	}

	// Insertion order unless the caller asks for newest first.
	if filter.Order == "desc" {
		query = query.Order("id desc")
	} else {
		query = query.Order("id asc")
	}

	reports := []models.CounterfeitReport{}
	if err := query.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	return reports, nil
}

func (s *ReportService) Count() (int64, error) {
	var count int64
	if err := s.db.Model(&models.CounterfeitReport{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}
