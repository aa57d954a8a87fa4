// internal/services/ledger_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/veritrace/veritrace-backend/internal/config"
	"github.com/veritrace/veritrace-backend/internal/metrics"
	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

// LedgerService is the sole owner of product records and custody history.
// All check-and-mutate sequences are serialized per product with an
// in-process keyed mutex and applied inside a database transaction, so the
// atomicity guarantees hold regardless of the backend's own semantics.
type LedgerService struct {
	db     *gorm.DB
	events *EventService
	cfg    *config.Config

	registerMu sync.Mutex
	locksMu    sync.Mutex
	locks      map[uint]*sync.Mutex
}

type RegisterProductRequest struct {
	ProductName      string  `json:"product_name" validate:"required,min=2,max=255"`
	ManufacturerName string  `json:"manufacturer_name" validate:"required,min=2,max=255"`
	Identifier       string  `json:"identifier,omitempty" validate:"omitempty,product_identifier"`
	Price            float64 `json:"price,omitempty" validate:"omitempty,min=0"`
	ProductType      string  `json:"product_type,omitempty" validate:"omitempty,max=100"`
	Description      string  `json:"description,omitempty"`
}

type TransferRequest struct {
	NewOwner  string           `json:"new_owner" validate:"required,custodian_identity"`
	EventType models.EventType `json:"event_type" validate:"required,oneof=DISTRIBUTED SOLD TRANSFERRED"`
	Location  string           `json:"location" validate:"required,min=2,max=255"`
}

type ReportCounterfeitRequest struct {
	Reason string `json:"reason" validate:"required,min=3"`
}

func NewLedgerService(db *gorm.DB, events *EventService, cfg *config.Config) *LedgerService {
	return &LedgerService{
		db:     db,
		events: events,
		cfg:    cfg,
		locks:  make(map[uint]*sync.Mutex),
	}
}

// RegisterProduct creates a product record plus its synthetic MANUFACTURED
// custody event. When req.Identifier is empty the ledger generates one and
// retries on collision; a caller-supplied identifier that collides is a hard
// ErrDuplicateIdentifier.
func (s *LedgerService) RegisterProduct(manufacturerIdentity string, req *RegisterProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}
	if manufacturerIdentity == "" {
		return nil, invalidInput(errors.New("manufacturer identity is required"))
	}

	callerSupplied := req.Identifier != ""
	identifier := utils.NormalizeIdentifier(req.Identifier)
	if !callerSupplied {
		generated, err := utils.GenerateProductIdentifier()
		if err != nil {
			return nil, fmt.Errorf("failed to generate identifier: %w", err)
		}
		identifier = generated
	}

	// Serialize identifier allocation; the unique index remains the
	// backstop for anything racing outside this process.
	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	maxAttempts := 1
	if !callerSupplied {
		maxAttempts = s.cfg.Ledger.RegisterMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var count int64
		if err := s.db.Model(&models.Product{}).Where("identifier = ?", identifier).Count(&count).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if count > 0 {
			if callerSupplied {
				return nil, ErrDuplicateIdentifier
			}
			generated, err := utils.GenerateProductIdentifier()
			if err != nil {
				return nil, fmt.Errorf("failed to regenerate identifier: %w", err)
			}
			identifier = generated
			continue
		}

		now := time.Now()
		product := &models.Product{
			Identifier:           identifier,
			ProductName:          req.ProductName,
			ManufacturerName:     req.ManufacturerName,
			ProductType:          req.ProductType,
			Description:          req.Description,
			Price:                req.Price,
			ManufacturerIdentity: manufacturerIdentity,
			CurrentOwner:         manufacturerIdentity,
			IsAuthentic:          true,
			RegisteredAt:         now,
		}

		err := s.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(product).Error; err != nil {
				return err
			}
			event := &models.CustodyEvent{
				ProductID:    product.ProductID,
				FromIdentity: models.GenesisIdentity,
				ToIdentity:   manufacturerIdentity,
				EventType:    models.EventManufactured,
				Location:     "Factory",
				Timestamp:    now,
			}
			return tx.Create(event).Error
		})
		if err != nil {
			return nil, fmt.Errorf("failed to register product: %w", err)
		}

		metrics.ProductsRegistered.Inc()
		s.publish(models.LedgerEventRegistered, product, manufacturerIdentity, nil)
		return product, nil
	}

	return nil, ErrDuplicateIdentifier
}

// VerifyProduct is a pure lookup returning the tri-state outcome. An
// unknown or malformed identifier is the unregistered outcome, never an
// error: that is exactly the counterfeit-detection signal.
func (s *LedgerService) VerifyProduct(identifier string) (models.VerificationOutcome, *models.Product, error) {
	identifier = utils.NormalizeIdentifier(identifier)
	if !utils.ValidIdentifierFormat(identifier) {
		metrics.Verifications.WithLabelValues(string(models.VerificationUnregistered)).Inc()
		return models.VerificationUnregistered, nil, nil
	}

	var product models.Product
	if err := s.db.Where("identifier = ?", identifier).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.Verifications.WithLabelValues(string(models.VerificationUnregistered)).Inc()
			return models.VerificationUnregistered, nil, nil
		}
		return "", nil, fmt.Errorf("database error: %w", err)
	}

	outcome := models.VerificationAuthentic
	if !product.IsAuthentic {
		outcome = models.VerificationFlagged
	}
	metrics.Verifications.WithLabelValues(string(outcome)).Inc()
	return outcome, &product, nil
}

// GetProduct looks a product up by its numeric id.
func (s *LedgerService) GetProduct(productID uint) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// TransferOwnership appends a custody event and moves current ownership.
// Input validation happens before any state check; the ownership check and
// the mutation are one atomic unit per product.
func (s *LedgerService) TransferOwnership(productID uint, callerIdentity string, req *TransferRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}
	if callerIdentity == "" {
		return nil, invalidInput(errors.New("caller identity is required"))
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	var product models.Product
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if !product.IsAuthentic {
			return ErrProductFlagged
		}
		if !strings.EqualFold(product.CurrentOwner, callerIdentity) {
			return ErrNotOwner
		}

		event := &models.CustodyEvent{
			ProductID:    product.ProductID,
			FromIdentity: product.CurrentOwner,
			ToIdentity:   req.NewOwner,
			EventType:    req.EventType,
			Location:     req.Location,
			Timestamp:    time.Now(),
		}
		if err := tx.Create(event).Error; err != nil {
			return fmt.Errorf("failed to append custody event: %w", err)
		}

		if err := tx.Model(&product).Update("current_owner", req.NewOwner).Error; err != nil {
			return fmt.Errorf("failed to update owner: %w", err)
		}
		product.CurrentOwner = req.NewOwner
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.OwnershipTransfers.Inc()
	s.publish(models.LedgerEventTransferred, &product, callerIdentity, models.JSONB{
		"new_owner":  req.NewOwner,
		"event_type": string(req.EventType),
		"location":   req.Location,
	})
	return &product, nil
}

// ReportCounterfeit flags the product and appends an immutable report with
// a metadata snapshot. The flip is unconditional and idempotent: reporting
// an already-flagged product appends another report without changing state.
// Reporting is deliberately not owner-gated.
func (s *LedgerService) ReportCounterfeit(productID uint, reporterIdentity string, req *ReportCounterfeitRequest) (*models.CounterfeitReport, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, invalidInput(err)
	}
	if reporterIdentity == "" {
		return nil, invalidInput(errors.New("reporter identity is required"))
	}

	lock := s.productLock(productID)
	lock.Lock()
	defer lock.Unlock()

	var product models.Product
	var report *models.CounterfeitReport
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return fmt.Errorf("database error: %w", err)
		}

		if product.IsAuthentic {
			if err := tx.Model(&product).Update("is_authentic", false).Error; err != nil {
				return fmt.Errorf("failed to flag product: %w", err)
			}
			product.IsAuthentic = false
		}

		report = &models.CounterfeitReport{
			ProductID:        product.ProductID,
			Reason:           req.Reason,
			ReporterIdentity: reporterIdentity,
			ProductName:      product.ProductName,
			ManufacturerName: product.ManufacturerName,
		}
		return tx.Create(report).Error
	})
	if err != nil {
		return nil, err
	}

	metrics.CounterfeitReports.Inc()
	s.publish(models.LedgerEventFlagged, &product, reporterIdentity, models.JSONB{
		"reason": req.Reason,
	})
	return report, nil
}

// GetHistory returns the ordered custody sequence for a product. A product
// without events (or an unknown id) yields an empty slice, not an error;
// callers disambiguate with a prior existence check when they need to.
func (s *LedgerService) GetHistory(productID uint) ([]models.CustodyEvent, error) {
	events := []models.CustodyEvent{}
	if err := s.db.Where("product_id = ?", productID).
		Order("timestamp asc").Order("id asc").
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return events, nil
}

func (s *LedgerService) productLock(productID uint) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[productID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[productID] = lock
	}
	return lock
}

func (s *LedgerService) publish(kind string, product *models.Product, actor string, payload models.JSONB) {
	if s.events == nil {
		return
	}
	s.events.Publish(kind, product, actor, payload)
}
