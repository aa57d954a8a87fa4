// internal/services/event_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/veritrace/veritrace-backend/internal/config"
	"github.com/veritrace/veritrace-backend/internal/models"
)

// EventService is the explicit change-notification contract of the ledger.
// Every mutation appends a LedgerEvent row, which consumers poll with an
// after_id cursor; when Redis is configured the event is additionally
// published to a channel for cross-instance fan-out. Redis publishing is
// best effort and never fails the originating operation.
type EventService struct {
	db      *gorm.DB
	rdb     *redis.Client
	channel string
}

func NewEventService(db *gorm.DB, cfg *config.Config) *EventService {
	s := &EventService{
		db:      db,
		channel: cfg.Redis.Channel,
	}

	if cfg.Redis.Addr != "" {
		s.rdb = redis.NewClient(&redis.Options{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: 5 * time.Second,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("Redis unreachable, ledger events will only be persisted")
			_ = s.rdb.Close()
			s.rdb = nil
		}
	}

	return s
}

func (s *EventService) Publish(kind string, product *models.Product, actor string, payload models.JSONB) {
	event := &models.LedgerEvent{
		EventKind: kind,
		Actor:     actor,
		Payload:   payload,
	}
	if product != nil {
		event.ProductID = product.ProductID
		event.Identifier = product.Identifier
	}

	if err := s.db.Create(event).Error; err != nil {
		logrus.WithError(err).WithField("event_kind", kind).Error("Failed to persist ledger event")
		return
	}

	if s.rdb == nil {
		return
	}

	raw, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Warn("Failed to marshal ledger event for redis")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.rdb.Publish(ctx, s.channel, raw).Err(); err != nil {
		logrus.WithError(err).WithField("channel", s.channel).Warn("Failed to publish ledger event to redis")
	}
}

// List returns up to limit events with id greater than afterID, oldest
// first. This is the polling side of the notification contract.
func (s *EventService) List(afterID uint, limit int) ([]models.LedgerEvent, error) {
	if limit < 1 || limit > 500 {
		limit = 100
	}

	events := []models.LedgerEvent{}
	if err := s.db.Where("id > ?", afterID).
		Order("id asc").Limit(limit).
		Find(&events).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return events, nil
}

func (s *EventService) Close() error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}
