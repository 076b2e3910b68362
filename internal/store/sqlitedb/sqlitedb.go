package sqlitedb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Ashmit111/secure-scan/internal/domain"
	"github.com/Ashmit111/secure-scan/internal/store"
)

var _ store.StatusStore = (*Store)(nil)

// Store is the embedded single-file backend for deployments without a
// postgres instance.
type Store struct {
	db *gorm.DB
}

type websiteRow struct {
	URL          string `gorm:"primaryKey"`
	OwnerContact string
	Status       string
	ResponseTime string
	LastChecked  time.Time
}

func (websiteRow) TableName() string { return "websites" }

type logRow struct {
	ID             uint   `gorm:"primaryKey"`
	URL            string `gorm:"index:idx_logs_url_ts"`
	TS             time.Time
	Status         string
	ResponseTimeMS int64
	Reached        bool
}

func (logRow) TableName() string { return "website_logs" }

func New(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if err := db.AutoMigrate(&websiteRow{}, &logRow{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, url string) (*domain.Website, error) {
	var row websiteRow
	err := s.db.WithContext(ctx).First(&row, "url = ?", url).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get website: %w", err)
	}
	return toWebsite(row), nil
}

// Upsert wraps the field update and the log append in one gorm transaction;
// sqlite's single-writer lock serializes concurrent cycles for the same URL.
func (s *Store) Upsert(ctx context.Context, url, ownerContact string, status domain.Status, responseTime string, entry domain.LogEntry) (*domain.Website, error) {
	var row websiteRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		assign := map[string]any{
			"status":        string(status),
			"response_time": responseTime,
			"last_checked":  now,
		}
		if ownerContact != "" {
			assign["owner_contact"] = ownerContact
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "url"}},
			DoUpdates: clause.Assignments(assign),
		}).Create(&websiteRow{
			URL:          url,
			OwnerContact: ownerContact,
			Status:       string(status),
			ResponseTime: responseTime,
			LastChecked:  now,
		}).Error; err != nil {
			return fmt.Errorf("upsert website: %w", err)
		}

		if err := tx.Create(&logRow{
			URL:            url,
			TS:             entry.Timestamp,
			Status:         string(entry.Status),
			ResponseTimeMS: entry.ResponseTime.Milliseconds(),
			Reached:        entry.Reached,
		}).Error; err != nil {
			return fmt.Errorf("append log: %w", err)
		}

		return tx.First(&row, "url = ?", url).Error
	})
	if err != nil {
		return nil, err
	}
	return toWebsite(row), nil
}

func (s *Store) List(ctx context.Context) ([]*domain.Website, error) {
	var rows []websiteRow
	if err := s.db.WithContext(ctx).
		Order("last_checked DESC, url").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list websites: %w", err)
	}
	out := make([]*domain.Website, 0, len(rows))
	for _, r := range rows {
		out = append(out, toWebsite(r))
	}
	return out, nil
}

func (s *Store) History(ctx context.Context, url string, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	if _, err := s.Get(ctx, url); err != nil {
		return nil, err
	}

	var rows []logRow
	if err := s.db.WithContext(ctx).
		Where("url = ?", url).
		Order("ts DESC, id DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}

	// newest-first from the query, callers expect oldest-first
	out := make([]domain.LogEntry, len(rows))
	for i, r := range rows {
		out[len(out)-1-i] = domain.LogEntry{
			Timestamp:    r.TS,
			Status:       domain.Status(r.Status),
			ResponseTime: time.Duration(r.ResponseTimeMS) * time.Millisecond,
			Reached:      r.Reached,
		}
	}
	return out, nil
}

func toWebsite(r websiteRow) *domain.Website {
	return &domain.Website{
		URL:          r.URL,
		OwnerContact: r.OwnerContact,
		Status:       domain.Status(r.Status),
		ResponseTime: r.ResponseTime,
		LastChecked:  r.LastChecked,
	}
}
