package cache

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/rumahkita/rumahkita-backend/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// UnitCache persists the last-known unit list per property so the assignment
// picker can render instantly while a fresh fetch is in flight. Stale data is
// acceptable; it is always replaced once the authoritative list lands.
//
// The cache is written only by the inquiry service layer. Handlers and other
// components read through that layer and never mutate the cache directly.
type UnitCache interface {
	Get(propertyID uint) ([]models.Unit, bool)
	Put(propertyID uint, units []models.Unit) error
	Invalidate(propertyID uint) error
	Close() error
}

type unitCacheEntry struct {
	PropertyID uint   `gorm:"primaryKey"`
	Payload    []byte `gorm:"not null"`
	UpdatedAt  time.Time
}

func (unitCacheEntry) TableName() string {
	return "unit_cache"
}

type sqliteUnitCache struct {
	db *gorm.DB
}

// NewUnitCache opens (or creates) the cache database at path. Pass ":memory:"
// for an ephemeral cache.
func NewUnitCache(path string) (UnitCache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open unit cache: %w", err)
	}

	if err := db.AutoMigrate(&unitCacheEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate unit cache: %w", err)
	}

	return &sqliteUnitCache{db: db}, nil
}

// Get returns the cached unit list for a property. A corrupt or missing entry
// is reported as a miss, never as an error; the caller falls back to a fetch.
func (c *sqliteUnitCache) Get(propertyID uint) ([]models.Unit, bool) {
	var entry unitCacheEntry
	if err := c.db.First(&entry, "property_id = ?", propertyID).Error; err != nil {
		return nil, false
	}

	var units []models.Unit
	if err := json.Unmarshal(entry.Payload, &units); err != nil {
		slog.Warn("Discarding corrupt unit cache entry",
			"property_id", propertyID,
			"error", err)
		c.db.Delete(&unitCacheEntry{}, "property_id = ?", propertyID)
		return nil, false
	}

	return units, true
}

// Put replaces the cached unit list for a property.
func (c *sqliteUnitCache) Put(propertyID uint, units []models.Unit) error {
	payload, err := json.Marshal(units)
	if err != nil {
		return fmt.Errorf("failed to encode unit list: %w", err)
	}

	entry := unitCacheEntry{
		PropertyID: propertyID,
		Payload:    payload,
		UpdatedAt:  time.Now(),
	}

	if err := c.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write unit cache entry: %w", err)
	}

	return nil
}

// Invalidate drops the cached entry for a property, e.g. after an assignment
// changes unit occupancy.
func (c *sqliteUnitCache) Invalidate(propertyID uint) error {
	if err := c.db.Delete(&unitCacheEntry{}, "property_id = ?", propertyID).Error; err != nil {
		return fmt.Errorf("failed to invalidate unit cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying database file.
func (c *sqliteUnitCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
