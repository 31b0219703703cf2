package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/rumahkita/rumahkita-backend/internal/models"
	"gorm.io/gorm"
)

// PropertyRepository defines the interface for property and unit data access
type PropertyRepository interface {
	Create(ctx context.Context, property *models.Property) error
	GetByID(ctx context.Context, id uint) (*models.Property, error)
	ListByManager(ctx context.Context, managerID uint) ([]models.Property, error)
	ListUnits(ctx context.Context, propertyID uint) ([]models.Unit, error)
	AssignUnit(ctx context.Context, unitID, tenantID uint) error
}

// propertyRepository implements PropertyRepository using GORM
type propertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new PropertyRepository instance
func NewPropertyRepository(db *gorm.DB) PropertyRepository {
	return &propertyRepository{db: db}
}

// Create creates a new property
func (r *propertyRepository) Create(ctx context.Context, property *models.Property) error {
	result := r.db.WithContext(ctx).Create(property)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrDuplicateEntry
		}
		return fmt.Errorf("failed to create property: %w", result.Error)
	}
	return nil
}

// GetByID retrieves a property with its units
func (r *propertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	result := r.db.WithContext(ctx).Preload("Units").First(&property, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get property by ID: %w", result.Error)
	}
	return &property, nil
}

// ListByManager retrieves all properties a manager runs
func (r *propertyRepository) ListByManager(ctx context.Context, managerID uint) ([]models.Property, error) {
	var properties []models.Property
	result := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("name ASC").
		Find(&properties)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list properties: %w", result.Error)
	}
	return properties, nil
}

// ListUnits retrieves the units of a property
func (r *propertyRepository) ListUnits(ctx context.Context, propertyID uint) ([]models.Unit, error) {
	var units []models.Unit
	result := r.db.WithContext(ctx).
		Where("property_id = ?", propertyID).
		Order("label ASC").
		Find(&units)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list units: %w", result.Error)
	}
	return units, nil
}

// AssignUnit marks a unit as occupied by a tenant. Fails if the unit is
// already occupied by someone else.
func (r *propertyRepository) AssignUnit(ctx context.Context, unitID, tenantID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var unit models.Unit
		if err := tx.First(&unit, unitID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load unit: %w", err)
		}

		if unit.IsOccupied && (unit.TenantID == nil || *unit.TenantID != tenantID) {
			return ErrInvalidInput
		}

		updates := map[string]interface{}{
			"is_occupied": true,
			"tenant_id":   tenantID,
		}
		if err := tx.Model(&unit).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to assign unit: %w", err)
		}
		return nil
	})
}
