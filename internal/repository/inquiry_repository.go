package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rumahkita/rumahkita-backend/internal/models"
	"github.com/rumahkita/rumahkita-backend/internal/thread"
	"gorm.io/gorm"
)

// InquiryRepository defines the interface for inquiry data access
type InquiryRepository interface {
	Create(ctx context.Context, inquiry *models.Inquiry) error
	GetByID(ctx context.Context, id uint) (*models.Inquiry, error)
	ListByManager(ctx context.Context, managerID uint) ([]models.Inquiry, error)
	ListItemsByManager(ctx context.Context, managerID uint, limit, offset int) ([]models.InquiryListItem, int64, error)
	AppendMessage(ctx context.Context, message *models.Message) error
	AppendLegacyText(ctx context.Context, inquiryID uint, text string, at time.Time) error
	UpdateStatus(ctx context.Context, id uint, status models.InquiryStatus) error
	FindByTenantAndProperty(ctx context.Context, tenantID, propertyID uint) (*models.Inquiry, error)
}

// inquiryRepository implements InquiryRepository using GORM
type inquiryRepository struct {
	db *gorm.DB
}

// NewInquiryRepository creates a new InquiryRepository instance
func NewInquiryRepository(db *gorm.DB) InquiryRepository {
	return &inquiryRepository{db: db}
}

// Create creates a new inquiry
func (r *inquiryRepository) Create(ctx context.Context, inquiry *models.Inquiry) error {
	result := r.db.WithContext(ctx).Create(inquiry)
	if result.Error != nil {
		return fmt.Errorf("failed to create inquiry: %w", result.Error)
	}
	return nil
}

// GetByID retrieves an inquiry with its structured messages in stored order.
// Messages are ordered ascending by creation time; legacy-only inquiries come
// back with an empty message list and their blob intact.
func (r *inquiryRepository) GetByID(ctx context.Context, id uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	result := r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("messages.created_at ASC, messages.id ASC")
		}).
		First(&inquiry, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inquiry by ID: %w", result.Error)
	}
	return &inquiry, nil
}

// ListByManager retrieves all inquiries addressed to a manager, most recently
// touched first. The backend may hold several historical rows per listing;
// callers dedupe with thread.DeduplicateByListing for the manager view.
func (r *inquiryRepository) ListByManager(ctx context.Context, managerID uint) ([]models.Inquiry, error) {
	var inquiries []models.Inquiry
	result := r.db.WithContext(ctx).
		Where("manager_id = ?", managerID).
		Order("updated_at DESC, id DESC").
		Find(&inquiries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list inquiries: %w", result.Error)
	}
	return inquiries, nil
}

// ListItemsByManager retrieves lightweight list rows with pagination and a
// message count per inquiry
func (r *inquiryRepository) ListItemsByManager(ctx context.Context, managerID uint, limit, offset int) ([]models.InquiryListItem, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("manager_id = ?", managerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count inquiries: %w", err)
	}

	var results []models.InquiryListItem

	query := `
		SELECT
			i.id,
			i.property_id,
			i.unit_id,
			i.tenant_id,
			i.status,
			i.updated_at,
			COALESCE((SELECT COUNT(*) FROM messages m WHERE m.inquiry_id = i.id), 0) as message_count
		FROM inquiries i
		WHERE i.manager_id = ?
		ORDER BY i.updated_at DESC
		LIMIT ? OFFSET ?
	`

	if err := r.db.WithContext(ctx).Raw(query, managerID, limit, offset).Scan(&results).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list inquiries: %w", err)
	}

	return results, total, nil
}

// AppendMessage stores a message and bumps the owning inquiry's updated_at
// in one transaction
func (r *inquiryRepository) AppendMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inquiry models.Inquiry
		if err := tx.First(&inquiry, message.InquiryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load inquiry: %w", err)
		}

		if err := tx.Create(message).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}

		if err := tx.Model(&inquiry).Update("updated_at", message.CreatedAt).Error; err != nil {
			return fmt.Errorf("failed to touch inquiry: %w", err)
		}
		return nil
	})
}

// AppendLegacyText appends a marker-delimited entry to an inquiry's legacy
// blob. Mail intake uses this path, which is why legacy blobs remain a live
// storage shape and are never migrated.
func (r *inquiryRepository) AppendLegacyText(ctx context.Context, inquiryID uint, text string, at time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inquiry models.Inquiry
		if err := tx.First(&inquiry, inquiryID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load inquiry: %w", err)
		}

		blob := inquiry.LegacyBody + thread.LegacyMarker(at) + text
		updates := map[string]interface{}{
			"legacy_body": blob,
			"updated_at":  at,
		}
		if err := tx.Model(&inquiry).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to append legacy text: %w", err)
		}
		return nil
	})
}

// UpdateStatus moves an inquiry to a new lifecycle status
func (r *inquiryRepository) UpdateStatus(ctx context.Context, id uint, status models.InquiryStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Inquiry{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update inquiry status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByTenantAndProperty finds the newest inquiry a tenant opened against a
// property, used to route mail intake to its thread
func (r *inquiryRepository) FindByTenantAndProperty(ctx context.Context, tenantID, propertyID uint) (*models.Inquiry, error) {
	var inquiry models.Inquiry
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND property_id = ?", tenantID, propertyID).
		Order("created_at DESC").
		First(&inquiry)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find inquiry: %w", result.Error)
	}
	return &inquiry, nil
}
