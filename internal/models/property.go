package models

import (
	"time"
)

// Property represents a rental listing managed through the portal
type Property struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ManagerID uint      `gorm:"not null;index" json:"manager_id"`
	Name      string    `gorm:"not null;size:255" json:"name"`
	Address   string    `gorm:"size:500" json:"address,omitempty"`
	City      string    `gorm:"size:100" json:"city,omitempty"`
	IsActive  bool      `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Units     []Unit    `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"units,omitempty"`
	Inquiries []Inquiry `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Property
func (Property) TableName() string {
	return "properties"
}

// Unit represents a rentable unit within a property
type Unit struct {
	ID         uint    `gorm:"primaryKey" json:"id"`
	PropertyID uint    `gorm:"not null;index" json:"property_id"`
	Label      string  `gorm:"not null;size:100" json:"label"`
	MonthlyFee float64 `json:"monthly_fee,omitempty"`
	IsOccupied bool    `gorm:"default:false" json:"is_occupied"`
	TenantID   *uint   `json:"tenant_id,omitempty"`

	// Relationships
	Property Property `gorm:"foreignKey:PropertyID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName returns the table name for Unit
func (Unit) TableName() string {
	return "units"
}
