package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// Vendor is the supplier aggregate. Purchase orders may only be created
// against active vendors.
type Vendor struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(200);not null;index"`
	ContactName string `gorm:"type:varchar(100)"`
	Email       string `gorm:"type:varchar(200)"`
	Phone       string `gorm:"type:varchar(50)"`
	Address     string `gorm:"type:varchar(500)"`
	IsActive    bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Vendor) TableName() string {
	return "vendors"
}

// NewVendor creates a new active vendor
func NewVendor(name string) (*Vendor, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_VENDOR_NAME", "Vendor name cannot be empty")
	}
	return &Vendor{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		IsActive:          true,
	}, nil
}

// Deactivate marks the vendor inactive
func (v *Vendor) Deactivate() {
	v.IsActive = false
	v.IncrementVersion()
}

// Activate marks the vendor active
func (v *Vendor) Activate() {
	v.IsActive = true
	v.IncrementVersion()
}

// Repository is the persistence port for vendors.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Vendor, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*Vendor, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]*Vendor, int64, error)
	Save(ctx context.Context, vendor *Vendor) error
}
