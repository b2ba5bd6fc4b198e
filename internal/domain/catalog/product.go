package catalog

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecommanager/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrProductMissingSKU  = errors.New("catalog: product SKU is required")
	ErrVariantMissingSKU  = errors.New("catalog: variant SKU is required")
	ErrProductNotFound    = errors.New("catalog: product not found")
	ErrDuplicateSKU       = errors.New("catalog: SKU already exists")
	ErrConflictUnresolved = errors.New("catalog: conflict requires explicit resolution")
)

// Field limits enforced before persistence. Free text longer than these is
// truncated with an ellipsis marker, never written untruncated.
const (
	MaxNameLength        = 255
	MaxDescriptionLength = 2000
	MaxOptionLength      = 100
)

// SyncStatus tracks a product's relationship to its channel counterpart
type SyncStatus string

const (
	// SyncStatusSynced indicates local and channel values agree
	SyncStatusSynced SyncStatus = "SYNCED"
	// SyncStatusLocalOnly indicates the product has no channel counterpart
	SyncStatusLocalOnly SyncStatus = "LOCAL_ONLY"
	// SyncStatusPending indicates a sync has been requested but not run
	SyncStatusPending SyncStatus = "PENDING"
	// SyncStatusConflict flags a price or quantity divergence that needs a
	// human decision; sync never overwrites it silently
	SyncStatusConflict SyncStatus = "CONFLICT"
)

// String returns the string representation of SyncStatus
func (s SyncStatus) String() string {
	return string(s)
}

// ---------------------------------------------------------------------------
// Product aggregate
// ---------------------------------------------------------------------------

// Product is either simple (one implicit variant, SKU = product SKU) or
// variant-bearing (parent SKU synthesized from the external product ID, each
// variant carrying its own SKU).
type Product struct {
	shared.TenantAggregateRoot
	SKU         string `gorm:"type:varchar(64);not null;uniqueIndex:idx_products_tenant_sku,priority:2"`
	Name        string `gorm:"type:varchar(255);not null"`
	Description string `gorm:"type:varchar(2000)"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	HasVariants bool            `gorm:"not null;default:false"`
	// ChannelID and ExternalProductID link a channel-imported product back
	// to its storefront counterpart
	ChannelID         *uuid.UUID `gorm:"type:uuid;index"`
	ExternalProductID string     `gorm:"type:varchar(64);index"`
	SyncStatus        SyncStatus `gorm:"type:varchar(20);not null;default:'LOCAL_ONLY'"`
	DeletedAt         gorm.DeletedAt `gorm:"index"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a simple product
func NewProduct(tenantID uuid.UUID, sku, name string, price decimal.Decimal) (*Product, error) {
	if sku == "" {
		return nil, ErrProductMissingSKU
	}
	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Name:                TruncateText(name, MaxNameLength),
		Price:               price,
		SyncStatus:          SyncStatusLocalOnly,
	}, nil
}

// IsDeleted returns true if the product is soft-deleted
func (p *Product) IsDeleted() bool {
	return p.DeletedAt.Valid
}

// Restore clears the soft-deletion marker. A product that reappears
// upstream is restored in place, never duplicated.
func (p *Product) Restore() {
	p.DeletedAt = gorm.DeletedAt{}
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// MarkSynced records agreement with the channel counterpart
func (p *Product) MarkSynced() {
	p.SyncStatus = SyncStatusSynced
	p.UpdatedAt = time.Now()
}

// MarkConflict flags a detected divergence for human resolution
func (p *Product) MarkConflict() {
	p.SyncStatus = SyncStatusConflict
	p.UpdatedAt = time.Now()
}

// ResolveConflict clears a conflict after an explicit resolution action
func (p *Product) ResolveConflict(keepLocal bool, channelPrice decimal.Decimal) error {
	if p.SyncStatus != SyncStatusConflict {
		return shared.ErrInvalidState
	}
	if !keepLocal {
		p.Price = channelPrice
	}
	p.SyncStatus = SyncStatusSynced
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
	return nil
}

// HasConflict returns true while a divergence awaits resolution
func (p *Product) HasConflict() bool {
	return p.SyncStatus == SyncStatusConflict
}

// ---------------------------------------------------------------------------
// ProductVariant
// ---------------------------------------------------------------------------

// ProductVariant is one purchasable variant of a variant-bearing product
type ProductVariant struct {
	shared.TenantEntity
	ProductID         uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU               string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_variants_tenant_sku,priority:2"`
	Title             string    `gorm:"type:varchar(255)"`
	Option1Name       string    `gorm:"type:varchar(100)"`
	Option1Value      string    `gorm:"type:varchar(100)"`
	Option2Name       string    `gorm:"type:varchar(100)"`
	Option2Value      string    `gorm:"type:varchar(100)"`
	Price             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExternalVariantID string          `gorm:"type:varchar(64);index"`
	DeletedAt         gorm.DeletedAt  `gorm:"index"`
}

// TableName returns the table name for GORM
func (ProductVariant) TableName() string {
	return "product_variants"
}

// NewProductVariant creates a variant under a parent product
func NewProductVariant(tenantID, productID uuid.UUID, sku, title string, price decimal.Decimal) (*ProductVariant, error) {
	if sku == "" {
		return nil, ErrVariantMissingSKU
	}
	return &ProductVariant{
		TenantEntity: shared.NewTenantEntity(tenantID),
		ProductID:    productID,
		SKU:          sku,
		Title:        TruncateText(title, MaxNameLength),
		Price:        price,
	}, nil
}

// IsDeleted returns true if the variant is soft-deleted
func (v *ProductVariant) IsDeleted() bool {
	return v.DeletedAt.Valid
}

// Restore clears the soft-deletion marker
func (v *ProductVariant) Restore() {
	v.DeletedAt = gorm.DeletedAt{}
	v.UpdatedAt = time.Now()
}

// ---------------------------------------------------------------------------
// SKU synthesis
// ---------------------------------------------------------------------------

// SynthesizeParentSKU derives a stable parent SKU from an external product
// ID for variant-bearing products that carry no SKU of their own.
func SynthesizeParentSKU(externalProductID string) string {
	return fmt.Sprintf("CH-P-%s", externalProductID)
}

// SynthesizeVariantSKU derives a variant SKU from an external variant ID
// when the provider supplies none.
func SynthesizeVariantSKU(externalVariantID string) string {
	return fmt.Sprintf("CH-V-%s", externalVariantID)
}
