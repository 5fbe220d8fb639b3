package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a purchasable listing. Both links are optional so a
// listing can exist outside any catalog or collection.
type Product struct {
	ID             uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CatalogID      *uuid.UUID      `gorm:"column:catalog_id;type:uuid;index"`
	CollectionID   *uuid.UUID      `gorm:"column:collection_id;type:uuid;index"`
	Title          string          `gorm:"column:title;not null"`
	Description    *string         `gorm:"column:description"`
	Price          decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CountAvailable int             `gorm:"column:count_available;not null;default:0"`
	ImagePath      *string         `gorm:"column:image_path"`
	Catalog        *Catalog        `gorm:"foreignKey:CatalogID;constraint:OnDelete:CASCADE"`
	Collection     *Collection     `gorm:"foreignKey:CollectionID;constraint:OnDelete:SET NULL"`
	CreatedAt      time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
