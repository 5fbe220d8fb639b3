package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ProductDTO is the transport shape for product rows. Catalog and collection
// titles are populated when the row was loaded with its associations.
type ProductDTO struct {
	ID              uuid.UUID       `json:"id"`
	CatalogID       *uuid.UUID      `json:"catalog_id,omitempty"`
	CatalogTitle    string          `json:"catalog_title,omitempty"`
	CollectionID    *uuid.UUID      `json:"collection_id,omitempty"`
	CollectionTitle *string         `json:"collection_title,omitempty"`
	Title           string          `json:"title"`
	Description     *string         `json:"description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	CountAvailable  int             `json:"count_available"`
	ImagePath       *string         `json:"image_path,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CreateProductInput carries the fields accepted when creating a product.
// Price arrives as a string so clients never round it through a float.
type CreateProductInput struct {
	CatalogID      *uuid.UUID `json:"catalog_id,omitempty"`
	CollectionID   *uuid.UUID `json:"collection_id,omitempty"`
	Title          string     `json:"title" validate:"required"`
	Description    *string    `json:"description,omitempty"`
	Price          string     `json:"price" validate:"required"`
	CountAvailable int        `json:"count_available" validate:"gte=0"`
	ImagePath      *string    `json:"image_path,omitempty"`
}

// UpdateProductInput carries the partial update fields for a product. The
// Clear flags distinguish "leave alone" from "unlink".
type UpdateProductInput struct {
	CatalogID       *uuid.UUID `json:"catalog_id,omitempty"`
	ClearCatalog    bool       `json:"clear_catalog,omitempty"`
	CollectionID    *uuid.UUID `json:"collection_id,omitempty"`
	ClearCollection bool       `json:"clear_collection,omitempty"`
	Title           *string    `json:"title,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Price           *string    `json:"price,omitempty"`
	CountAvailable  *int       `json:"count_available,omitempty" validate:"omitempty,gte=0"`
	ImagePath       *string    `json:"image_path,omitempty"`
}

// ListFilters narrows a catalog browse to the selected collections.
type ListFilters struct {
	CollectionIDs []uuid.UUID
}

func fromModel(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	dto := &ProductDTO{
		ID:             m.ID,
		CatalogID:      m.CatalogID,
		CollectionID:   m.CollectionID,
		Title:          m.Title,
		Description:    m.Description,
		Price:          m.Price,
		CountAvailable: m.CountAvailable,
		ImagePath:      m.ImagePath,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Catalog != nil {
		dto.CatalogTitle = m.Catalog.Title
	}
	if m.Collection != nil {
		title := m.Collection.Title
		dto.CollectionTitle = &title
	}
	return dto
}
