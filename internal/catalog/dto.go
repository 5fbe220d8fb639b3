package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// CatalogDTO is the transport shape for catalog rows.
type CatalogDTO struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	ImagePath   *string   `json:"image_path,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CollectionDTO is the transport shape for collection rows.
type CollectionDTO struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateCatalogInput carries the fields accepted when creating a catalog.
type CreateCatalogInput struct {
	Title       string  `json:"title" validate:"required"`
	Description *string `json:"description,omitempty"`
	ImagePath   *string `json:"image_path,omitempty"`
}

// UpdateCatalogInput carries the partial update fields for a catalog.
type UpdateCatalogInput struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	ImagePath   *string `json:"image_path,omitempty"`
}

// CreateCollectionInput carries the fields accepted when creating a collection.
type CreateCollectionInput struct {
	Title string `json:"title" validate:"required"`
}

// UpdateCollectionInput carries the partial update fields for a collection.
type UpdateCollectionInput struct {
	Title *string `json:"title,omitempty"`
}

func catalogFromModel(m *models.Catalog) *CatalogDTO {
	if m == nil {
		return nil
	}
	return &CatalogDTO{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		ImagePath:   m.ImagePath,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func collectionFromModel(m *models.Collection) *CollectionDTO {
	if m == nil {
		return nil
	}
	return &CollectionDTO{
		ID:        m.ID,
		Title:     m.Title,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
