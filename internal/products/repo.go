package products

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository provides product persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// FindByID loads a product with its catalog and collection.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row models.Product
	err := r.db.WithContext(ctx).
		Preload("Catalog").
		Preload("Collection").
		First(&row, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// ListByCatalog returns the catalog's products ordered by title, optionally
// restricted to the given collections.
func (r *Repository) ListByCatalog(ctx context.Context, catalogID uuid.UUID, filters ListFilters) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Collection").
		Where("catalog_id = ?", catalogID).
		Order("title ASC")
	if len(filters.CollectionIDs) > 0 {
		query = query.Where("collection_id IN ?", filters.CollectionIDs)
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListPage returns a cursor-paginated page of products, newest first.
func (r *Repository) ListPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Product, error) {
	query := r.db.WithContext(ctx).
		Preload("Catalog").
		Preload("Collection").
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Product
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, row *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Update persists the provided product fields. A column map keeps nulled
// collection links from being skipped as zero values.
func (r *Repository) Update(ctx context.Context, row *models.Product) (*models.Product, error) {
	err := r.db.WithContext(ctx).
		Model(row).
		Updates(map[string]any{
			"catalog_id":      row.CatalogID,
			"collection_id":   row.CollectionID,
			"title":           row.Title,
			"description":     row.Description,
			"price":           row.Price,
			"count_available": row.CountAvailable,
			"image_path":      row.ImagePath,
		}).Error
	if err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes the product row; cart references cascade.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id).Error
}
