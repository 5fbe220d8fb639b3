package catalog

import (
	"context"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository wires together catalog and collection persistence helpers.
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

// ListCatalogs returns every catalog ordered by title.
func (r *Repository) ListCatalogs(ctx context.Context) ([]models.Catalog, error) {
	var rows []models.Catalog
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListCatalogsPage returns a cursor-paginated page of catalogs, newest first.
func (r *Repository) ListCatalogsPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Catalog, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Catalog{}).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Catalog
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCatalogByID loads a catalog by its UUID.
func (r *Repository) FindCatalogByID(ctx context.Context, id uuid.UUID) (*models.Catalog, error) {
	var row models.Catalog
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateCatalog inserts a new catalog row.
func (r *Repository) CreateCatalog(ctx context.Context, row *models.Catalog) (*models.Catalog, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// UpdateCatalog persists the provided catalog fields.
func (r *Repository) UpdateCatalog(ctx context.Context, row *models.Catalog) (*models.Catalog, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteCatalog removes the catalog row; products cascade.
func (r *Repository) DeleteCatalog(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Catalog{}, "id = ?", id).Error
}

// ListCollections returns every collection ordered by title.
func (r *Repository) ListCollections(ctx context.Context) ([]models.Collection, error) {
	var rows []models.Collection
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListCollectionsPage returns a cursor-paginated page of collections, newest first.
func (r *Repository) ListCollectionsPage(ctx context.Context, cursor *pagination.Cursor, limit int) ([]models.Collection, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Collection{}).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}
	var rows []models.Collection
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindCollectionByID loads a collection by its UUID.
func (r *Repository) FindCollectionByID(ctx context.Context, id uuid.UUID) (*models.Collection, error) {
	var row models.Collection
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateCollection inserts a new collection row.
func (r *Repository) CreateCollection(ctx context.Context, row *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// UpdateCollection persists the provided collection fields.
func (r *Repository) UpdateCollection(ctx context.Context, row *models.Collection) (*models.Collection, error) {
	if err := r.db.WithContext(ctx).Save(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// DeleteCollection removes the collection row; product links are nulled by
// the foreign key.
func (r *Repository) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Collection{}, "id = ?", id).Error
}
