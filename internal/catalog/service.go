package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes catalog and collection reads plus the admin mutations.
type Service interface {
	ListCatalogs(ctx context.Context) ([]CatalogDTO, error)
	GetCatalog(ctx context.Context, id uuid.UUID) (*CatalogDTO, error)
	ListCollections(ctx context.Context) ([]CollectionDTO, error)

	ListCatalogsPage(ctx context.Context, params pagination.Params) (*CatalogPage, error)
	CreateCatalog(ctx context.Context, input CreateCatalogInput) (*CatalogDTO, error)
	UpdateCatalog(ctx context.Context, id uuid.UUID, input UpdateCatalogInput) (*CatalogDTO, error)
	DeleteCatalog(ctx context.Context, id uuid.UUID) error

	ListCollectionsPage(ctx context.Context, params pagination.Params) (*CollectionPage, error)
	CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionDTO, error)
	UpdateCollection(ctx context.Context, id uuid.UUID, input UpdateCollectionInput) (*CollectionDTO, error)
	DeleteCollection(ctx context.Context, id uuid.UUID) error
}

// CatalogPage is a cursor-paginated slice of catalogs.
type CatalogPage struct {
	Items      []CatalogDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

// CollectionPage is a cursor-paginated slice of collections.
type CollectionPage struct {
	Items      []CollectionDTO `json:"items"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

type service struct {
	client *db.Client
	repo   *Repository
}

// ServiceParams bundles the service dependencies.
type ServiceParams struct {
	Client *db.Client
}

// NewService constructs the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &service{
		client: params.Client,
		repo:   NewRepository(params.Client.DB()),
	}, nil
}

func (s *service) ListCatalogs(ctx context.Context) ([]CatalogDTO, error) {
	rows, err := s.repo.ListCatalogs(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalogs")
	}
	out := make([]CatalogDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *catalogFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) GetCatalog(ctx context.Context, id uuid.UUID) (*CatalogDTO, error) {
	row, err := s.repo.FindCatalogByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find catalog")
	}
	return catalogFromModel(row), nil
}

func (s *service) ListCollections(ctx context.Context) ([]CollectionDTO, error) {
	rows, err := s.repo.ListCollections(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collections")
	}
	out := make([]CollectionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *collectionFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListCatalogsPage(ctx context.Context, params pagination.Params) (*CatalogPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.ListCatalogsPage(ctx, cursor, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list catalogs page")
	}

	page := &CatalogPage{Items: make([]CatalogDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range rows {
		page.Items = append(page.Items, *catalogFromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) CreateCatalog(ctx context.Context, input CreateCatalogInput) (*CatalogDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	row := &models.Catalog{
		Title:       title,
		Description: input.Description,
		ImagePath:   input.ImagePath,
	}
	created, err := s.repo.CreateCatalog(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create catalog")
	}
	return catalogFromModel(created), nil
}

func (s *service) UpdateCatalog(ctx context.Context, id uuid.UUID, input UpdateCatalogInput) (*CatalogDTO, error) {
	row, err := s.repo.FindCatalogByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find catalog")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		row.Title = title
	}
	if input.Description != nil {
		row.Description = input.Description
	}
	if input.ImagePath != nil {
		row.ImagePath = input.ImagePath
	}

	updated, err := s.repo.UpdateCatalog(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update catalog")
	}
	return catalogFromModel(updated), nil
}

func (s *service) DeleteCatalog(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCatalogByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find catalog")
	}
	if err := s.repo.DeleteCatalog(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete catalog")
	}
	return nil
}

func (s *service) ListCollectionsPage(ctx context.Context, params pagination.Params) (*CollectionPage, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.ListCollectionsPage(ctx, cursor, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list collections page")
	}

	page := &CollectionPage{Items: make([]CollectionDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range rows {
		page.Items = append(page.Items, *collectionFromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) CreateCollection(ctx context.Context, input CreateCollectionInput) (*CollectionDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	created, err := s.repo.CreateCollection(ctx, &models.Collection{Title: title})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create collection")
	}
	return collectionFromModel(created), nil
}

func (s *service) UpdateCollection(ctx context.Context, id uuid.UUID, input UpdateCollectionInput) (*CollectionDTO, error) {
	row, err := s.repo.FindCollectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find collection")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		row.Title = title
	}

	updated, err := s.repo.UpdateCollection(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update collection")
	}
	return collectionFromModel(updated), nil
}

func (s *service) DeleteCollection(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindCollectionByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "collection not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find collection")
	}
	if err := s.repo.DeleteCollection(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete collection")
	}
	return nil
}
