package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes product reads plus the admin mutations.
type Service interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListByCatalog(ctx context.Context, catalogID uuid.UUID, filters ListFilters) ([]ProductDTO, error)

	ListPage(ctx context.Context, params pagination.Params) (*Page, error)
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Page is a cursor-paginated slice of products.
type Page struct {
	Items      []ProductDTO `json:"items"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type service struct {
	client   *db.Client
	repo     *Repository
	catalogs *catalog.Repository
}

// ServiceParams bundles the service dependencies.
type ServiceParams struct {
	Client *db.Client
}

// NewService constructs the product service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &service{
		client:   params.Client,
		repo:     NewRepository(params.Client.DB()),
		catalogs: catalog.NewRepository(params.Client.DB()),
	}, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find product")
	}
	return fromModel(row), nil
}

// ListByCatalog returns the catalog's products. A missing catalog is a not
// found error rather than an empty list.
func (s *service) ListByCatalog(ctx context.Context, catalogID uuid.UUID, filters ListFilters) ([]ProductDTO, error) {
	if _, err := s.catalogs.FindCatalogByID(ctx, catalogID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "catalog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find catalog")
	}

	rows, err := s.repo.ListByCatalog(ctx, catalogID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	out := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) ListPage(ctx context.Context, params pagination.Params) (*Page, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	rows, err := s.repo.ListPage(ctx, cursor, pagination.LimitWithBuffer(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products page")
	}

	page := &Page{Items: make([]ProductDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for i := range rows {
		page.Items = append(page.Items, *fromModel(&rows[i]))
	}
	return page, nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	price, err := parsePrice(input.Price)
	if err != nil {
		return nil, err
	}
	if input.CountAvailable < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "count_available cannot be negative")
	}
	if err := s.checkCatalog(ctx, input.CatalogID); err != nil {
		return nil, err
	}
	if err := s.checkCollection(ctx, input.CollectionID); err != nil {
		return nil, err
	}

	row := &models.Product{
		CatalogID:      input.CatalogID,
		CollectionID:   input.CollectionID,
		Title:          title,
		Description:    input.Description,
		Price:          price,
		CountAvailable: input.CountAvailable,
		ImagePath:      input.ImagePath,
	}
	created, err := s.repo.Create(ctx, row)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create product")
	}
	return s.GetProduct(ctx, created.ID)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find product")
	}

	switch {
	case input.ClearCatalog:
		row.CatalogID = nil
	case input.CatalogID != nil:
		if err := s.checkCatalog(ctx, input.CatalogID); err != nil {
			return nil, err
		}
		row.CatalogID = input.CatalogID
	}
	switch {
	case input.ClearCollection:
		row.CollectionID = nil
	case input.CollectionID != nil:
		if err := s.checkCollection(ctx, input.CollectionID); err != nil {
			return nil, err
		}
		row.CollectionID = input.CollectionID
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
	if input.Price != nil {
		price, err := parsePrice(*input.Price)
		if err != nil {
			return nil, err
		}
		row.Price = price
	}
	if input.CountAvailable != nil {
		if *input.CountAvailable < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "count_available cannot be negative")
		}
		row.CountAvailable = *input.CountAvailable
	}
	if input.ImagePath != nil {
		row.ImagePath = input.ImagePath
	}

	if _, err := s.repo.Update(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update product")
	}
	return s.GetProduct(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find product")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete product")
	}
	return nil
}

func (s *service) checkCatalog(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.catalogs.FindCatalogByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "catalog does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check catalog")
	}
	return nil
}

func (s *service) checkCollection(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	if _, err := s.catalogs.FindCollectionByID(ctx, *id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "collection does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check collection")
	}
	return nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be a decimal number")
	}
	if price.IsNegative() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price cannot be negative")
	}
	return price.Round(2), nil
}
