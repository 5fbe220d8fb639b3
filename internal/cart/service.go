package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service exposes the per-user cart operations.
type Service interface {
	AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error)
	BuyNow(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateItemRequest) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type service struct {
	client   *db.Client
	repo     *Repository
	products *products.Repository
}

// ServiceParams bundles the service dependencies.
type ServiceParams struct {
	Client *db.Client
}

// NewService constructs the cart service.
func NewService(params ServiceParams) (Service, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("db client is required")
	}
	return &service{
		client:   params.Client,
		repo:     NewRepository(params.Client.DB()),
		products: products.NewRepository(params.Client.DB()),
	}, nil
}

// AddItem merges the requested quantity into the user's cart. Adding the same
// product twice accumulates quantity on a single line.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if err := s.checkProduct(ctx, req.ProductID); err != nil {
		return nil, err
	}
	if err := s.repo.Upsert(ctx, userID, req.ProductID, req.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "add cart item")
	}
	return s.Get(ctx, userID)
}

// BuyNow is the single-click storefront add, one unit of the product.
func (s *service) BuyNow(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	return s.AddItem(ctx, userID, AddItemRequest{ProductID: productID, Quantity: 1})
}

// UpdateItem replaces the line quantity. Updating a product that is not in
// the cart leaves the cart unchanged.
func (s *service) UpdateItem(ctx context.Context, userID, productID uuid.UUID, req UpdateItemRequest) (*CartDTO, error) {
	if req.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if _, err := s.repo.SetQuantity(ctx, userID, productID, req.Quantity); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return s.Get(ctx, userID)
}

// RemoveItem deletes the line if present; removing an absent product is a
// no-op.
func (s *service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartDTO, error) {
	if err := s.repo.Remove(ctx, userID, productID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "remove cart item")
	}
	return s.Get(ctx, userID)
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return nil
}

func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	rows, err := s.repo.Items(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}

	cart := &CartDTO{
		Items:    make([]ItemDTO, 0, len(rows)),
		Subtotal: decimal.Zero,
	}
	for i := range rows {
		item := itemFromModel(&rows[i])
		cart.Items = append(cart.Items, item)
		cart.Subtotal = cart.Subtotal.Add(item.LineTotal)
	}
	return cart, nil
}

func (s *service) checkProduct(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check product")
	}
	return nil
}
