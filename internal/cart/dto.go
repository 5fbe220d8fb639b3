package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/pkg/db/models"
)

// ItemDTO is one cart line joined with its product.
type ItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
	ImagePath *string         `json:"image_path,omitempty"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartDTO is the full cart view returned to the client.
type CartDTO struct {
	Items    []ItemDTO       `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// AddItemRequest is the body for adding a product to the cart.
type AddItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

// UpdateItemRequest is the body for replacing a line's quantity.
type UpdateItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func itemFromModel(m *models.CartItem) ItemDTO {
	item := ItemDTO{
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		AddedAt:   m.CreatedAt,
	}
	if m.Product != nil {
		item.Title = m.Product.Title
		item.UnitPrice = m.Product.Price
		item.ImagePath = m.Product.ImagePath
		item.LineTotal = m.Product.Price.Mul(decimal.NewFromInt(int64(m.Quantity)))
	}
	return item
}
