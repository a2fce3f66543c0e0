package repository

import (
	"context"

	"github.com/ppfood/api/internal/domain/entity"
)

// CartRepository persists carts and their line items. Items come back ordered
// by id so display order is stable.
type CartRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*entity.Cart, error)
	Create(ctx context.Context, userID int64) (*entity.Cart, error)

	GetItem(ctx context.Context, cartID, itemID int64) (*entity.CartItem, error)
	CreateItem(ctx context.Context, item *entity.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error
	UpdateItem(ctx context.Context, itemID int64, quantity int, options []entity.ItemOption) error

	// DeleteItem is a silent no-op when the item does not belong to the cart.
	DeleteItem(ctx context.Context, cartID, itemID int64) error
	ClearItems(ctx context.Context, cartID int64) error
}
