package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/domain/entity"
	repo "github.com/ppfood/api/internal/domain/repository"
	"github.com/ppfood/api/pkg/apperr"
)

// CartService owns the one-cart-per-user model. Line items with the same
// product and a semantically equal option set merge instead of duplicating.
type CartService struct {
	Carts    repo.CartRepository
	Products repo.ProductRepository
	Logger   *logrus.Logger
}

// GetCart returns the user's cart, creating an empty one on first access.
// Items carry full product detail, ordered by insertion.
func (s *CartService) GetCart(ctx context.Context, userID int64) (*entity.Cart, error) {
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.attachProducts(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *CartService) getOrCreate(ctx context.Context, userID int64) (*entity.Cart, error) {
	cart, err := s.Carts.GetByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}
	return s.Carts.Create(ctx, userID)
}

func (s *CartService) attachProducts(ctx context.Context, cart *entity.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.Products.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range cart.Items {
		cart.Items[i].Product = products[cart.Items[i].ProductID]
	}
	return nil
}

// AddItem puts a product configuration in the cart. If an existing line has
// the same product and an equal option set the quantities are summed;
// otherwise a new line is appended.
func (s *CartService) AddItem(ctx context.Context, userID, productID int64, quantity int, options []entity.ItemOption) (*entity.Cart, error) {
	if quantity <= 0 {
		return nil, apperr.BadRequest("quantity must be greater than zero")
	}
	if _, err := s.Products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	cart, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, it := range cart.Items {
		if it.ProductID == productID && entity.OptionsEqual(it.SelectedOptions, options) {
			if err := s.Carts.UpdateItemQuantity(ctx, it.ID, it.Quantity+quantity); err != nil {
				return nil, err
			}
			return s.GetCart(ctx, userID)
		}
	}

	item := &entity.CartItem{
		CartID:          cart.ID,
		ProductID:       productID,
		Quantity:        quantity,
		SelectedOptions: options,
	}
	if err := s.Carts.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// UpdateItem changes a line's quantity and, when options is non-nil, replaces
// its option set outright. A quantity of zero or less removes the line.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID int64, quantity int, options *[]entity.ItemOption) (*entity.Cart, error) {
	cart, err := s.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	item, err := s.Carts.GetItem(ctx, cart.ID, itemID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.Carts.DeleteItem(ctx, cart.ID, item.ID); err != nil {
			return nil, err
		}
		return s.GetCart(ctx, userID)
	}

	if options != nil {
		err = s.Carts.UpdateItem(ctx, item.ID, quantity, *options)
	} else {
		err = s.Carts.UpdateItemQuantity(ctx, item.ID, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a line. An item id not in the cart is a silent no-op;
// a user without a cart is NotFound.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID int64) (*entity.Cart, error) {
	cart, err := s.Carts.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Carts.DeleteItem(ctx, cart.ID, itemID); err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

// ClearCart removes every line. A user with no cart has nothing to clear.
func (s *CartService) ClearCart(ctx context.Context, userID int64) error {
	cart, err := s.Carts.GetByUserID(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return err
	}
	return s.Carts.ClearItems(ctx, cart.ID)
}
