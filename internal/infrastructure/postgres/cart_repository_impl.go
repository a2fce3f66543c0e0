package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppfood/api/internal/domain/entity"
	"github.com/ppfood/api/internal/domain/repository"
)

type CartRepository struct {
	pool *pgxpool.Pool
}

func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

func (r *CartRepository) GetByUserID(ctx context.Context, userID int64) (*entity.Cart, error) {
	c := &entity.Cart{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, created_at, updated_at FROM carts WHERE user_id = $1
	`, userID).Scan(&c.ID, &c.UserID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "cart not found")
	}

	items, err := r.listItems(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Items = items
	return c, nil
}

func (r *CartRepository) Create(ctx context.Context, userID int64) (*entity.Cart, error) {
	c := &entity.Cart{UserID: userID, Items: []entity.CartItem{}}
	err := r.pool.QueryRow(ctx, `
		INSERT INTO carts (user_id) VALUES ($1)
		RETURNING id, created_at, updated_at
	`, userID).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "cart not found")
	}
	return c, nil
}

func (r *CartRepository) listItems(ctx context.Context, cartID int64) ([]entity.CartItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, cart_id, product_id, quantity, selected_options, created_at, updated_at
		FROM cart_items WHERE cart_id = $1
		ORDER BY id ASC
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []entity.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func scanCartItem(row pgx.Row) (*entity.CartItem, error) {
	item := &entity.CartItem{}
	var rawOptions []byte
	if err := row.Scan(&item.ID, &item.CartID, &item.ProductID, &item.Quantity,
		&rawOptions, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	opts, err := entity.DecodeOptions(rawOptions)
	if err != nil {
		return nil, err
	}
	item.SelectedOptions = opts
	return item, nil
}

func (r *CartRepository) GetItem(ctx context.Context, cartID, itemID int64) (*entity.CartItem, error) {
	item, err := scanCartItem(r.pool.QueryRow(ctx, `
		SELECT id, cart_id, product_id, quantity, selected_options, created_at, updated_at
		FROM cart_items WHERE id = $1 AND cart_id = $2
	`, itemID, cartID))
	if err != nil {
		return nil, mapErr(err, "item not found in cart")
	}
	return item, nil
}

func (r *CartRepository) CreateItem(ctx context.Context, item *entity.CartItem) error {
	raw, err := entity.EncodeOptions(item.SelectedOptions)
	if err != nil {
		return err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO cart_items (cart_id, product_id, quantity, selected_options)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, item.CartID, item.ProductID, item.Quantity, raw)
	return row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
}

func (r *CartRepository) UpdateItemQuantity(ctx context.Context, itemID int64, quantity int) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $1, updated_at = now() WHERE id = $2
	`, quantity, itemID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "item not found in cart")
	}
	return nil
}

func (r *CartRepository) UpdateItem(ctx context.Context, itemID int64, quantity int, options []entity.ItemOption) error {
	raw, err := entity.EncodeOptions(options)
	if err != nil {
		return err
	}
	res, err := r.pool.Exec(ctx, `
		UPDATE cart_items SET quantity = $1, selected_options = $2, updated_at = now()
		WHERE id = $3
	`, quantity, raw, itemID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "item not found in cart")
	}
	return nil
}

func (r *CartRepository) DeleteItem(ctx context.Context, cartID, itemID int64) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM cart_items WHERE id = $1 AND cart_id = $2
	`, itemID, cartID)
	return err
}

func (r *CartRepository) ClearItems(ctx context.Context, cartID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	return err
}

var _ repository.CartRepository = (*CartRepository)(nil)
