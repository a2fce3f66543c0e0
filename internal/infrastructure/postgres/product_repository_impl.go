package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppfood/api/internal/domain/entity"
	"github.com/ppfood/api/internal/domain/repository"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `
		INSERT INTO products (category_id, name_th, name_en, description_th, description_en,
			price, is_recommended, is_available)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`, p.CategoryID, p.NameTH, p.NameEN, p.DescriptionTH, p.DescriptionEN,
		p.Price, p.IsRecommended, p.IsAvailable)
	if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return mapErr(err, "product not found")
	}

	for i := range p.Images {
		img := &p.Images[i]
		img.ProductID = p.ID
		if err := tx.QueryRow(ctx, `
			INSERT INTO product_images (product_id, url) VALUES ($1, $2) RETURNING id
		`, p.ID, img.URL).Scan(&img.ID); err != nil {
			return err
		}
	}

	if err := insertOptions(ctx, tx, p.ID, p.Options); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func insertOptions(ctx context.Context, tx pgx.Tx, productID int64, options []entity.ProductOption) error {
	for i := range options {
		opt := &options[i]
		opt.ProductID = productID
		if err := tx.QueryRow(ctx, `
			INSERT INTO product_options (product_id, name_th, name_en, is_required, max_select)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`, productID, opt.NameTH, opt.NameEN, opt.IsRequired, opt.MaxSelect).Scan(&opt.ID); err != nil {
			return err
		}
		for j := range opt.Choices {
			ch := &opt.Choices[j]
			ch.OptionID = opt.ID
			if err := tx.QueryRow(ctx, `
				INSERT INTO product_option_choices (option_id, name_th, name_en, price)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, opt.ID, ch.NameTH, ch.NameEN, ch.Price).Scan(&ch.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

const productColumns = `p.id, p.category_id, p.name_th, p.name_en, p.description_th, p.description_en,
		p.price, p.is_recommended, p.is_available, p.created_at, p.updated_at,
		c.id, c.name_th, c.name_en, c.created_at, c.updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	p := &entity.Product{Images: []entity.ProductImage{}, Options: []entity.ProductOption{}}
	cat := &entity.Category{}
	err := row.Scan(&p.ID, &p.CategoryID, &p.NameTH, &p.NameEN, &p.DescriptionTH, &p.DescriptionEN,
		&p.Price, &p.IsRecommended, &p.IsAvailable, &p.CreatedAt, &p.UpdatedAt,
		&cat.ID, &cat.NameTH, &cat.NameEN, &cat.CreatedAt, &cat.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Category = cat
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context, f repository.ProductFilter) ([]*entity.Product, error) {
	var conds []string
	var args []any

	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Query != "" {
		add("(p.name_th ILIKE $%[1]d OR p.name_en ILIKE $%[1]d)", "%"+f.Query+"%")
	}
	if f.CategoryID != nil {
		add("p.category_id = $%d", *f.CategoryID)
	}
	if f.IsAvailable != nil {
		add("p.is_available = $%d", *f.IsAvailable)
	}
	if f.IsRecommended != nil {
		add("p.is_recommended = $%d", *f.IsRecommended)
	}
	if len(f.IDs) > 0 {
		add("p.id = ANY($%d)", f.IDs)
	}

	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN categories c ON c.id = p.category_id`
	if len(conds) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conds, " AND ")
	}
	query += "\n\t\tORDER BY p.created_at DESC, p.id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `
		SELECT `+productColumns+`
		FROM products p
		JOIN categories c ON c.id = p.category_id
		WHERE p.id = $1
	`, id))
	if err != nil {
		return nil, mapErr(err, "product not found")
	}
	if err := r.hydrate(ctx, []*entity.Product{p}); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *ProductRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error) {
	if len(ids) == 0 {
		return map[int64]*entity.Product{}, nil
	}
	products, err := r.List(ctx, repository.ProductFilter{IDs: ids})
	if err != nil {
		return nil, err
	}
	out := make(map[int64]*entity.Product, len(products))
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}

// hydrate attaches images and options (with choices) to the given products.
func (r *ProductRepository) hydrate(ctx context.Context, products []*entity.Product) error {
	if len(products) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Product, len(products))
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, url FROM product_images
		WHERE product_id = ANY($1) ORDER BY id ASC
	`, ids)
	if err != nil {
		return err
	}
	for rows.Next() {
		var img entity.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.URL); err != nil {
			rows.Close()
			return err
		}
		byID[img.ProductID].Images = append(byID[img.ProductID].Images, img)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	optRows, err := r.pool.Query(ctx, `
		SELECT id, product_id, name_th, name_en, is_required, max_select
		FROM product_options WHERE product_id = ANY($1) ORDER BY id ASC
	`, ids)
	if err != nil {
		return err
	}
	optByID := map[int64]*entity.ProductOption{}
	optIDs := []int64{}
	for optRows.Next() {
		var opt entity.ProductOption
		if err := optRows.Scan(&opt.ID, &opt.ProductID, &opt.NameTH, &opt.NameEN,
			&opt.IsRequired, &opt.MaxSelect); err != nil {
			optRows.Close()
			return err
		}
		opt.Choices = []entity.ProductOptionChoice{}
		p := byID[opt.ProductID]
		p.Options = append(p.Options, opt)
		optByID[opt.ID] = &p.Options[len(p.Options)-1]
		optIDs = append(optIDs, opt.ID)
	}
	optRows.Close()
	if err := optRows.Err(); err != nil {
		return err
	}

	if len(optIDs) == 0 {
		return nil
	}
	chRows, err := r.pool.Query(ctx, `
		SELECT id, option_id, name_th, name_en, price
		FROM product_option_choices WHERE option_id = ANY($1) ORDER BY id ASC
	`, optIDs)
	if err != nil {
		return err
	}
	defer chRows.Close()
	for chRows.Next() {
		var ch entity.ProductOptionChoice
		if err := chRows.Scan(&ch.ID, &ch.OptionID, &ch.NameTH, &ch.NameEN, &ch.Price); err != nil {
			return err
		}
		opt := optByID[ch.OptionID]
		opt.Choices = append(opt.Choices, ch)
	}
	return chRows.Err()
}

func (r *ProductRepository) Update(ctx context.Context, id int64, upd repository.ProductUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var sets []string
	var args []any
	set := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.NameTH != nil {
		set("name_th", *upd.NameTH)
	}
	if upd.NameEN != nil {
		set("name_en", *upd.NameEN)
	}
	if upd.DescriptionTH != nil {
		set("description_th", *upd.DescriptionTH)
	}
	if upd.DescriptionEN != nil {
		set("description_en", *upd.DescriptionEN)
	}
	if upd.Price != nil {
		set("price", *upd.Price)
	}
	if upd.CategoryID != nil {
		set("category_id", *upd.CategoryID)
	}
	if upd.IsAvailable != nil {
		set("is_available", *upd.IsAvailable)
	}
	if upd.IsRecommended != nil {
		set("is_recommended", *upd.IsRecommended)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	res, err := tx.Exec(ctx, fmt.Sprintf(
		"UPDATE products SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)), args...)
	if err != nil {
		return mapErr(err, "product not found")
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "product not found")
	}

	if len(upd.DeleteImageIDs) > 0 {
		if _, err := tx.Exec(ctx, `
			DELETE FROM product_images WHERE id = ANY($1) AND product_id = $2
		`, upd.DeleteImageIDs, id); err != nil {
			return err
		}
	}
	for _, url := range upd.NewImageURLs {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_images (product_id, url) VALUES ($1, $2)
		`, id, url); err != nil {
			return err
		}
	}

	if upd.Options != nil {
		// Full replacement; choices go with their options via cascade.
		if _, err := tx.Exec(ctx, `DELETE FROM product_options WHERE product_id = $1`, id); err != nil {
			return err
		}
		if err := insertOptions(ctx, tx, id, *upd.Options); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "product not found")
	}
	return nil
}

func (r *ProductRepository) DeleteImage(ctx context.Context, imageID int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM product_images WHERE id = $1`, imageID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "product image not found")
	}
	return nil
}

var _ repository.ProductRepository = (*ProductRepository)(nil)
