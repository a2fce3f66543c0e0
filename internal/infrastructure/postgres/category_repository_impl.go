package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ppfood/api/internal/domain/entity"
	"github.com/ppfood/api/internal/domain/repository"
)

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) List(ctx context.Context) ([]*entity.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name_th, c.name_en, c.created_at, c.updated_at, COUNT(p.id)
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*entity.Category
	for rows.Next() {
		c := &entity.Category{}
		if err := rows.Scan(&c.ID, &c.NameTH, &c.NameEN, &c.CreatedAt, &c.UpdatedAt, &c.ProductCount); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *CategoryRepository) GetByID(ctx context.Context, id int64) (*entity.Category, error) {
	c := &entity.Category{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, name_th, name_en, created_at, updated_at FROM categories WHERE id = $1
	`, id).Scan(&c.ID, &c.NameTH, &c.NameEN, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, mapErr(err, "category not found")
	}
	return c, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO categories (name_th, name_en) VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, c.NameTH, c.NameEN).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return mapErr(err, "category not found")
}

func (r *CategoryRepository) Update(ctx context.Context, c *entity.Category) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE categories SET name_th = $1, name_en = $2, updated_at = now() WHERE id = $3
	`, c.NameTH, c.NameEN, c.ID)
	if err != nil {
		return mapErr(err, "category not found")
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "category not found")
	}
	return nil
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		// FK restriction surfaces when products still reference the category.
		return mapErr(err, "category not found")
	}
	if res.RowsAffected() == 0 {
		return mapErr(pgx.ErrNoRows, "category not found")
	}
	return nil
}

var _ repository.CategoryRepository = (*CategoryRepository)(nil)
