package repository

import (
	"context"

	"github.com/ppfood/api/internal/domain/entity"
)

// ProductFilter narrows product listings. Nil pointer fields mean "any".
type ProductFilter struct {
	Query         string
	CategoryID    *int64
	IsAvailable   *bool
	IsRecommended *bool
	IDs           []int64
}

// ProductUpdate patches product fields. Nil pointers leave a field untouched.
// Options non-nil replaces the full option set.
type ProductUpdate struct {
	NameTH         *string
	NameEN         *string
	DescriptionTH  *string
	DescriptionEN  *string
	Price          *float64
	CategoryID     *int64
	IsAvailable    *bool
	IsRecommended  *bool
	NewImageURLs   []string
	DeleteImageIDs []int64
	Options        *[]entity.ProductOption
}

type ProductRepository interface {
	// Create inserts the product with its images and options in one transaction.
	Create(ctx context.Context, p *entity.Product) error
	List(ctx context.Context, f ProductFilter) ([]*entity.Product, error)
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error)
	Update(ctx context.Context, id int64, upd ProductUpdate) error
	Delete(ctx context.Context, id int64) error
	DeleteImage(ctx context.Context, imageID int64) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]*entity.Category, error)
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	Create(ctx context.Context, c *entity.Category) error
	Update(ctx context.Context, c *entity.Category) error
	Delete(ctx context.Context, id int64) error
}
