package application

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/domain/entity"
	repo "github.com/ppfood/api/internal/domain/repository"
	"github.com/ppfood/api/pkg/helpers"
)

const (
	categoriesCacheKey = "catalog:categories"
	categoriesCacheTTL = 5 * time.Minute
)

// CategoryService manages categories with a short-lived Redis cache over the
// list endpoint, which every menu render hits.
type CategoryService struct {
	Categories repo.CategoryRepository
	Redis      *redis.Client
	Logger     *logrus.Logger
}

func (s *CategoryService) List(ctx context.Context) ([]*entity.Category, error) {
	if s.Redis != nil {
		var cached []*entity.Category
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, categoriesCacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	categories, err := s.Categories.List(ctx)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*entity.Category{}
	}

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, categoriesCacheKey, categories, categoriesCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).Warn("cache categories failed")
		}
	}
	return categories, nil
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*entity.Category, error) {
	return s.Categories.GetByID(ctx, id)
}

func (s *CategoryService) Create(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	if err := s.Categories.Create(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *CategoryService) Update(ctx context.Context, c *entity.Category) (*entity.Category, error) {
	if err := s.Categories.Update(ctx, c); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return s.Categories.GetByID(ctx, c.ID)
}

func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if err := s.Categories.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *CategoryService) invalidate(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, categoriesCacheKey); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("invalidate categories cache failed")
	}
}
