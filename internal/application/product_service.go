package application

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/domain/entity"
	repo "github.com/ppfood/api/internal/domain/repository"
	"github.com/ppfood/api/internal/infrastructure/search"
	"github.com/ppfood/api/pkg/apperr"
	"github.com/ppfood/api/pkg/helpers"
)

// ImageUpload is one multipart image on its way to object storage.
type ImageUpload struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

const maxProductImages = 5

// ProductService manages the catalog. Postgres is the source of truth;
// Elasticsearch mirrors it for text search and degrades to SQL matching.
type ProductService struct {
	Products   repo.ProductRepository
	Categories repo.CategoryRepository
	Index      *search.ProductIndex
	GCS        *storage.Client
	GCSBucket  string
	Logger     *logrus.Logger
}

// List applies the filter. A text query goes through the search index when
// one is configured; otherwise the store matches names directly.
func (s *ProductService) List(ctx context.Context, f repo.ProductFilter) ([]*entity.Product, error) {
	if f.Query != "" {
		if ids, ok := s.Index.Search(ctx, f.Query, 50); ok {
			if len(ids) == 0 {
				return []*entity.Product{}, nil
			}
			f.IDs = ids
			f.Query = ""
		}
	}
	products, err := s.Products.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []*entity.Product{}
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id int64) (*entity.Product, error) {
	return s.Products.GetByID(ctx, id)
}

// Create stores a new product with its images and options, then mirrors it to
// the search index.
func (s *ProductService) Create(ctx context.Context, p *entity.Product, images []ImageUpload) (*entity.Product, error) {
	if len(images) > maxProductImages {
		return nil, apperr.BadRequest("a product can have at most 5 images")
	}
	if _, err := s.Categories.GetByID(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	for _, img := range images {
		url, err := s.uploadImage(ctx, img)
		if err != nil {
			return nil, err
		}
		p.Images = append(p.Images, entity.ProductImage{URL: url})
	}

	if err := s.Products.Create(ctx, p); err != nil {
		return nil, err
	}

	created, err := s.Products.GetByID(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	_ = s.Index.IndexProduct(ctx, created)
	return created, nil
}

// Update patches fields, adds/removes images and optionally replaces the
// option set, then re-indexes.
func (s *ProductService) Update(ctx context.Context, id int64, upd repo.ProductUpdate, newImages []ImageUpload) (*entity.Product, error) {
	current, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Only deletions of images the product actually owns free up slots.
	deleted := 0
	for _, imgID := range upd.DeleteImageIDs {
		for _, img := range current.Images {
			if img.ID == imgID {
				deleted++
				break
			}
		}
	}
	if len(current.Images)+len(newImages)-deleted > maxProductImages {
		return nil, apperr.BadRequest("a product can have at most 5 images")
	}
	if upd.CategoryID != nil {
		if _, err := s.Categories.GetByID(ctx, *upd.CategoryID); err != nil {
			return nil, err
		}
	}

	for _, img := range newImages {
		url, err := s.uploadImage(ctx, img)
		if err != nil {
			return nil, err
		}
		upd.NewImageURLs = append(upd.NewImageURLs, url)
	}

	if err := s.Products.Update(ctx, id, upd); err != nil {
		return nil, err
	}

	updated, err := s.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = s.Index.IndexProduct(ctx, updated)
	return updated, nil
}

func (s *ProductService) Delete(ctx context.Context, id int64) error {
	if err := s.Products.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.Index.DeleteProduct(ctx, id)
	return nil
}

func (s *ProductService) DeleteImage(ctx context.Context, imageID int64) error {
	return s.Products.DeleteImage(ctx, imageID)
}

func (s *ProductService) uploadImage(ctx context.Context, img ImageUpload) (string, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return "", apperr.Internal("object storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(img.Filename))
	objectPath := "products/" + uuid.NewString() + ext
	return helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, img.ContentType, img.Reader)
}
