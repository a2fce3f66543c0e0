package application

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ppfood/api/internal/domain/entity"
	repo "github.com/ppfood/api/internal/domain/repository"
	"github.com/ppfood/api/pkg/apperr"
)

// Deleting image ids the product does not own must not free up slots under
// the five-image cap.
func TestUpdateImageCapCountsOnlyOwnedDeletions(t *testing.T) {
	t.Parallel()
	products := newFakeProductRepo()
	svc := &ProductService{Products: products}
	ctx := context.Background()

	p := products.add("Khao Soi", 95)
	for i := int64(1); i <= 6; i++ {
		p.Images = append(p.Images, entity.ProductImage{ID: i, ProductID: p.ID, URL: "https://img.test/khao-soi"})
	}

	// A foreign id deletes nothing, so the product stays over the cap.
	_, err := svc.Update(ctx, p.ID, repo.ProductUpdate{DeleteImageIDs: []int64{9999}}, nil)
	require.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))

	// Deleting an owned image brings the count back within the cap.
	_, err = svc.Update(ctx, p.ID, repo.ProductUpdate{DeleteImageIDs: []int64{1}}, nil)
	require.NoError(t, err)
}
