package category

import (
	"context"

	"github.com/singladno/marinaobuv-sub001/internal/category/dto"
	"github.com/singladno/marinaobuv-sub001/internal/model"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, merchantID, id string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	FindAllByMerchant(ctx context.Context, merchantID string) ([]model.Category, error)
	Update(ctx context.Context, category *model.Category) error
	UpdatePaths(ctx context.Context, merchantID string, paths map[string]string) error
	Delete(ctx context.Context, merchantID, id string) error
	SlugExists(ctx context.Context, merchantID string, parentID *string, slug, excludeID string) (bool, error)
}
