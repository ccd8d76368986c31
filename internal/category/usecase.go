package category

import (
	"context"

	"github.com/singladno/marinaobuv-sub001/internal/category/dto"
	"github.com/singladno/marinaobuv-sub001/internal/category/tree"
	"github.com/singladno/marinaobuv-sub001/internal/model"
)

type UseCase interface {
	CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error)
	GetCategory(ctx context.Context, merchantID, id string) (*model.Category, error)
	ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error)
	DeleteCategory(ctx context.Context, merchantID, id string) error

	// Snapshot returns the merchant's flat list with total product counts.
	Snapshot(ctx context.Context, merchantID string) ([]model.Category, error)
	InvalidateSnapshot(ctx context.Context, merchantID string) error

	GetTree(ctx context.Context, merchantID, search string) ([]*tree.Node, error)
	Flatten(ctx context.Context, merchantID, excludeID string) ([]tree.Entry, error)
	ValidParents(ctx context.Context, merchantID, editingID string, mode *tree.ParentMode) ([]model.Category, error)
	ReconcileSelection(ctx context.Context, merchantID, previousID string) (string, error)
	Expansion(ctx context.Context, q *dto.TreeQuery) (map[string]bool, error)
	SearchTree(ctx context.Context, merchantID, query string) ([]*tree.Node, error)
	Lookup(ctx context.Context, merchantID string) (*tree.Index, error)

	// Drain waits for background index syncs and event publishes started by
	// earlier writes, or for ctx to end.
	Drain(ctx context.Context) error
}
