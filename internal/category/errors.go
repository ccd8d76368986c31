package category

import "errors"

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryCycle    = errors.New("category parent would create a cycle")
	ErrInvalidParent    = errors.New("invalid parent category")
	ErrNameRequired     = errors.New("category name is required")
	ErrSlugTaken        = errors.New("slug already used by a sibling category")
	ErrIconNotAllowed   = errors.New("icon is only allowed on root categories")
	ErrInvalidSlug      = errors.New("slug must use lowercase letters, digits and hyphens")
	ErrMerchantRequired = errors.New("merchant id is required")
)
