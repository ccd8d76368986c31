package dto

type CategoryFilters struct {
	MerchantID string
	ParentID   *string // Nil means ignore, Empty string means root categories
	IsActive   *bool
	Page       int
	PageSize   int
}

// TreeQuery carries the inputs of the derived tree views.
type TreeQuery struct {
	MerchantID string
	Search     string
	SelectedID string
}
