package dto

type CreateCategoryInput struct {
	MerchantID  string  `json:"-"`
	ParentID    *string `json:"parentId"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	SortOrder   int     `json:"sort"`
}

// UpdateCategoryInput is a partial update: nil fields are left unchanged.
// A ParentID pointing at "" moves the category to the root.
type UpdateCategoryInput struct {
	ID          string  `json:"-"`
	MerchantID  string  `json:"-"`
	ParentID    *string `json:"parentId"`
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Icon        *string `json:"icon"`
	SortOrder   *int    `json:"sort"`
	IsActive    *bool   `json:"isActive"`
}
