package model

type Category struct {
	BaseModel          `yaml:",inline"`
	MerchantID         string  `db:"merchant_id" json:"merchantId,omitempty" yaml:"merchantId,omitempty"`
	ParentID           *string `db:"parent_id" json:"parentId" yaml:"parentId"` // Nullable
	Name               string  `db:"name" json:"name" yaml:"name"`
	Slug               string  `db:"slug" json:"slug" yaml:"slug"`
	URLPath            string  `db:"url_path" json:"urlPath" yaml:"urlPath"`
	Description        *string `db:"description" json:"description,omitempty" yaml:"description,omitempty"`
	Icon               *string `db:"icon" json:"icon,omitempty" yaml:"icon,omitempty"` // First-level categories only
	SortOrder          int     `db:"sort_order" json:"sort" yaml:"sort"`
	IsActive           bool    `db:"is_active" json:"isActive" yaml:"isActive"`
	DirectProductCount int     `db:"direct_product_count" json:"directProductCount" yaml:"directProductCount"`
	TotalProductCount  int     `db:"-" json:"totalProductCount" yaml:"totalProductCount"` // Direct + descendants, computed
}

// IsRoot reports whether the record declares no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil || *c.ParentID == ""
}

// Parent returns the declared parent id, or "" for roots.
func (c *Category) Parent() string {
	if c.ParentID == nil {
		return ""
	}
	return *c.ParentID
}
