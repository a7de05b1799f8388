package dto

type DrugFilters struct {
	CategoryID  string `json:"category_id,omitempty"`
	IsActive    *bool  `json:"is_active,omitempty"`
	SearchQuery string `json:"q,omitempty"`          // name or generic name
	SortBy      string `json:"sort_by,omitempty"`    // name, unit_cost, created_at
	SortOrder   string `json:"sort_order,omitempty"` // asc, desc
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}
