package dto

type CategoryFilters struct {
	ParentID *string // nil ignores the parent, empty string selects root categories
	IsActive *bool
	Page     int
	PageSize int
}
