package models

// Pagination describes a server-paginated collection.
// Invariant: TotalPages == ceil(Total/Limit).
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// HasMore reports whether pages beyond the current one exist.
func (p Pagination) HasMore() bool {
	return p.Page < p.TotalPages
}

// TotalPagesFor computes ceil(total/limit). A non-positive limit yields 0.
func TotalPagesFor(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
