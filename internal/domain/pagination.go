package domain

type PaginationParams struct {
	Page  int `json:"page" query:"page"`
	Limit int `json:"limit" query:"limit"`
}

type PaginatedResponse[T any] struct {
	Success    bool  `json:"success"`
	Data       []T   `json:"data"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
}

func NewPaginatedResponse[T any](data []T, page, limit int, totalCount int64) PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int((totalCount + int64(limit) - 1) / int64(limit))
	}

	return PaginatedResponse[T]{
		Success:    true,
		Data:       data,
		Page:       page,
		Limit:      limit,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

func DefaultPagination() PaginationParams {
	return PaginationParams{
		Page:  1,
		Limit: 20,
	}
}

// Validate clamps limit to [1,100]; a missing limit becomes 20.
func (p *PaginationParams) Validate() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit == 0 {
		p.Limit = 20
	}
	if p.Limit < 1 {
		p.Limit = 1
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p *PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
