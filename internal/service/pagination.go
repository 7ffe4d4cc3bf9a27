package service

// Pagination 描述列表分页的计算结果。
type Pagination struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
	PerPage     int
	Offset      int
	HasPrevious bool
	HasNext     bool
}

// Paginate clamps the requested page to the valid range and computes the
// offset. Requesting a page past the end lands on the last page, never on an
// empty one.
func Paginate(page int, totalItems int64, perPage int) Pagination {
	if perPage <= 0 {
		perPage = 1
	}

	totalPages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}

	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalItems:  totalItems,
		PerPage:     perPage,
		Offset:      (page - 1) * perPage,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}
