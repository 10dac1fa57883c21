package utils

import "strconv"

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// ParsePagination normalizes page/limit query values and returns the
// page, limit, and offset to use.
func ParsePagination(pageStr, limitStr string) (page, limit, offset int) {
	page = DefaultPage
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}

	limit = DefaultLimit
	if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
		limit = l
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset
}
