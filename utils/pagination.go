package utils

import "strconv"

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

// PageParams is a sanitized page/limit pair.
type PageParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Offset returns the row offset for the page.
func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ValidatePagination sanitizes raw page/limit query parameters. Missing or
// non-numeric inputs fall back to defaults; out-of-range values are clamped.
func ValidatePagination(pageStr, limitStr string) PageParams {
	page := defaultPage
	if n, err := strconv.Atoi(pageStr); err == nil && n >= 1 {
		page = n
	}

	limit := defaultLimit
	if n, err := strconv.Atoi(limitStr); err == nil {
		switch {
		case n < 1:
			limit = defaultLimit
		case n > maxLimit:
			limit = maxLimit
		default:
			limit = n
		}
	}

	return PageParams{Page: page, Limit: limit}
}
