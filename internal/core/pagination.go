// AngelaMos | 2026
// pagination.go

package core

import (
	"math"
	"net/http"
	"strconv"
)

var (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ConfigurePagination sets the process-wide page size bounds. Call once at
// startup before serving requests.
func ConfigurePagination(defaultLimit, maxLimit int) {
	if defaultLimit > 0 {
		DefaultPageLimit = defaultLimit
	}
	if maxLimit >= DefaultPageLimit {
		MaxPageLimit = maxLimit
	}
}

type PageParams struct {
	Page  int
	Limit int
}

func (p *PageParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	// Keeps Offset within a 32-bit OFFSET for any page the client sends.
	if maxPage := math.MaxInt32 / p.Limit; p.Page > maxPage {
		p.Page = maxPage
	}
}

func (p PageParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ParsePageParams reads page and limit from the query string, falling back
// to defaults on missing or malformed values.
func ParsePageParams(r *http.Request) PageParams {
	p := PageParams{
		Page:  ParseIntQuery(r, "page", 1),
		Limit: ParseIntQuery(r, "limit", DefaultPageLimit),
	}
	p.Normalize()
	return p
}

func ParseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
