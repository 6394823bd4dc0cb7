package shared

import (
	"net/http"
	"strconv"

	"workforce/internal/transport/http/api"
)

// Pagination is the limit/offset window of a list request.
type Pagination struct {
	Limit  int
	Offset int
}

// ParsePagination reads limit and offset, or page when offset is absent.
// Page numbers start at 1. Bad values fall back to the defaults.
func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	q := r.URL.Query()
	p := Pagination{Limit: queryInt(q.Get("limit"), defaultLimit, 1)}
	if maxLimit > 0 && p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if raw := q.Get("offset"); raw != "" {
		p.Offset = queryInt(raw, 0, 0)
	} else if page := queryInt(q.Get("page"), 1, 1); page > 1 {
		p.Offset = (page - 1) * p.Limit
	}
	return p
}

// Meta describes the window for the list envelope.
func (p Pagination) Meta(total int) api.Meta {
	return api.Meta{Total: total, Limit: p.Limit, Offset: p.Offset}
}

func queryInt(raw string, fallback, min int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min {
		return fallback
	}
	return v
}
