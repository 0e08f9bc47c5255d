package core

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CleanOrderings drops orderings on fields that are not in `allowed`.
func CleanOrderings(orderings []DBOrdering, allowed ...string) []DBOrdering {
	if len(orderings) == 0 {
		return nil
	}
	clean := make([]DBOrdering, 0, len(orderings))
	for _, ord := range orderings {
		if StringInSlice(ord.Field, allowed) {
			clean = append(clean, ord)
		}
	}
	return clean
}

// ParseOrderings parses a comma-separated list such as "name,-created_at".
func ParseOrderings(val string) []DBOrdering {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	var orderings []DBOrdering
	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		orderings = append(orderings, DBOrdering{Field: field, Ascending: !descending})
	}
	return orderings
}

// Page is a limit/offset window over a result set.
type Page struct {
	Limit  int
	Offset int
}

func NewPage(limit, offset int) Page {
	p := Page{Limit: limit, Offset: offset}
	p.Clean()
	return p
}

func (p *Page) Clean() {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// ParsePage reads `limit` and `offset` from query values, ignoring garbage.
func ParsePage(q url.Values) Page {
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return NewPage(limit, offset)
}

// Slice applies the page window to a slice length, returning [start, end).
func (p Page) Slice(n int) (int, int) {
	start := p.Offset
	if start > n {
		start = n
	}
	end := start + p.Limit
	if end > n {
		end = n
	}
	return start, end
}
