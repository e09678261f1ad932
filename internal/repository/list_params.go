package repository

import (
	"fmt"
	"strings"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// String and Set let SortOrder act as a pflag.Value.
func (o *SortOrder) String() string { return string(*o) }

func (o *SortOrder) Set(s string) error {
	v, err := ParseSortOrder(s)
	if err != nil {
		return err
	}
	*o = v
	return nil
}

func (o *SortOrder) Type() string { return "asc|desc" }

func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "desc":
		return SortDesc, nil
	case "asc":
		return SortAsc, nil
	default:
		return "", fmt.Errorf("sort order must be asc or desc, got %q", s)
	}
}

// sortColumns whitelists the columns List may order by.
var sortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"title":      true,
	"status":     true,
}

// SortColumns returns the accepted sortBy values.
func SortColumns() []string {
	return []string{"created_at", "updated_at", "title", "status"}
}

// ListParams controls paging, search and ordering of homily listings.
type ListParams struct {
	Page      int
	PageSize  int
	Search    string
	SortBy    string
	SortOrder SortOrder
}

// Normalize fills defaults and rejects unknown sort columns.
func (p ListParams) Normalize() (ListParams, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	p.Search = strings.TrimSpace(p.Search)
	if p.SortBy == "" {
		p.SortBy = "created_at"
	}
	if !sortColumns[p.SortBy] {
		return p, fmt.Errorf("cannot sort by %q", p.SortBy)
	}
	order, err := ParseSortOrder(string(p.SortOrder))
	if err != nil {
		return p, err
	}
	p.SortOrder = order
	return p, nil
}

// Offset is the number of rows skipped for the page.
func (p ListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// TotalPages is ceil(total / pageSize).
func TotalPages(total, pageSize int) int {
	if pageSize < 1 || total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// likePattern builds a case-insensitive substring pattern escaping LIKE
// metacharacters with a backslash.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(search)) + "%"
}
