package models

import (
	"fmt"
	"math"
	"strings"
)

// PageSize is the number of mods returned by one List call.
const PageSize = 20

// MaxPage is the largest page whose offset fits in an int.
const MaxPage = math.MaxInt / PageSize

// Sort orders a mod listing.
type Sort string

const (
	SortNew            Sort = "new"
	SortOld            Sort = "old"
	SortMostDownloads  Sort = "most-downloads"
	SortLeastDownloads Sort = "least-downloads"
)

// ParseSort accepts the listing sorts plus the aliases "top" and "bottom".
// An empty string means SortNew.
func ParseSort(s string) (Sort, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "new":
		return SortNew, nil
	case "old":
		return SortOld, nil
	case "most-downloads", "top":
		return SortMostDownloads, nil
	case "least-downloads", "bottom":
		return SortLeastDownloads, nil
	default:
		return "", fmt.Errorf("unknown sort %q", s)
	}
}

// ListQuery selects one page of mods. Page counts pages to skip.
type ListQuery struct {
	Page   int
	Sort   Sort
	Search []string
}

// Offset is the number of rows skipped for q.Page.
func (q ListQuery) Offset() int {
	return q.Page * PageSize
}
