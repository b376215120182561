package query

import (
	"sort"
	"strings"
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

// DateRange is a trailing window over post creation time
type DateRange string

const (
	DateRangeAll       DateRange = "all"
	DateRangeLastHour  DateRange = "1h"
	DateRangeLastDay   DateRange = "24h"
	DateRangeLastWeek  DateRange = "7d"
	DateRangeLastMonth DateRange = "30d"
)

var dateRangeWindows = map[DateRange]time.Duration{
	DateRangeLastHour:  time.Hour,
	DateRangeLastDay:   24 * time.Hour,
	DateRangeLastWeek:  7 * 24 * time.Hour,
	DateRangeLastMonth: 30 * 24 * time.Hour,
}

// Window returns the duration of the range; ok is false for "all" or empty.
func (d DateRange) Window() (time.Duration, bool) {
	w, ok := dateRangeWindows[d]
	return w, ok
}

// SortOrder orders results by creation time
type SortOrder string

const (
	SortLatest SortOrder = "latest"
	SortOldest SortOrder = "oldest"
)

// Filters is the set of independent predicates a listing can apply. The zero
// value matches everything and keeps input order.
type Filters struct {
	PostType   models.PostType
	Categories []models.Category
	Status     models.PostStatus
	Location   string
	DateRange  DateRange
	TitleQuery string
	Sort       SortOrder
}

// IsEmpty reports whether no predicate or ordering is set
func (f Filters) IsEmpty() bool {
	return f.PostType == "" && len(f.Categories) == 0 && f.Status == "" && strings.TrimSpace(f.Location) == "" &&
		(f.DateRange == "" || f.DateRange == DateRangeAll) && strings.TrimSpace(f.TitleQuery) == "" && f.Sort == ""
}

// Validate rejects unknown enum values and locations outside knownLocations.
// An empty knownLocations list accepts any location.
func (f Filters) Validate(knownLocations []string) error {
	if f.PostType != "" && !f.PostType.Valid() {
		return apperrors.NewValidationError("postType", "postType must be request or offer")
	}
	for _, c := range f.Categories {
		if !c.Valid() {
			return apperrors.NewValidationError("category", "unknown category "+string(c))
		}
	}
	if f.Status != "" && !f.Status.Valid() {
		return apperrors.NewValidationError("status", "unknown status "+string(f.Status))
	}
	if f.DateRange != "" && f.DateRange != DateRangeAll {
		if _, ok := f.DateRange.Window(); !ok {
			return apperrors.NewValidationError("dateRange", "dateRange must be one of 1h, 24h, 7d, 30d, all")
		}
	}
	if f.Sort != "" && f.Sort != SortLatest && f.Sort != SortOldest {
		return apperrors.NewValidationError("sort", "sort must be latest or oldest")
	}
	if loc := strings.TrimSpace(f.Location); loc != "" && len(knownLocations) > 0 {
		if CanonicalLocation(loc, knownLocations) == "" {
			return apperrors.NewValidationError("location", "unknown campus location "+loc)
		}
	}
	return nil
}

// CanonicalLocation returns the entry of known matching loc case-insensitively, or "".
func CanonicalLocation(loc string, known []string) string {
	loc = strings.TrimSpace(loc)
	for _, k := range known {
		if strings.EqualFold(loc, k) {
			return k
		}
	}
	return ""
}

// FilterPosts applies every active predicate (AND) and then the sort order.
// Multiple categories match if any one matches. Ties keep their input order.
func FilterPosts(posts []*models.Post, f Filters, now time.Time) []*models.Post {
	out := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if f.matches(p, now) {
			out = append(out, p)
		}
	}

	switch f.Sort {
	case SortLatest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	}
	return out
}

func (f Filters) matches(p *models.Post, now time.Time) bool {
	if f.PostType != "" && p.PostType != f.PostType {
		return false
	}
	if len(f.Categories) > 0 && !containsCategory(f.Categories, p.Category) {
		return false
	}
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if loc := strings.TrimSpace(f.Location); loc != "" && !strings.EqualFold(strings.TrimSpace(p.Location), loc) {
		return false
	}
	if window, ok := f.DateRange.Window(); ok && p.CreatedAt.Before(now.Add(-window)) {
		return false
	}
	if q := strings.TrimSpace(f.TitleQuery); q != "" && !strings.Contains(strings.ToLower(p.Title), strings.ToLower(q)) {
		return false
	}
	return true
}

func containsCategory(categories []models.Category, c models.Category) bool {
	for _, candidate := range categories {
		if candidate == c {
			return true
		}
	}
	return false
}

// FindByCategory narrows base to a single category
func FindByCategory(posts []*models.Post, category models.Category, base Filters, now time.Time) []*models.Post {
	base.Categories = []models.Category{category}
	return FilterPosts(posts, base, now)
}

// FindByTitle narrows base to titles containing q
func FindByTitle(posts []*models.Post, q string, base Filters, now time.Time) []*models.Post {
	base.TitleQuery = q
	return FilterPosts(posts, base, now)
}

// FindByMultipleCategories narrows base to any of categories
func FindByMultipleCategories(posts []*models.Post, categories []models.Category, base Filters, now time.Time) []*models.Post {
	base.Categories = categories
	return FilterPosts(posts, base, now)
}
