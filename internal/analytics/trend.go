package analytics

import (
	"time"

	"github.com/mira-tracker/mira-backend/internal/tracker/domain"
)

// Trend buckets issues per calendar day in opts.Location. The first pass
// counts creations by createdAt, the second counts resolutions by updatedAt.
// Buckets stay in the order they were first touched and only the last
// TrendBuckets of that order are kept; the series is not sorted by date.
func Trend(issues []domain.Issue, opts Options) []TrendPoint {
	opts = opts.withDefaults()

	index := make(map[string]int)
	points := make([]TrendPoint, 0, opts.TrendBuckets)
	bucket := func(t time.Time) *TrendPoint {
		label := t.In(opts.Location).Format(TrendLabelLayout)
		i, ok := index[label]
		if !ok {
			i = len(points)
			index[label] = i
			points = append(points, TrendPoint{Date: label})
		}
		return &points[i]
	}

	for _, is := range issues {
		bucket(is.CreatedAt).Created++
	}
	for _, is := range issues {
		if is.Status.IsResolved() {
			bucket(is.UpdatedAt).Resolved++
		}
	}

	// Tail of insertion order, not the head: the last TrendBuckets buckets
	// encountered, which are not necessarily the newest dates.
	if len(points) > opts.TrendBuckets {
		points = points[len(points)-opts.TrendBuckets:]
	}
	return points
}
