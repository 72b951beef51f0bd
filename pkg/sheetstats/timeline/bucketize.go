// Package timeline groups events into fixed-width time buckets.
package timeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
)

// ErrRangeTooLarge indicates a query spanning more buckets than allowed.
var ErrRangeTooLarge = errors.New("range spans too many buckets")

// Key layouts per granularity.
const (
	DayLayout  = "02.01.2006"
	HourLayout = "02.01.2006 15:04"
)

// Layout returns the bucket key layout of g.
func Layout(g models.Granularity) string {
	if g == models.GranularityHour {
		return HourLayout
	}
	return DayLayout
}

// Truncate returns the start of the bucket holding t.
func Truncate(t time.Time, g models.Granularity) time.Time {
	if g == models.GranularityHour {
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Key returns the canonical label of the bucket holding t.
func Key(t time.Time, g models.Granularity) string {
	return Truncate(t, g).Format(Layout(g))
}

// next returns the start of the bucket following start.
func next(start time.Time, g models.Granularity) time.Time {
	if g == models.GranularityHour {
		return start.Add(time.Hour)
	}
	return Truncate(start.AddDate(0, 0, 1), g)
}

// Bucketize counts events per bucket of q.Granularity and returns one bucket
// for every slot from the start of q.Range to its end, in chronological order.
// Slots without events carry a zero count. Events outside the range are
// ignored, and an inverted range yields no buckets.
func Bucketize(events []models.Event, q models.Query) []models.Bucket {
	buckets := make([]models.Bucket, 0)
	if q.Range.Inverted() || !q.Granularity.Valid() {
		return buckets
	}

	loc := q.Range.Start.Location()
	first := Truncate(q.Range.Start, q.Granularity)
	last := Truncate(q.Range.End.In(loc), q.Granularity)

	layout := Layout(q.Granularity)
	index := make(map[string]int)
	for start := first; !start.After(last); start = next(start, q.Granularity) {
		key := start.Format(layout)
		// repeated wall-clock hour when clocks go back
		if _, seen := index[key]; seen {
			continue
		}
		index[key] = len(buckets)
		buckets = append(buckets, models.Bucket{Key: key, Start: start})
	}

	for _, ev := range events {
		if !q.Range.Contains(ev.Time) {
			continue
		}
		if i, ok := index[Key(ev.Time.In(loc), q.Granularity)]; ok {
			buckets[i].Count++
		}
	}

	return buckets
}

// Count returns the number of slots Bucketize walks for q without building
// them. Across a clock change back it exceeds the bucket count by one.
func Count(q models.Query) int {
	if q.Range.Inverted() || !q.Granularity.Valid() {
		return 0
	}

	loc := q.Range.Start.Location()
	first := Truncate(q.Range.Start, q.Granularity)
	last := Truncate(q.Range.End.In(loc), q.Granularity)
	if q.Granularity == models.GranularityHour {
		return int(last.Sub(first)/time.Hour) + 1
	}
	return int(civil(last).Sub(civil(first))/(24*time.Hour)) + 1
}

// Limit returns an error wrapping ErrRangeTooLarge when q spans more than
// limit buckets.
func Limit(q models.Query, limit int) error {
	if n := Count(q); n > limit {
		return fmt.Errorf("%w: %d buckets, limit is %d", ErrRangeTooLarge, n, limit)
	}
	return nil
}

// civil drops the zone so calendar days are always 24h apart.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
