package timeline

import (
	"fmt"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
)

// Compare overlays several series on the union of their bucket keys.
// Keys keep first-seen order; a series without a key counts zero there.
// Duplicate display names get a numeric suffix so no column is lost.
func Compare(series ...models.Series) models.Comparison {
	cmp := models.Comparison{
		Keys:   []string{},
		Series: []string{},
		Counts: make(map[string][]int),
	}

	keyIndex := make(map[string]int)
	for _, s := range series {
		for _, b := range s.Buckets {
			if _, ok := keyIndex[b.Key]; !ok {
				keyIndex[b.Key] = len(cmp.Keys)
				cmp.Keys = append(cmp.Keys, b.Key)
			}
		}
	}

	for _, s := range series {
		name := uniqueName(cmp.Counts, seriesLabel(s))
		counts := make([]int, len(cmp.Keys))
		for _, b := range s.Buckets {
			counts[keyIndex[b.Key]] += b.Count
		}
		cmp.Series = append(cmp.Series, name)
		cmp.Counts[name] = counts
	}

	return cmp
}

// GlobalMax returns the largest bucket count across all series.
func GlobalMax(series ...models.Series) int {
	max := 0
	for _, s := range series {
		if m := s.Max(); m > max {
			max = m
		}
	}
	return max
}

func seriesLabel(s models.Series) string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

func uniqueName(taken map[string][]int, name string) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", name, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
