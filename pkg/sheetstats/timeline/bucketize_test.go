package timeline

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func eventsAt(times ...time.Time) []models.Event {
	events := make([]models.Event, len(times))
	for i, t := range times {
		events[i] = models.Event{Row: i + 4, Time: t}
	}
	return events
}

func pairs(buckets []models.Bucket) map[string]int {
	out := make(map[string]int, len(buckets))
	for _, b := range buckets {
		out[b.Key] = b.Count
	}
	return out
}

func TestBucketizeDayScenario(t *testing.T) {
	events := eventsAt(at(2024, 1, 2, 10, 0), at(2024, 1, 2, 15, 30), at(2024, 1, 3, 9, 0))
	q := models.Query{
		Range:       models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 3, 0, 0)),
		Granularity: models.GranularityDay,
	}

	got := Bucketize(events, q)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"01.01.2024", "02.01.2024", "03.01.2024"}, models.Series{Buckets: got}.Keys())
	assert.Equal(t, []int{0, 2, 1}, []int{got[0].Count, got[1].Count, got[2].Count})
	assert.True(t, got[0].Start.Equal(at(2024, 1, 1, 0, 0)))
}

func TestBucketizeSingleDayWithoutEvents(t *testing.T) {
	events := eventsAt(at(2024, 1, 2, 10, 0), at(2024, 1, 2, 15, 30), at(2024, 1, 3, 9, 0))
	q := models.Query{
		Range:       models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 1, 0, 0)),
		Granularity: models.GranularityDay,
	}

	got := Bucketize(events, q)

	require.Len(t, got, 1)
	assert.Equal(t, models.Bucket{Key: "01.01.2024", Start: at(2024, 1, 1, 0, 0), Count: 0}, got[0])
}

func TestBucketizeHour(t *testing.T) {
	events := eventsAt(at(2024, 1, 2, 10, 5), at(2024, 1, 2, 10, 59), at(2024, 1, 2, 12, 0))
	q := models.Query{
		Range:       models.DateRange{Start: at(2024, 1, 2, 9, 30), End: at(2024, 1, 2, 12, 30)},
		Granularity: models.GranularityHour,
	}

	got := Bucketize(events, q)

	assert.Equal(t, []string{
		"02.01.2024 09:00",
		"02.01.2024 10:00",
		"02.01.2024 11:00",
		"02.01.2024 12:00",
	}, models.Series{Buckets: got}.Keys())
	assert.Equal(t, map[string]int{
		"02.01.2024 09:00": 0,
		"02.01.2024 10:00": 2,
		"02.01.2024 11:00": 0,
		"02.01.2024 12:00": 1,
	}, pairs(got))
}

func TestBucketizeWholeDaysAtHourGranularity(t *testing.T) {
	q := models.Query{
		Range:       models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 3, 0, 0)),
		Granularity: models.GranularityHour,
	}

	got := Bucketize(nil, q)

	require.Len(t, got, 72)
	assert.Equal(t, "01.01.2024 00:00", got[0].Key)
	assert.Equal(t, "03.01.2024 23:00", got[71].Key)
}

func TestBucketizeInvertedRange(t *testing.T) {
	q := models.Query{
		Range:       models.DateRange{Start: at(2024, 1, 3, 0, 0), End: at(2024, 1, 1, 0, 0)},
		Granularity: models.GranularityDay,
	}

	got := Bucketize(eventsAt(at(2024, 1, 2, 0, 0)), q)

	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBucketizeUnknownGranularity(t *testing.T) {
	q := models.Query{
		Range:       models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 3, 0, 0)),
		Granularity: "week",
	}
	assert.Empty(t, Bucketize(nil, q))
}

func TestBucketizeIgnoresEventsOutsideRange(t *testing.T) {
	events := eventsAt(at(2023, 12, 31, 23, 59), at(2024, 1, 1, 12, 0), at(2024, 1, 2, 0, 0))
	q := models.Query{
		Range:       models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 1, 0, 0)),
		Granularity: models.GranularityDay,
	}

	got := Bucketize(events, q)

	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].Count)
}

func TestBucketizeProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	base := at(2024, 3, 1, 0, 0)

	for i := 0; i < 200; i++ {
		g := models.GranularityDay
		unit := 24 * time.Hour
		if i%2 == 1 {
			g = models.GranularityHour
			unit = time.Hour
		}

		start := base.Add(time.Duration(rng.Intn(72*60)) * time.Minute)
		end := start.Add(time.Duration(rng.Intn(10*24*60)) * time.Minute)
		q := models.Query{Range: models.DateRange{Start: start, End: end}, Granularity: g}

		var events []models.Event
		inRange := 0
		n := rng.Intn(50)
		for j := 0; j < n; j++ {
			ts := base.Add(time.Duration(rng.Intn(16*24*60)) * time.Minute)
			events = append(events, models.Event{Time: ts})
			if q.Range.Contains(ts) {
				inRange++
			}
		}

		got := Bucketize(events, q)

		diff := Truncate(end, g).Sub(Truncate(start, g)) / unit
		require.Len(t, got, int(diff)+1, "range %v..%v %s", start, end, g)
		assert.Equal(t, len(got), Count(q))

		seen := make(map[string]bool)
		total := 0
		for k, b := range got {
			assert.False(t, seen[b.Key], "duplicate key %s", b.Key)
			seen[b.Key] = true
			assert.GreaterOrEqual(t, b.Count, 0)
			if k > 0 {
				assert.True(t, b.Start.After(got[k-1].Start), "buckets out of order")
			}
			total += b.Count
		}
		assert.Equal(t, inRange, total)

		// identical input, identical output
		assert.Equal(t, got, Bucketize(events, q))
	}
}

// An end earlier in its day (or hour) than the start still gets a bucket of
// its own: the fill runs between truncated bounds, so it yields one slot more
// than floor((end-start)/unit)+1 here.
func TestBucketizeEndSlotBeforeStartOffset(t *testing.T) {
	tests := []struct {
		name  string
		q     models.Query
		event time.Time
		keys  []string
	}{
		{
			name: "day",
			q: models.Query{
				Range:       models.DateRange{Start: at(2024, 1, 1, 18, 0), End: at(2024, 1, 3, 6, 0)},
				Granularity: models.GranularityDay,
			},
			event: at(2024, 1, 3, 5, 0),
			keys:  []string{"01.01.2024", "02.01.2024", "03.01.2024"},
		},
		{
			name: "hour",
			q: models.Query{
				Range:       models.DateRange{Start: at(2024, 1, 1, 10, 45), End: at(2024, 1, 1, 12, 15)},
				Granularity: models.GranularityHour,
			},
			event: at(2024, 1, 1, 12, 5),
			keys:  []string{"01.01.2024 10:00", "01.01.2024 11:00", "01.01.2024 12:00"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := 24 * time.Hour
			if tt.q.Granularity == models.GranularityHour {
				unit = time.Hour
			}
			elapsed := int(tt.q.Range.End.Sub(tt.q.Range.Start)/unit) + 1

			got := Bucketize(eventsAt(tt.event), tt.q)

			require.Len(t, got, elapsed+1)
			assert.Equal(t, tt.keys, models.Series{Buckets: got}.Keys())
			assert.Equal(t, 1, got[len(got)-1].Count)
		})
	}
}

func TestCount(t *testing.T) {
	tests := []struct {
		name string
		q    models.Query
		want int
	}{
		{"one day", models.Query{Range: models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 1, 0, 0)), Granularity: models.GranularityDay}, 1},
		{"leap year by day", models.Query{Range: models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 12, 31, 0, 0)), Granularity: models.GranularityDay}, 366},
		{"two days by hour", models.Query{Range: models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 2, 0, 0)), Granularity: models.GranularityHour}, 48},
		{"inverted", models.Query{Range: models.DayRange(at(2024, 1, 2, 0, 0), at(2024, 1, 1, 0, 0)), Granularity: models.GranularityDay}, 0},
		{"invalid granularity", models.Query{Range: models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 2, 0, 0)), Granularity: "week"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Count(tt.q))
		})
	}
}

func TestCountCenturyByHour(t *testing.T) {
	q := models.Query{
		Range:       models.DayRange(at(1925, 1, 1, 0, 0), at(2024, 12, 31, 0, 0)),
		Granularity: models.GranularityHour,
	}
	assert.Greater(t, Count(q), 800000)
}

func TestLimit(t *testing.T) {
	q := models.Query{
		Range:       models.DayRange(at(2024, 1, 1, 0, 0), at(2024, 1, 3, 0, 0)),
		Granularity: models.GranularityHour,
	}

	assert.NoError(t, Limit(q, 72))

	err := Limit(q, 71)
	require.ErrorIs(t, err, ErrRangeTooLarge)
	assert.Contains(t, err.Error(), "72 buckets")
}

func TestBucketizeDaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Kyiv")
	if err != nil {
		t.Skipf("time zone data unavailable: %v", err)
	}

	// clocks go forward at 03:00 on 31.03.2024 and back at 04:00 on 27.10.2024
	spring := models.Query{
		Range:       models.DayRange(time.Date(2024, 3, 30, 0, 0, 0, 0, loc), time.Date(2024, 4, 1, 0, 0, 0, 0, loc)),
		Granularity: models.GranularityDay,
	}
	assert.Equal(t, []string{"30.03.2024", "31.03.2024", "01.04.2024"}, models.Series{Buckets: Bucketize(nil, spring)}.Keys())

	autumn := models.Query{
		Range:       models.DateRange{Start: time.Date(2024, 10, 27, 2, 0, 0, 0, loc), End: time.Date(2024, 10, 27, 5, 0, 0, 0, loc)},
		Granularity: models.GranularityHour,
	}
	assert.Equal(t, []string{
		"27.10.2024 02:00",
		"27.10.2024 03:00",
		"27.10.2024 04:00",
		"27.10.2024 05:00",
	}, models.Series{Buckets: Bucketize(nil, autumn)}.Keys())
}

func TestKey(t *testing.T) {
	ts := at(2024, 2, 29, 17, 45)
	assert.Equal(t, "29.02.2024", Key(ts, models.GranularityDay))
	assert.Equal(t, "29.02.2024 17:00", Key(ts, models.GranularityHour))
}
