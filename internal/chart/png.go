// Package chart renders series results as PNG bar charts, HTML pages and text tables.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
)

// ErrEmptySeries indicates a series without buckets, which has nothing to draw.
var ErrEmptySeries = errors.New("series has no buckets")

// ErrTooManyBars indicates a series with more buckets than MaxBars.
var ErrTooManyBars = errors.New("series has too many buckets to draw")

const (
	maxBarWidth  = 40
	minBarWidth  = 4
	maxPNGWidth  = 8192
	chartHeight  = 540
	paddingY     = 100
	spacingRatio = 0.2
)

// MaxBars is the most buckets PNG draws; at minBarWidth they fill maxPNGWidth.
const MaxBars = (maxPNGWidth - 2*paddingY) / (minBarWidth + 1)

// PNG draws s as a bar chart. The Y axis runs from 0 to yMax, so charts of
// several series drawn with the same yMax share one scale. A yMax below the
// largest bucket of s is raised to it.
func PNG(s models.Series, yMax int) ([]byte, error) {
	if len(s.Buckets) == 0 {
		return nil, ErrEmptySeries
	}
	if len(s.Buckets) > MaxBars {
		return nil, fmt.Errorf("%w: %d buckets, limit is %d", ErrTooManyBars, len(s.Buckets), MaxBars)
	}
	if m := s.Max(); m > yMax {
		yMax = m
	}
	if yMax < 1 {
		yMax = 1
	}

	bars := barValues(s)
	barWidth, spacing, width := barDimensions(len(bars))
	paddingX := labelPadding(bars)

	bar := chart.BarChart{
		Title: seriesTitle(s),
		Background: chart.Style{
			StrokeColor: chart.ColorBlack,
			Padding: chart.Box{
				Top:    50,
				Bottom: paddingX,
			},
		},
		Width:      width,
		Height:     chartHeight + paddingX,
		BarWidth:   barWidth,
		BarSpacing: spacing,
		Bars:       bars,
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{
				Min: 0,
				Max: float64(yMax),
			},
			Style: chart.Style{
				StrokeWidth: 2,
				StrokeColor: chart.ColorBlack,
				FontSize:    12,
			},
			Ticks: gridTicks(yMax),
			GridMajorStyle: chart.Style{
				StrokeColor:     chart.ColorBlack,
				StrokeWidth:     1,
				DotWidth:        1,
				StrokeDashArray: []float64{5.0, 5.0},
			},
		},
		XAxis: chart.Style{
			StrokeWidth:         2,
			StrokeColor:         chart.ColorBlack,
			TextRotationDegrees: 88,
			FontSize:            10,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := bar.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("error rendering chart: %w", err)
	}
	return buffer.Bytes(), nil
}

func seriesTitle(s models.Series) string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Name
}

func barValues(s models.Series) []chart.Value {
	bars := make([]chart.Value, 0, len(s.Buckets))
	for _, b := range s.Buckets {
		bars = append(bars, chart.Value{
			Value: float64(b.Count),
			Label: b.Key,
			Style: chart.Style{
				FillColor:   drawing.ColorBlue.WithAlpha(160),
				StrokeColor: drawing.ColorBlue,
			},
		})
	}
	return bars
}

// barDimensions narrows bars as their number grows so the canvas stays
// within maxPNGWidth.
func barDimensions(n int) (barWidth, spacing, width int) {
	barWidth = maxBarWidth
	for barWidth > minBarWidth && chartWidth(n, barWidth) > maxPNGWidth {
		barWidth--
	}
	return barWidth, barSpacing(barWidth), chartWidth(n, barWidth)
}

func barSpacing(barWidth int) int {
	return int(math.Max(1, float64(barWidth)*spacingRatio))
}

func chartWidth(n, barWidth int) int {
	return (barWidth+barSpacing(barWidth))*n + 2*paddingY
}

// labelPadding reserves room below the axis for the rotated bucket labels.
func labelPadding(values []chart.Value) int {
	longest := 0
	for _, v := range values {
		if len(v.Label) > longest {
			longest = len(v.Label)
		}
	}
	return longest * 8
}

func gridTicks(yMax int) []chart.Tick {
	step := gridStep(float64(yMax))
	var ticks []chart.Tick
	for v := 0.0; v <= float64(yMax); v += step {
		ticks = append(ticks, chart.Tick{
			Value: v,
			Label: fmt.Sprintf("%.0f", v),
		})
	}
	return ticks
}

// gridStep picks a 1-2-5 step giving roughly five grid lines up to maxValue.
// Counts are whole numbers, so the step is never below 1.
func gridStep(maxValue float64) float64 {
	if maxValue <= 5 {
		return 1
	}

	magnitude := math.Pow(10, math.Floor(math.Log10(maxValue)))
	normalized := maxValue / magnitude

	var step float64
	switch {
	case normalized <= 1:
		step = 0.2
	case normalized <= 2:
		step = 0.5
	case normalized <= 5:
		step = 1.0
	default:
		step = 2.0
	}
	return math.Max(1, math.Round(step*magnitude))
}
