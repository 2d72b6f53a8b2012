package stats

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

const (
	defaultChartHeight = 6
	minChartWidth      = 10
	chartSeparator     = " │ "
)

// Chart renders values as a braille line chart. Each returned line is
// prefixed with an axis label holding the series max, midpoint or min.
// Values are resampled to width columns; a flat series is drawn mid-height.
func Chart(values []float64, width, height int) []string {
	if len(values) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultChartHeight
	}
	width = max(width, minChartWidth)

	points := resample(values, width)
	lo, hi := bounds(values)
	if math.Abs(hi-lo) < 1e-9 {
		lo--
		hi++
	}

	cells := make([][]uint8, height)
	for y := range cells {
		cells[y] = make([]uint8, width)
	}
	dotRows := height * 4
	prevX, prevY := -1, -1
	for x, v := range points {
		px, py := x*2, rowFor(v, lo, hi, dotRows)
		if prevX < 0 {
			setDot(cells, px, py)
		} else {
			plotLine(prevX, prevY, px, py, func(dx, dy int) {
				setDot(cells, dx, dy)
			})
		}
		prevX, prevY = px, py
	}

	labels := axisLabels(lo, hi, height)
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, utf8.RuneCountInString(l))
	}
	lines := make([]string, 0, height)
	for y, row := range cells {
		var b strings.Builder
		fmt.Fprintf(&b, "%*s%s", labelWidth, labels[y], chartSeparator)
		for _, mask := range row {
			b.WriteRune(rune(0x2800 + int(mask)))
		}
		lines = append(lines, b.String())
	}
	return lines
}

// ChartWidthFor returns the plot width that fits totalWidth once the axis is drawn.
func ChartWidthFor(totalWidth, labelWidth int) int {
	return max(minChartWidth, totalWidth-labelWidth-utf8.RuneCountInString(chartSeparator))
}

func axisLabels(lo, hi float64, height int) []string {
	labels := make([]string, height)
	labels[0] = formatAxis(hi)
	if height > 2 {
		labels[height/2] = formatAxis((lo + hi) / 2)
	}
	if height > 1 {
		labels[height-1] = formatAxis(lo)
	}
	return labels
}

func formatAxis(v float64) string {
	return fmt.Sprintf("%.0f", v)
}

func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	switch {
	case len(values) == width:
		copy(out, values)
	case len(values) == 1:
		for i := range out {
			out[i] = values[0]
		}
	case len(values) > width:
		// Average each bucket.
		for i := range out {
			start := i * len(values) / width
			end := max((i+1)*len(values)/width, start+1)
			end = min(end, len(values))
			var sum float64
			for _, v := range values[start:end] {
				sum += v
			}
			out[i] = sum / float64(end-start)
		}
	default:
		// Linear interpolation between neighbours.
		span := float64(len(values) - 1)
		for i := range out {
			pos := float64(i) * span / float64(width-1)
			idx := int(pos)
			if idx >= len(values)-1 {
				out[i] = values[len(values)-1]
				continue
			}
			frac := pos - float64(idx)
			out[i] = values[idx]*(1-frac) + values[idx+1]*frac
		}
	}
	return out
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

func rowFor(v, lo, hi float64, rows int) int {
	if rows <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	row := int(math.Round((1 - pos) * float64(rows-1)))
	return min(max(row, 0), rows-1)
}

// plotLine walks a Bresenham line from (x0, y0) to (x1, y1).
func plotLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func setDot(cells [][]uint8, x, y int) {
	cy, cx := y/4, x/2
	if x < 0 || y < 0 || cy >= len(cells) || cx >= len(cells[cy]) {
		return
	}
	cells[cy][cx] |= dotMask(x%2, y%4)
}

// dotMask maps a sub-cell position to its braille bit.
func dotMask(x, y int) uint8 {
	left := [4]uint8{0x01, 0x02, 0x04, 0x40}
	right := [4]uint8{0x08, 0x10, 0x20, 0x80}
	if x == 0 {
		return left[y]
	}
	return right[y]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
