package report

import (
	"bytes"
	"math"
	"sort"
	"strconv"

	"github.com/verte-zerg/gamepulse/internal/emotion"
)

// EmotionCounts is the per-category histogram of a session. It encodes as a
// JSON object whose keys follow the canonical category order.
type EmotionCounts emotion.Counts

// EmotionBreakdown describes one category's share of a session.
type EmotionBreakdown struct {
	Name        string  `json:"name"`
	Count       int     `json:"count"`
	Percentage  float64 `json:"percentage"`
	Description string  `json:"description"`
}

// MarshalJSON implements json.Marshaler with a fixed key order.
func (c EmotionCounts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range emotion.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(e.String()))
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(c[e]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Breakdown lists every category with its share, largest share first.
func Breakdown(counts emotion.Counts) []EmotionBreakdown {
	total := counts.Total()
	out := make([]EmotionBreakdown, 0, len(counts))
	for _, e := range emotion.All() {
		count := counts.Get(e)
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(count)/float64(total)*1000) / 10
		}
		out = append(out, EmotionBreakdown{
			Name:        e.Label(),
			Count:       count,
			Percentage:  pct,
			Description: describeShare(pct),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Percentage > out[j].Percentage
	})
	return out
}

func describeShare(pct float64) string {
	switch {
	case pct > 30:
		return "Dominant emotion"
	case pct > 20:
		return "Secondary emotion"
	case pct > 10:
		return "Frequent"
	default:
		return "Occasional"
	}
}
