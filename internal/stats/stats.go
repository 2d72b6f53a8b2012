// Package stats contains per-level and per-session metric calculations.
package stats

import (
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/gamepulse/internal/emotion"
	"github.com/verte-zerg/gamepulse/internal/model"
)

const (
	sparkChars = " .:-=+*#%@"

	pointsPerWord  = 10
	completedWords = 4

	minEngagement = 1.0
	maxEngagement = 10.0
)

// LevelResult holds the derived figures for one level.
type LevelResult struct {
	WordsCompleted int
	TotalScore     float64
	Completed      bool
}

// SessionResult holds the session-wide derived figures.
type SessionResult struct {
	TotalWordsCompleted int
	TotalScore          float64
	Emotions            emotion.Counts
	DominantEmotion     emotion.Emotion
	StartTime           time.Time
	EndTime             time.Time
}

// LevelMetrics scores one level. The last tick's score wins; when it is zero and
// the level reports words found, the score is derived from completed words.
func LevelMetrics(records []model.Record) LevelResult {
	if len(records) == 0 {
		return LevelResult{}
	}
	var res LevelResult
	res.TotalScore = records[len(records)-1].ScoreValue()
	if res.TotalScore == 0 && anyWordsFound(records) {
		res.WordsCompleted = countCompletedWords(records)
		res.TotalScore = float64(res.WordsCompleted * pointsPerWord)
	}
	res.Completed = res.TotalScore > 0 || res.WordsCompleted > 0
	return res
}

// SessionMetrics aggregates level results with the session's own last tick.
func SessionMetrics(records []model.Record, levels []LevelResult) SessionResult {
	if len(records) == 0 {
		return SessionResult{DominantEmotion: emotion.Neutral}
	}
	var res SessionResult
	for _, lvl := range levels {
		res.TotalWordsCompleted += lvl.WordsCompleted
	}
	res.TotalScore = records[len(records)-1].ScoreValue()
	if res.TotalScore == 0 && res.TotalWordsCompleted > 0 {
		res.TotalScore = float64(res.TotalWordsCompleted * pointsPerWord)
	}
	res.Emotions = EmotionCounts(records)
	res.DominantEmotion = res.Emotions.Dominant()
	res.StartTime = records[0].Timestamp
	res.EndTime = records[len(records)-1].Timestamp
	return res
}

// EmotionCounts classifies and tallies the emotion of every record.
func EmotionCounts(records []model.Record) emotion.Counts {
	var c emotion.Counts
	for _, r := range records {
		c[emotion.Classify(r.Emotion)]++
	}
	return c
}

// Engagement combines emotional variety and score into a 1-10 figure rounded to one decimal.
func Engagement(score float64, counts emotion.Counts) float64 {
	raw := float64(counts.Unique())*1.5 + score*0.5
	rounded := math.Floor(raw*10+0.5) / 10
	if rounded < minEngagement {
		return minEngagement
	}
	if rounded > maxEngagement {
		return maxEngagement
	}
	return rounded
}

// Sparkline renders a single-line ASCII sparkline for the values, low to high.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

func anyWordsFound(records []model.Record) bool {
	for _, r := range records {
		if r.HasWordsFound() {
			return true
		}
	}
	return false
}

func countCompletedWords(records []model.Record) int {
	n := 0
	for _, r := range records {
		if r.HasWordsFound() && *r.WordsFound == completedWords {
			n++
		}
	}
	return n
}
