// Package report assembles per-session play reports from telemetry.
package report

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/verte-zerg/gamepulse/internal/emotion"
	"github.com/verte-zerg/gamepulse/internal/model"
	"github.com/verte-zerg/gamepulse/internal/segment"
	"github.com/verte-zerg/gamepulse/internal/stats"
)

const sessionDateLayout = "2006-01-02"

// Report is the analyst-facing summary of one player's session.
type Report struct {
	Player              string             `json:"player"`
	Session             string             `json:"session"`
	SessionDate         string             `json:"sessionDate"`
	StartTime           time.Time          `json:"startTime"`
	EndTime             time.Time          `json:"endTime"`
	Duration            string             `json:"duration"`
	DurationMs          int64              `json:"durationMs"`
	DominantEmotion     string             `json:"dominantEmotion"`
	Score               float64            `json:"score"`
	TotalWordsCompleted int                `json:"totalWordsCompleted"`
	Engagement          float64            `json:"engagement"`
	EngagementText      string             `json:"engagementText"`
	Levels              []LevelSummary     `json:"levels"`
	EmotionCounts       EmotionCounts      `json:"emotionCounts"`
	EmotionSeries       []EmotionPoint     `json:"emotionSeries"`
	EmotionBreakdown    []EmotionBreakdown `json:"emotionBreakdown"`
}

// LevelSummary is the presentation form of a level.
type LevelSummary struct {
	Name           string  `json:"name"`
	Completed      bool    `json:"completed"`
	WordsCompleted int     `json:"wordsCompleted"`
	TotalScore     float64 `json:"totalScore"`
}

// EmotionPoint is one sample of the emotion time series.
type EmotionPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Emotion   string    `json:"emotion"`
}

// Build runs the full pipeline over one player's records and returns the
// reports ordered for display, most recent session first.
func Build(player string, records []model.Record) []Report {
	sessions := BuildSessions(records)
	OrderForDisplay(sessions)
	reports := make([]Report, 0, len(sessions))
	for _, s := range sessions {
		reports = append(reports, Assemble(player, s))
	}
	return reports
}

// BuildSessions segments records into sessions and levels and computes their
// metrics. Sessions are returned in ascending time order.
func BuildSessions(records []model.Record) []model.Session {
	groups := segment.Sessions(records)
	sessions := make([]model.Session, 0, len(groups))
	for i, group := range groups {
		sessions = append(sessions, buildSession(i, group))
	}
	return sessions
}

func buildSession(index int, records []model.Record) model.Session {
	levelGroups := segment.Levels(records)
	levels := make([]model.Level, 0, len(levelGroups))
	results := make([]stats.LevelResult, 0, len(levelGroups))
	for i, group := range levelGroups {
		res := stats.LevelMetrics(group)
		results = append(results, res)
		levels = append(levels, model.Level{
			Name:           fmt.Sprintf("Level %d", i+1),
			Records:        group,
			WordsCompleted: res.WordsCompleted,
			TotalScore:     res.TotalScore,
			Completed:      res.Completed,
		})
	}
	sm := stats.SessionMetrics(records, results)
	return model.Session{
		Index:               index,
		Name:                fmt.Sprintf("Session #%d", index+1),
		Records:             records,
		Levels:              levels,
		StartTime:           sm.StartTime,
		EndTime:             sm.EndTime,
		TotalWordsCompleted: sm.TotalWordsCompleted,
		TotalScore:          sm.TotalScore,
		DominantEmotion:     sm.DominantEmotion.Label(),
	}
}

// OrderForDisplay sorts sessions by end time, most recent first.
func OrderForDisplay(sessions []model.Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].EndTime.After(sessions[j].EndTime)
	})
}

// Assemble builds the report for one computed session.
func Assemble(player string, s model.Session) Report {
	counts := stats.EmotionCounts(s.Records)
	engagement := stats.Engagement(s.TotalScore, counts)
	elapsed := s.EndTime.Sub(s.StartTime)

	levels := make([]LevelSummary, 0, len(s.Levels))
	for _, lvl := range s.Levels {
		levels = append(levels, LevelSummary{
			Name:           lvl.Name,
			Completed:      lvl.Completed,
			WordsCompleted: lvl.WordsCompleted,
			TotalScore:     lvl.TotalScore,
		})
	}

	series := make([]EmotionPoint, 0, len(s.Records))
	for _, r := range s.Records {
		series = append(series, EmotionPoint{
			Timestamp: r.Timestamp,
			Emotion:   emotion.Classify(r.Emotion).String(),
		})
	}

	return Report{
		Player:              player,
		Session:             s.Name,
		SessionDate:         s.StartTime.UTC().Format(sessionDateLayout),
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		Duration:            FormatDuration(elapsed),
		DurationMs:          elapsed.Milliseconds(),
		DominantEmotion:     s.DominantEmotion,
		Score:               s.TotalScore,
		TotalWordsCompleted: s.TotalWordsCompleted,
		Engagement:          engagement,
		EngagementText:      FormatEngagement(engagement),
		Levels:              levels,
		EmotionCounts:       EmotionCounts(counts),
		EmotionSeries:       series,
		EmotionBreakdown:    Breakdown(counts),
	}
}

// FilterSince keeps the reports whose session ended at or after since. A nil
// since keeps everything. Sessions are never cut, so a session that started
// before since is reported whole.
func FilterSince(reports []Report, since *time.Time) []Report {
	if since == nil {
		return reports
	}
	kept := make([]Report, 0, len(reports))
	for _, r := range reports {
		if !r.EndTime.Before(*since) {
			kept = append(kept, r)
		}
	}
	return kept
}

// FormatDuration renders whole minutes and seconds, e.g. "1 min 30 sec".
func FormatDuration(d time.Duration) string {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := (ms % 60000) / 1000
	switch {
	case minutes == 0:
		return fmt.Sprintf("%d sec", seconds)
	case seconds == 0:
		return fmt.Sprintf("%d min", minutes)
	default:
		return fmt.Sprintf("%d min %d sec", minutes, seconds)
	}
}

// FormatEngagement renders an engagement value as "{value}/10".
func FormatEngagement(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "/10"
}
