package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	jsoniter "github.com/json-iterator/go"

	"github.com/verte-zerg/gamepulse/internal/emotion"
	"github.com/verte-zerg/gamepulse/internal/stats"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
)

// TextOptions controls text rendering.
type TextOptions struct {
	Color bool
}

// EncodeJSON writes reports as an indented JSON array.
func EncodeJSON(w io.Writer, reports []Report) error {
	if reports == nil {
		reports = []Report{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to encode reports: %w", err)
	}
	return nil
}

// RenderText prints a human-readable block per report.
func RenderText(w io.Writer, reports []Report, opts TextOptions) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	for _, r := range reports {
		if err := renderOne(w, r, opts); err != nil {
			return err
		}
	}
	return nil
}

// Summary returns the summary lines shown above a report's tables.
func Summary(r Report) []string {
	return []string{
		fmt.Sprintf("Session: %s  Date: %s", r.Session, r.SessionDate),
		fmt.Sprintf("Duration: %s", r.Duration),
		fmt.Sprintf("Dominant emotion: %s", r.DominantEmotion),
		fmt.Sprintf("Score: %s", formatScore(r.Score)),
		fmt.Sprintf("Words completed: %s", humanize.Comma(int64(r.TotalWordsCompleted))),
		fmt.Sprintf("Engagement: %s", r.EngagementText),
	}
}

// LevelLines renders the level table.
func LevelLines(r Report) []string {
	cols := []column{{title: "Level"}, {title: "Completed"}, {title: "Words", right: true}, {title: "Score", right: true}}
	rows := make([][]string, 0, len(r.Levels))
	for _, lvl := range r.Levels {
		done := "no"
		if lvl.Completed {
			done = "yes"
		}
		rows = append(rows, []string{lvl.Name, done, strconv.Itoa(lvl.WordsCompleted), formatScore(lvl.TotalScore)})
	}
	lines := formatTable(cols, rows)
	if len(r.Levels) > 1 {
		scores := make([]float64, len(r.Levels))
		for i, lvl := range r.Levels {
			scores[i] = lvl.TotalScore
		}
		lines = append(lines, "Score trend: "+stats.Sparkline(scores))
	}
	return lines
}

// EmotionLines renders the emotion breakdown table followed by the emotion
// timeline, one glyph per record, and its key.
func EmotionLines(r Report) []string {
	cols := []column{{title: "Emotion"}, {title: "Count", right: true}, {title: "Share", right: true}, {title: "Note"}}
	rows := make([][]string, 0, len(r.EmotionBreakdown))
	for _, b := range r.EmotionBreakdown {
		rows = append(rows, []string{b.Name, strconv.Itoa(b.Count), fmt.Sprintf("%.1f%%", b.Percentage), b.Description})
	}
	lines := formatTable(cols, rows)
	if len(r.EmotionSeries) > 1 {
		lines = append(lines, "Timeline: "+Timeline(r.EmotionSeries), "Key: "+timelineKey())
	}
	return lines
}

// Timeline renders an emotion series as one glyph per sample.
func Timeline(series []EmotionPoint) string {
	var b strings.Builder
	for _, p := range series {
		b.WriteByte(emotion.Parse(p.Emotion).Glyph())
	}
	return b.String()
}

func timelineKey() string {
	parts := make([]string, 0, len(emotion.All()))
	for _, e := range emotion.All() {
		parts = append(parts, fmt.Sprintf("%c %s", e.Glyph(), e))
	}
	return strings.Join(parts, "  ")
}

func renderOne(w io.Writer, r Report, opts TextOptions) error {
	title := fmt.Sprintf("%s - %s", r.Player, r.Session)
	lines := []string{styled(titleStyle, title, opts.Color)}
	lines = append(lines, Summary(r)...)
	lines = append(lines, "", styled(sectionStyle, "Levels", opts.Color))
	lines = append(lines, LevelLines(r)...)
	lines = append(lines, "", styled(sectionStyle, "Emotions", opts.Color))
	lines = append(lines, EmotionLines(r)...)
	lines = append(lines, "")
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func styled(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return humanize.Comma(int64(v))
	}
	return humanize.Commaf(v)
}
