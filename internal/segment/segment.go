// Package segment splits telemetry into sessions and levels.
package segment

import (
	"sort"
	"time"

	"github.com/verte-zerg/gamepulse/internal/model"
)

// InactivityGap is the longest pause allowed between two ticks of one session.
const InactivityGap = 120 * time.Second

const (
	levelFullWords  = 4
	levelResetWords = 0
)

// Sessions orders records by timestamp and splits them wherever the pause
// between consecutive records exceeds InactivityGap.
// The input slice is not modified.
func Sessions(records []model.Record) [][]model.Record {
	if len(records) == 0 {
		return nil
	}
	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sessions [][]model.Record
	start := 0
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Timestamp.Sub(sorted[i-1].Timestamp) > InactivityGap {
			sessions = append(sessions, sorted[start:i:i])
			start = i
		}
	}
	return append(sessions, sorted[start:len(sorted):len(sorted)])
}

// Levels splits an ordered session at every words-found rollover.
func Levels(records []model.Record) [][]model.Record {
	if len(records) == 0 {
		return nil
	}
	var levels [][]model.Record
	start := 0
	for i := 1; i < len(records); i++ {
		if isLevelReset(records[i-1], records[i]) {
			levels = append(levels, records[start:i:i])
			start = i
		}
	}
	return append(levels, records[start:len(records):len(records)])
}

// isLevelReset reports whether cur starts a new level after prev. Both records
// must carry a words-found counter; a missing counter never splits.
func isLevelReset(prev, cur model.Record) bool {
	if !prev.HasWordsFound() || !cur.HasWordsFound() {
		return false
	}
	return *prev.WordsFound == levelFullWords && *cur.WordsFound == levelResetWords
}
