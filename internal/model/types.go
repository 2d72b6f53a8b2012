// Package model defines shared data structures.
package model

import "time"

// ReportConfig defines options for report output.
type ReportConfig struct {
	Player string
	Format string
	Color  bool
	Since  *time.Time
}

// Record is a single gameplay telemetry tick as received from storage.
// Pointer fields are nil when the source omitted the value.
type Record struct {
	PlayerID   string
	Timestamp  time.Time
	Score      *float64
	WordsFound *int
	Emotion    *string
}

// ScoreValue returns the record score, treating an absent score as 0.
func (r Record) ScoreValue() float64 {
	if r.Score == nil {
		return 0
	}
	return *r.Score
}

// HasWordsFound reports whether the record carries a words-found counter.
func (r Record) HasWordsFound() bool {
	return r.WordsFound != nil
}

// Level is a contiguous run of a session's records between progress resets.
type Level struct {
	Name           string
	Records        []Record
	WordsCompleted int
	TotalScore     float64
	Completed      bool
}

// Session is a continuous span of play for one player.
type Session struct {
	Index               int
	Name                string
	Records             []Record
	Levels              []Level
	StartTime           time.Time
	EndTime             time.Time
	TotalWordsCompleted int
	TotalScore          float64
	DominantEmotion     string
}

// PlayerSummary describes a player known to the store.
type PlayerSummary struct {
	PlayerID     string
	Records      int
	LastActivity time.Time
}
