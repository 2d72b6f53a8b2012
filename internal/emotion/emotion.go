// Package emotion normalizes emotion labels and tallies them in a fixed order.
package emotion

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Emotion is one of the canonical emotion categories.
type Emotion int

// Canonical categories. The declaration order is the tie-break order.
const (
	Happy Emotion = iota
	Sad
	Disgust
	Neutral
	Fear
	Angry
	Surprised
	numEmotions
)

var names = [numEmotions]string{
	Happy:     "happy",
	Sad:       "sad",
	Disgust:   "disgust",
	Neutral:   "neutral",
	Fear:      "fear",
	Angry:     "angry",
	Surprised: "surprised",
}

var glyphs = [numEmotions]byte{
	Happy:     'H',
	Sad:       'S',
	Disgust:   'D',
	Neutral:   '.',
	Fear:      'F',
	Angry:     'A',
	Surprised: '!',
}

var titleCaser = cases.Title(language.English)

// All returns the canonical categories in tie-break order.
func All() []Emotion {
	out := make([]Emotion, numEmotions)
	for i := range out {
		out[i] = Emotion(i)
	}
	return out
}

// String returns the lowercase category name.
func (e Emotion) String() string {
	if e < 0 || e >= numEmotions {
		return names[Neutral]
	}
	return names[e]
}

// Glyph returns the single-character mark used in emotion timelines.
func (e Emotion) Glyph() byte {
	if e < 0 || e >= numEmotions {
		return glyphs[Neutral]
	}
	return glyphs[e]
}

// Label returns the category name with a leading capital.
func (e Emotion) Label() string {
	return titleCaser.String(e.String())
}

// Classify maps a raw label to a canonical category. Absent or unknown labels are neutral.
func Classify(raw *string) Emotion {
	if raw == nil {
		return Neutral
	}
	return Parse(*raw)
}

// Parse maps a label string to a canonical category, defaulting to neutral.
func Parse(raw string) Emotion {
	lower := strings.ToLower(raw)
	for i, name := range names {
		if lower == name {
			return Emotion(i)
		}
	}
	return Neutral
}

// Counts holds per-category occurrence counts indexed by Emotion.
type Counts [numEmotions]int

// Tally classifies each label and counts the results.
func Tally(labels []*string) Counts {
	var c Counts
	for _, l := range labels {
		c[Classify(l)]++
	}
	return c
}

// Get returns the count for e.
func (c Counts) Get(e Emotion) int {
	if e < 0 || e >= numEmotions {
		return 0
	}
	return c[e]
}

// Total returns the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Unique returns how many categories were observed at least once.
func (c Counts) Unique() int {
	n := 0
	for _, v := range c {
		if v > 0 {
			n++
		}
	}
	return n
}

// Dominant returns the category with the greatest count. Ties go to the
// category that comes first in canonical order; all-zero counts yield neutral.
func (c Counts) Dominant() Emotion {
	dominant := Neutral
	maxCount := 0
	for i, v := range c {
		if v > maxCount {
			maxCount = v
			dominant = Emotion(i)
		}
	}
	return dominant
}
