// Package telemetry decodes raw gameplay telemetry batches.
package telemetry

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/verte-zerg/gamepulse/internal/model"
)

var (
	// ErrInvalidTimestamp marks a record whose timestamp is missing or cannot be parsed.
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	// ErrMalformedBatch marks input that is not a JSON array of records.
	ErrMalformedBatch = errors.New("malformed telemetry batch")
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// PlayerBatch groups the records of one player.
type PlayerBatch struct {
	PlayerID string
	Records  []model.Record
}

// Decode reads a JSON array of telemetry objects. A record without a usable
// timestamp fails the whole batch since it cannot be placed in time.
func Decode(r io.Reader) ([]model.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read telemetry: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes is Decode for an in-memory payload.
func DecodeBytes(data []byte) ([]model.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedBatch)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrMalformedBatch)
	}
	items := root.Array()
	records := make([]model.Record, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: element %d is not an object", ErrMalformedBatch, i)
		}
		rec, err := decodeRecord(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRecord(item gjson.Result) (model.Record, error) {
	ts, err := parseTimestamp(item.Get("timestamp"))
	if err != nil {
		return model.Record{}, err
	}
	return model.Record{
		PlayerID:   item.Get("username").String(),
		Timestamp:  ts,
		Score:      parseScore(item.Get("score")),
		WordsFound: parseWordsFound(item.Get("wordsFound")),
		Emotion:    parseEmotion(item.Get("emotion")),
	}, nil
}

// ParseTimestamp parses an ISO-8601 instant. Values without a zone are read as UTC.
func ParseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, value)
}

func parseTimestamp(v gjson.Result) (time.Time, error) {
	if !v.Exists() || v.Type != gjson.String {
		return time.Time{}, fmt.Errorf("%w: missing or not a string", ErrInvalidTimestamp)
	}
	return ParseTimestamp(v.Str)
}

// parseScore accepts numbers and numeric strings; anything else is absent.
func parseScore(v gjson.Result) *float64 {
	var score float64
	switch v.Type {
	case gjson.Number:
		score = v.Num
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		score = parsed
	default:
		return nil
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil
	}
	return &score
}

func parseWordsFound(v gjson.Result) *int {
	if v.Type != gjson.Number {
		return nil
	}
	if v.Num != math.Trunc(v.Num) {
		return nil
	}
	n := int(v.Int())
	return &n
}

func parseEmotion(v gjson.Result) *string {
	if v.Type != gjson.String {
		return nil
	}
	s := v.Str
	return &s
}

// GroupByPlayer splits a mixed batch per player, keeping players in first-seen order.
func GroupByPlayer(records []model.Record) []PlayerBatch {
	var batches []PlayerBatch
	index := map[string]int{}
	for _, r := range records {
		i, ok := index[r.PlayerID]
		if !ok {
			i = len(batches)
			index[r.PlayerID] = i
			batches = append(batches, PlayerBatch{PlayerID: r.PlayerID})
		}
		batches[i].Records = append(batches[i].Records, r)
	}
	return batches
}
