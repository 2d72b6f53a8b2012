package segment

import (
	"testing"
	"time"

	"github.com/verte-zerg/gamepulse/internal/model"
)

var base = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

func at(sec int) model.Record {
	return model.Record{PlayerID: "kid", Timestamp: base.Add(time.Duration(sec) * time.Second)}
}

func withWords(r model.Record, n int) model.Record {
	r.WordsFound = &n
	return r
}

func TestSessionsSplitOnGap(t *testing.T) {
	records := []model.Record{at(200), at(0), at(30)}
	sessions := Sessions(records)
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if len(sessions[0]) != 2 || len(sessions[1]) != 1 {
		t.Fatalf("unexpected session sizes: %d, %d", len(sessions[0]), len(sessions[1]))
	}
	if !sessions[0][0].Timestamp.Equal(base) || !sessions[1][0].Timestamp.Equal(base.Add(200*time.Second)) {
		t.Fatalf("unexpected session order: %+v", sessions)
	}
	if !records[0].Timestamp.Equal(base.Add(200 * time.Second)) {
		t.Fatalf("input slice was reordered")
	}
}

func TestSessionsGapBoundaryIsInclusive(t *testing.T) {
	sessions := Sessions([]model.Record{at(0), at(120), at(241)})
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if len(sessions[0]) != 2 {
		t.Fatalf("a gap of exactly 120s must not split, got %d records", len(sessions[0]))
	}
}

func TestSessionsEmptyAndSingle(t *testing.T) {
	if got := Sessions(nil); len(got) != 0 {
		t.Fatalf("expected no sessions, got %d", len(got))
	}
	got := Sessions([]model.Record{at(5)})
	if len(got) != 1 || len(got[0]) != 1 {
		t.Fatalf("expected one single-record session, got %+v", got)
	}
}

func TestSessionsStableOnTies(t *testing.T) {
	a := at(10)
	a.PlayerID = "first"
	b := at(10)
	b.PlayerID = "second"
	sessions := Sessions([]model.Record{a, b})
	if sessions[0][0].PlayerID != "first" || sessions[0][1].PlayerID != "second" {
		t.Fatalf("tie order not preserved: %+v", sessions[0])
	}
}

func TestSessionsPartitionInput(t *testing.T) {
	offsets := []int{0, 500, 10, 130, 900, 1000, 1119, 1300, 1301}
	records := make([]model.Record, 0, len(offsets))
	for _, o := range offsets {
		records = append(records, at(o))
	}
	sessions := Sessions(records)
	total := 0
	for si, s := range sessions {
		if len(s) == 0 {
			t.Fatalf("session %d is empty", si)
		}
		total += len(s)
		for i := 1; i < len(s); i++ {
			if s[i].Timestamp.Sub(s[i-1].Timestamp) > InactivityGap {
				t.Fatalf("gap inside session %d exceeds threshold", si)
			}
		}
		if si > 0 {
			prev := sessions[si-1]
			if s[0].Timestamp.Sub(prev[len(prev)-1].Timestamp) <= InactivityGap {
				t.Fatalf("sessions %d and %d should have been merged", si-1, si)
			}
		}
	}
	if total != len(records) {
		t.Fatalf("expected %d records across sessions, got %d", len(records), total)
	}
}

func TestSessionsAppendDoesNotClobberNeighbour(t *testing.T) {
	sessions := Sessions([]model.Record{at(0), at(500)})
	extra := append(sessions[0], at(1))
	if len(extra) != 2 || !sessions[1][0].Timestamp.Equal(base.Add(500*time.Second)) {
		t.Fatalf("appending to one session modified the next")
	}
}

func TestLevelsSplitOnRollover(t *testing.T) {
	var records []model.Record
	for i, n := range []int{1, 2, 3, 4, 0, 1} {
		records = append(records, withWords(at(i), n))
	}
	levels := Levels(records)
	if len(levels) != 2 {
		t.Fatalf("expected 2 levels, got %d", len(levels))
	}
	if len(levels[0]) != 4 || len(levels[1]) != 2 {
		t.Fatalf("unexpected level sizes: %d, %d", len(levels[0]), len(levels[1]))
	}
	if *levels[1][0].WordsFound != 0 {
		t.Fatalf("second level should start at the reset record")
	}
}

func TestLevelsIgnoreOtherDrops(t *testing.T) {
	var records []model.Record
	for i, n := range []int{3, 0, 4, 1} {
		records = append(records, withWords(at(i), n))
	}
	if got := Levels(records); len(got) != 1 {
		t.Fatalf("expected 1 level, got %d", len(got))
	}
}

func TestLevelsRequireBothCounters(t *testing.T) {
	records := []model.Record{withWords(at(0), 4), at(1), withWords(at(2), 0)}
	if got := Levels(records); len(got) != 1 {
		t.Fatalf("expected 1 level, got %d", len(got))
	}
}

func TestLevelsScoreOnlySession(t *testing.T) {
	records := []model.Record{at(0), at(1), at(2)}
	levels := Levels(records)
	if len(levels) != 1 || len(levels[0]) != 3 {
		t.Fatalf("expected a single level covering the session, got %+v", levels)
	}
}
