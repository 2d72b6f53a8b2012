package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/gamepulse/internal/model"
	"github.com/verte-zerg/gamepulse/internal/report"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "gamepulse.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRecords(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	score := 42.5
	words := 0
	emo := "Happy"
	records := []model.Record{
		{PlayerID: "mia", Timestamp: base.Add(time.Minute), Score: &score, WordsFound: &words, Emotion: &emo},
		{PlayerID: "mia", Timestamp: base.Add(1500 * time.Millisecond)},
		{PlayerID: "leo", Timestamp: base.Add(time.Hour)},
	}
	n, err := st.InsertRecords(ctx, records)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}

	got, err := st.ListRecords(ctx, "mia")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	first := got[0]
	if first.Score == nil || *first.Score != 42.5 {
		t.Fatalf("score not preserved: %v", first.Score)
	}
	if first.WordsFound == nil || *first.WordsFound != 0 {
		t.Fatalf("wordsFound 0 must round-trip as present, got %v", first.WordsFound)
	}
	if first.Emotion == nil || *first.Emotion != "Happy" {
		t.Fatalf("emotion not preserved: %v", first.Emotion)
	}
	if !first.Timestamp.Equal(base.Add(time.Minute)) {
		t.Fatalf("unexpected timestamp %v", first.Timestamp)
	}
	second := got[1]
	if second.Score != nil || second.WordsFound != nil || second.Emotion != nil {
		t.Fatalf("absent fields must stay absent: %+v", second)
	}
	if !second.Timestamp.Equal(base.Add(1500 * time.Millisecond)) {
		t.Fatalf("sub-second precision lost: %v", second.Timestamp)
	}
}

func TestSinceKeepsSessionAcrossMidnight(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	midnight := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)
	score := 20.0
	_, err := st.InsertRecords(ctx, []model.Record{
		{PlayerID: "mia", Timestamp: midnight.Add(-2 * time.Hour)},
		{PlayerID: "mia", Timestamp: midnight.Add(-30 * time.Second)},
		{PlayerID: "mia", Timestamp: midnight.Add(30 * time.Second), Score: &score},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	records, err := st.ListRecords(ctx, "mia")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}

	reports := report.FilterSince(report.Build("mia", records), &midnight)
	if len(reports) != 1 {
		t.Fatalf("expected only the session ending after midnight, got %d", len(reports))
	}
	r := reports[0]
	if !r.StartTime.Equal(midnight.Add(-30*time.Second)) || r.Duration != "1 min" {
		t.Fatalf("session cut at the since boundary: start=%v duration=%s", r.StartTime, r.Duration)
	}
	if r.Session != "Session #2" || r.Score != 20 {
		t.Fatalf("unexpected session: %s score=%v", r.Session, r.Score)
	}
}

func TestListPlayers(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	_, err := st.InsertRecords(ctx, []model.Record{
		{PlayerID: "mia", Timestamp: base},
		{PlayerID: "leo", Timestamp: base.Add(2 * time.Hour)},
		{PlayerID: "mia", Timestamp: base.Add(time.Hour)},
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	players, err := st.ListPlayers(ctx)
	if err != nil {
		t.Fatalf("list players: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(players))
	}
	if players[0].PlayerID != "leo" || players[1].PlayerID != "mia" {
		t.Fatalf("unexpected order: %+v", players)
	}
	if players[1].Records != 2 || !players[1].LastActivity.Equal(base.Add(time.Hour)) {
		t.Fatalf("unexpected summary: %+v", players[1])
	}
}

func TestInsertEmpty(t *testing.T) {
	st := openTestStore(t)
	n, err := st.InsertRecords(context.Background(), nil)
	if err != nil || n != 0 {
		t.Fatalf("expected no-op insert, got %d, %v", n, err)
	}
}
