package emotion

import "testing"

func strPtr(s string) *string {
	return &s
}

func TestClassify(t *testing.T) {
	cases := []struct {
		in   *string
		want Emotion
	}{
		{nil, Neutral},
		{strPtr("happy"), Happy},
		{strPtr("HAPPY"), Happy},
		{strPtr("Surprised"), Surprised},
		{strPtr("  sad"), Neutral},
		{strPtr("joy"), Neutral},
		{strPtr(""), Neutral},
		{strPtr("Angry"), Angry},
	}
	for _, tc := range cases {
		if got := Classify(tc.in); got != tc.want {
			label := "<nil>"
			if tc.in != nil {
				label = *tc.in
			}
			t.Fatalf("Classify(%q) = %v, want %v", label, got, tc.want)
		}
	}
}

func TestDominantTieGoesToCanonicalOrder(t *testing.T) {
	var c Counts
	c[Happy] = 3
	c[Sad] = 3
	if got := c.Dominant(); got != Happy {
		t.Fatalf("expected happy, got %v", got)
	}

	var later Counts
	later[Angry] = 2
	later[Fear] = 2
	if got := later.Dominant(); got != Fear {
		t.Fatalf("expected fear, got %v", got)
	}
}

func TestDominantEmptyIsNeutral(t *testing.T) {
	var c Counts
	if got := c.Dominant(); got != Neutral {
		t.Fatalf("expected neutral, got %v", got)
	}
	if got := c.Dominant().Label(); got != "Neutral" {
		t.Fatalf("expected Neutral label, got %q", got)
	}
}

func TestTallyAndUnique(t *testing.T) {
	c := Tally([]*string{strPtr("happy"), strPtr("Happy"), nil, strPtr("bored"), strPtr("fear")})
	if c.Get(Happy) != 2 || c.Get(Neutral) != 2 || c.Get(Fear) != 1 {
		t.Fatalf("unexpected counts: %v", c)
	}
	if c.Total() != 5 {
		t.Fatalf("expected total 5, got %d", c.Total())
	}
	if c.Unique() != 3 {
		t.Fatalf("expected 3 unique, got %d", c.Unique())
	}
}

func TestLabel(t *testing.T) {
	if got := Surprised.Label(); got != "Surprised" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := Emotion(42).String(); got != "neutral" {
		t.Fatalf("out of range should be neutral, got %q", got)
	}
}

func TestGlyphsAreDistinct(t *testing.T) {
	seen := map[byte]Emotion{}
	for _, e := range All() {
		g := e.Glyph()
		if prev, ok := seen[g]; ok {
			t.Fatalf("%s and %s share glyph %q", prev, e, g)
		}
		seen[g] = e
	}
	if Emotion(42).Glyph() != Neutral.Glyph() {
		t.Fatalf("out-of-range emotion must render as neutral")
	}
}
