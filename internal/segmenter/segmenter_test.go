package segmenter

import (
	"strings"
	"testing"
)

func TestSegment_ShortLines(t *testing.T) {
	units := Segment("Bonjour le monde.\n\nComment allez-vous?")

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d: %v", len(units), units)
	}
	if units[0].Text != "Bonjour le monde." {
		t.Errorf("unit 0: got %q", units[0].Text)
	}
	if units[1].Text != "Comment allez-vous?" {
		t.Errorf("unit 1: got %q", units[1].Text)
	}
	for i, u := range units {
		if u.Index != i {
			t.Errorf("unit %d has index %d", i, u.Index)
		}
	}
}

func TestSegment_ShortLineNeverSplitMidSentence(t *testing.T) {
	// Two sentences on one short line stay a single unit.
	units := Segment("One. Two.")
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d: %v", len(units), units)
	}
	if units[0].Text != "One. Two." {
		t.Errorf("got %q", units[0].Text)
	}
}

func TestSegment_LongLineSplitsAtSentences(t *testing.T) {
	first := strings.Repeat("word ", 15) + "ends here."
	second := "And the second sentence continues for a while longer still."
	units := Segment(first + " " + second)

	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d: %v", len(units), units)
	}
	if units[0].Text != first {
		t.Errorf("unit 0: got %q, want %q", units[0].Text, first)
	}
	if units[1].Text != second {
		t.Errorf("unit 1: got %q, want %q", units[1].Text, second)
	}
}

func TestSegment_Empty(t *testing.T) {
	if units := Segment(""); len(units) != 0 {
		t.Errorf("expected no units, got %v", units)
	}
	if units := Segment("\n \n\t\n"); len(units) != 0 {
		t.Errorf("expected no units for blank input, got %v", units)
	}
}

func TestSegment_Deterministic(t *testing.T) {
	text := "Alpha. Beta!\nGamma?"
	first := Segment(text)
	for i := 0; i < 10; i++ {
		again := Segment(text)
		if len(again) != len(first) {
			t.Fatal("segmentation is not deterministic")
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatal("segmentation is not deterministic")
			}
		}
	}
}

// Round trip: identity translation of the units must reproduce the passage's
// line and sentence boundaries under the join policy.
func TestJoin_IdentityRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "multiline",
			in:   "First line.\nSecond line.",
			want: "First line.\n\nSecond line.",
		},
		{
			name: "single line",
			in:   "Just one line with two sentences. Still one unit.",
			want: "Just one line with two sentences. Still one unit.",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			units := Segment(c.in)
			parts := make([]string, len(units))
			for i, u := range units {
				parts[i] = u.Text
			}
			got := Join(parts, Multiline(c.in))
			if got != c.want {
				t.Errorf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestMultiline(t *testing.T) {
	if Multiline("no breaks here") {
		t.Error("expected false for single-line text")
	}
	if !Multiline("a\nb") {
		t.Error("expected true for multi-line text")
	}
}
