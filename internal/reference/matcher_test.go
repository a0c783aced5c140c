package reference

import (
	"errors"
	"slices"
	"testing"
)

func displays(text string) []string {
	var out []string
	for m := range Default().Scan(text) {
		out = append(out, Canonicalize(m).Display)
	}
	return out
}

func TestScan(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"verse", "Read John 3:16 today.", []string{"John 3:16"}},
		{"numbered range and chapter", "See 1 Thessalonians 3:1-13 and Psalm 23.", []string{"1 Thessalonians 3:1-13", "Psalm 23"}},
		{"bare book", "Jonah went to Nineveh.", nil},
		{"abbreviation with period", "Cf. 1 Thess. 3:1", []string{"1 Thessalonians 3:1"}},
		{"glued prefix", "1Jn 4:8", []string{"1 John 4:8"}},
		{"roman prefix", "II Kings 2:11", []string{"2 Kings 2:11"}},
		{"ordinal prefix", "First Corinthians 13", []string{"1 Corinthians 13"}},
		{"verse list", "Romans 8:28, 31-39", []string{"Romans 8:28,31-39"}},
		{"en dash kept", "Gen 1:1–3", []string{"Genesis 1:1–3"}},
		{"dash entity", "Gen 1:1&ndash;3", []string{"Genesis 1:1–3"}},
		{"space after colon", "John 3: 16", []string{"John 3:16"}},
		{"nbsp", "John\u00a03:16", []string{"John 3:16"}},
		{"nbsp entity", "1&nbsp;John&nbsp;1:9", []string{"1 John 1:9"}},
		{"case insensitive", "JOHN 3:16", []string{"John 3:16"}},
		{"longest alias", "Song of Solomon 2:1", []string{"Song of Solomon 2:1"}},
		{"comma before numbered book", "John 3:16, 2 Kings 4:1", []string{"John 3:16", "2 Kings 4:1"}},
		{"dangling dash", "John 3:16- and more", []string{"John 3:16"}},
		{"colon without verse", "Mark 4: the sower", []string{"Mark 4"}},
		{"leading zero chapter", "John 03:16", nil},
		{"four digit chapter", "John 1000", nil},
		{"chapter followed by letter", "Acts 2b", nil},
		{"inside a word", "Saint-Johnny 3", nil},
		{"after a letter", "xJohn 3:16", nil},
		{"glued to earlier reference", "John 3:16Romans 8:28", []string{"John 3:16"}},
		{"zero range end kept", "John 3:3-0", []string{"John 3:3-0"}},
		{"leading zero verse kept", "John 3:016", []string{"John 3:016"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := displays(tt.input)
			if !slices.Equal(got, tt.want) {
				t.Fatalf("expected %q, got: %q", tt.want, got)
			}
		})
	}
}

func TestScanAfterWordRune(t *testing.T) {
	var got []string
	for m := range Default().ScanAfter("Romans 8:28 and Acts 2:38", '6') {
		got = append(got, Canonicalize(m).Display)
	}
	if !slices.Equal(got, []string{"Acts 2:38"}) {
		t.Fatalf("expected only the later reference, got: %q", got)
	}

	got = nil
	for m := range Default().ScanAfter("Romans 8:28", ' ') {
		got = append(got, Canonicalize(m).Display)
	}
	if !slices.Equal(got, []string{"Romans 8:28"}) {
		t.Fatalf("expected reference after a space, got: %q", got)
	}
}

func TestScanDisplayCoversMatchedText(t *testing.T) {
	for _, text := range []string{"John 3:3-0", "John 3:016", "Genesis 1:1–3", "Romans 8:28,31-39"} {
		m, err := Parse(text)
		if err != nil {
			t.Fatalf("parse %q: %v", text, err)
		}
		if got := Canonicalize(m).Display; got != text {
			t.Fatalf("expected display %q, got: %q", text, got)
		}
	}
}

func TestScanDoesNotMatchKingsWithoutPrefix(t *testing.T) {
	// "Kings" alone is not a book name.
	if got := displays("ii Kings 2"); got != nil {
		t.Fatalf("expected no match, got: %q", got)
	}
}

func TestScanOffsets(t *testing.T) {
	text := "See 1 Thessalonians 3:1-13 and Psalm 23."
	matches := Default().All(text)
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got: %d", len(matches))
	}
	if got := text[matches[0].Start:matches[0].End()]; got != "1 Thessalonians 3:1-13" {
		t.Fatalf("unexpected first span: %q", got)
	}
	if got := text[matches[1].Start:matches[1].End()]; got != "Psalm 23" {
		t.Fatalf("unexpected second span: %q", got)
	}
	if matches[1].VerseSpec != "" || matches[1].Verses != nil {
		t.Fatalf("expected chapter-level reference, got: %+v", matches[1])
	}
}

func TestScanNonOverlapping(t *testing.T) {
	text := "John 3:16 John 3:17, 18; Gen 1:1-3, 5 Ex 20 1 Jn 1:9,2 Kings 4:1 Ps 23:1–6"
	prev := 0
	for m := range Default().Scan(text) {
		if m.Start < prev {
			t.Fatalf("match at %d overlaps previous end %d", m.Start, prev)
		}
		prev = m.End()
	}
}

func TestScanIsRestartable(t *testing.T) {
	text := "Matt 5:3-12 and Luke 6:20"
	seq := Default().Scan(text)
	var first, second []Match
	for m := range seq {
		first = append(first, m)
	}
	for m := range seq {
		second = append(second, m)
	}
	if len(first) != 2 || len(first) != len(second) {
		t.Fatalf("expected two identical passes, got: %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Start != second[i].Start || first[i].Length != second[i].Length {
			t.Fatalf("pass mismatch at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestScanStopsEarly(t *testing.T) {
	n := 0
	for range Default().Scan("John 1 John 2 John 3") {
		n++
		break
	}
	if n != 1 {
		t.Fatalf("expected one match before break, got: %d", n)
	}
}

func TestParse(t *testing.T) {
	m, err := Parse("  1 thess 3:1-13 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := Canonicalize(m).Display; got != "1 Thessalonians 3:1-13" {
		t.Fatalf("expected canonical display, got: %s", got)
	}
	want := []VerseRange{{Start: 1, End: 13, Dash: "-"}}
	if !slices.Equal(m.Verses, want) {
		t.Fatalf("expected %+v, got: %+v", want, m.Verses)
	}
}

func TestParseRejectsTrailingText(t *testing.T) {
	for _, input := range []string{"John 3:16 today", "Jonah", "", "see John 3"} {
		if _, err := Parse(input); !errors.Is(err, ErrNoReference) {
			t.Fatalf("expected ErrNoReference for %q, got: %v", input, err)
		}
	}
}
