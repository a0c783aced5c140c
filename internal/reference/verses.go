package reference

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// VerseRange is a single verse or, when Dash is set, an inclusive range of
// verses. End is only meaningful for a range and may be 0 as written.
type VerseRange struct {
	Start int
	End   int
	// Dash is the range separator as written: "-", "–" or "—".
	Dash string
}

// Ranged reports whether r spans more than a single verse token.
func (r VerseRange) Ranged() bool { return r.Dash != "" }

// String renders the range numerically, without whitespace. Leading zeros
// are not kept; Match.VerseSpec holds the digits as written.
func (r VerseRange) String() string {
	if !r.Ranged() {
		return strconv.Itoa(r.Start)
	}
	return strconv.Itoa(r.Start) + r.Dash + strconv.Itoa(r.End)
}

type verseList struct {
	Items []*verseItem `parser:"@@ ( \",\" @@ )*"`
}

type verseItem struct {
	Start int        `parser:"@Int"`
	End   *verseTail `parser:"@@?"`
}

type verseTail struct {
	Dash  string `parser:"@Dash"`
	Verse int    `parser:"@Int"`
}

var verseLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Dash", Pattern: `[-\x{2013}\x{2014}]`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Whitespace", Pattern: `[\s\x{00A0}]+`},
})

var verseParser = participle.MustBuild[verseList](
	participle.Lexer(verseLexer),
	participle.Elide("Whitespace"),
)

// ParseVerses parses a verse spec such as "16", "1-13" or "3, 7–9".
func ParseVerses(spec string) ([]VerseRange, error) {
	list, err := verseParser.ParseString("", spec)
	if err != nil {
		return nil, fmt.Errorf("parse verse spec %q: %w", spec, err)
	}
	out := make([]VerseRange, 0, len(list.Items))
	for _, item := range list.Items {
		r := VerseRange{Start: item.Start}
		if item.End != nil {
			r.End = item.End.Verse
			r.Dash = item.End.Dash
		}
		out = append(out, r)
	}
	return out, nil
}

// FormatVerses joins ranges with "," and no whitespace.
func FormatVerses(ranges []VerseRange) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return strings.Join(parts, ",")
}
