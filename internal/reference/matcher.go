// Package reference finds scripture citations such as "John 3:16" or
// "1 Thess 3:1-13" in plain text and reduces them to a canonical form.
package reference

import (
	"errors"
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/stronganchortech/bible-linker/internal/books"
)

// ErrNoReference is returned by Parse when the input is not a reference.
var ErrNoReference = errors.New("not a scripture reference")

// Match is one reference found in a text run. Start and Length are byte
// offsets into the scanned text.
type Match struct {
	Book    books.Book
	Chapter int
	// VerseSpec is the verse part after the colon with whitespace removed
	// and dash entities decoded, or "" for a chapter-level reference.
	VerseSpec string
	Verses    []VerseRange
	Start     int
	Length    int
}

// End returns the offset just past the match.
func (m Match) End() int { return m.Start + m.Length }

// Matcher scans text for references to the books of one table. A Matcher
// holds no per-scan state and may be shared between goroutines.
type Matcher struct {
	table *books.Table
	find  *regexp.Regexp
	lead  *regexp.Regexp
}

// NewMatcher compiles a matcher for table.
func NewMatcher(table *books.Table) *Matcher {
	head := `(` + table.Pattern() + `)` + books.Space + `+([1-9][0-9]{0,2})(?:[^0-9\pL_]|$)`
	return &Matcher{
		table: table,
		find:  regexp.MustCompile(`(?i)\b` + head),
		lead:  regexp.MustCompile(`(?i)^` + head),
	}
}

var defaultMatcher = sync.OnceValue(func() *Matcher {
	return NewMatcher(books.Default())
})

// Default returns the matcher for the built-in book table.
func Default() *Matcher { return defaultMatcher() }

// Scan returns the references in text in order of their start offset.
// Matches never overlap: scanning resumes after the end of each match.
// The sequence can be ranged over any number of times.
func (m *Matcher) Scan(text string) iter.Seq[Match] {
	return m.ScanAfter(text, 0)
}

// ScanAfter is Scan for text that continues a run ending in before. A
// reference at the start of text is rejected when before is a letter, digit
// or underscore, as it would be if the two were scanned together. A zero
// before means text starts a run.
func (m *Matcher) ScanAfter(text string, before rune) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		for pos := 0; pos < len(text); {
			match, ok := m.next(text, pos, before)
			if !ok || !yield(match) {
				return
			}
			pos = match.End()
		}
	}
}

// All collects Scan into a slice.
func (m *Matcher) All(text string) []Match {
	var out []Match
	for match := range m.Scan(text) {
		out = append(out, match)
	}
	return out
}

// Parse reads s, trimmed of surrounding whitespace, as exactly one reference.
func (m *Matcher) Parse(s string) (Match, error) {
	s = strings.TrimSpace(s)
	match, ok := m.next(s, 0, 0)
	if !ok || match.Start != 0 || match.Length != len(s) {
		return Match{}, fmt.Errorf("%w: %q", ErrNoReference, s)
	}
	return match, nil
}

// Parse reads s as a reference using the default matcher.
func Parse(s string) (Match, error) { return Default().Parse(s) }

func (m *Matcher) next(text string, pos int, before rune) (Match, bool) {
	for pos < len(text) {
		loc := m.find.FindStringSubmatchIndex(text[pos:])
		if loc == nil {
			return Match{}, false
		}
		start := pos + loc[2]
		book, ok := m.table.Lookup(spaceEntities.Replace(text[start : pos+loc[3]]))
		if !ok || wordBefore(text, start, before) {
			_, size := utf8.DecodeRuneInString(text[start:])
			pos = start + size
			continue
		}

		chapterEnd := pos + loc[5]
		chapter, _ := strconv.Atoi(text[pos+loc[4] : chapterEnd])
		end, spec := m.verses(text, chapterEnd)
		var verses []VerseRange
		if spec != "" {
			parsed, err := ParseVerses(spec)
			if err != nil {
				end, spec = chapterEnd, ""
			} else {
				verses = parsed
			}
		}
		return Match{
			Book:      book,
			Chapter:   chapter,
			VerseSpec: spec,
			Verses:    verses,
			Start:     start,
			Length:    end - start,
		}, true
	}
	return Match{}, false
}

// verses reads an optional ":" verse spec at i and returns the end offset of
// the reference together with the normalized spec. A comma continues the
// spec unless another reference starts after it, as in "John 3:16, 2 Kings 4:1".
func (m *Matcher) verses(text string, i int) (int, string) {
	if i >= len(text) || text[i] != ':' {
		return i, ""
	}
	var spec strings.Builder
	end, ok := verseToken(text, skipSpace(text, i+1), &spec)
	if !ok {
		return i, ""
	}
	for end < len(text) && text[end] == ',' {
		k := skipSpace(text, end+1)
		if m.lead.MatchString(text[k:]) {
			break
		}
		var tok strings.Builder
		next, ok := verseToken(text, k, &tok)
		if !ok {
			break
		}
		spec.WriteByte(',')
		spec.WriteString(tok.String())
		end = next
	}
	return end, spec.String()
}

// verseToken reads digits, optionally followed by a dash and more digits.
// A dash with no digits after it is not part of the token.
func verseToken(text string, i int, b *strings.Builder) (int, bool) {
	j := digits(text, i)
	if j == i {
		return i, false
	}
	b.WriteString(text[i:j])
	if dash, w := dashAt(text, j); w > 0 {
		if k := digits(text, j+w); k > j+w {
			b.WriteString(dash)
			b.WriteString(text[j+w : k])
			j = k
		}
	}
	return j, true
}

func digits(text string, i int) int {
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	return i
}

var dashes = []struct {
	raw, dash string
}{
	{"-", "-"},
	{"\u2013", "\u2013"},
	{"\u2014", "\u2014"},
	{"&ndash;", "\u2013"},
	{"&#8211;", "\u2013"},
	{"&mdash;", "\u2014"},
	{"&#8212;", "\u2014"},
}

func dashAt(text string, i int) (string, int) {
	for _, d := range dashes {
		if strings.HasPrefix(text[i:], d.raw) {
			return d.dash, len(d.raw)
		}
	}
	return "", 0
}

var spaceEntities = strings.NewReplacer("&nbsp;", " ", "&#160;", " ")

func skipSpace(text string, i int) int {
	for i < len(text) {
		if strings.HasPrefix(text[i:], "&nbsp;") || strings.HasPrefix(text[i:], "&#160;") {
			i += len("&nbsp;")
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		switch r {
		case ' ', '\t', '\n', '\f', '\r', '\u00a0':
			i += size
		default:
			return i
		}
	}
	return i
}

func wordBefore(text string, i int, before rune) bool {
	r := before
	if i > 0 {
		r, _ = utf8.DecodeLastRuneInString(text[:i])
	}
	return isWord(r)
}

func isWord(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
