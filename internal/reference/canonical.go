package reference

import "strconv"

// Canonical is the normalized form of a match.
type Canonical struct {
	// Display is "Book Chapter[:Verses]", for example "1 Thessalonians 3:1-13".
	Display string
	Book    string
	Chapter int
}

func (c Canonical) String() string { return c.Display }

// Canonicalize renders m with the canonical book name and the verse spec as
// matched, free of whitespace. Matches built without a VerseSpec fall back to
// the parsed ranges.
func Canonicalize(m Match) Canonical {
	display := m.Book.Name + " " + strconv.Itoa(m.Chapter)
	switch {
	case m.VerseSpec != "":
		display += ":" + m.VerseSpec
	case len(m.Verses) > 0:
		display += ":" + FormatVerses(m.Verses)
	}
	return Canonical{Display: display, Book: m.Book.Name, Chapter: m.Chapter}
}
