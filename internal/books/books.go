// Package books holds the static table of Bible book names and the
// spellings and abbreviations recognized for each of them.
package books

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
)

var (
	ErrDuplicateBook  = errors.New("duplicate book name")
	ErrDuplicateAlias = errors.New("alias maps to more than one book")
	ErrInvalidNumber  = errors.New("book number out of range")
)

// Space matches one whitespace unit between the words of a reference: an
// ASCII space character, U+00A0, or the no-break space entity as it appears
// in unparsed HTML text.
const Space = `(?:[\s\x{00A0}]|(?-i:&nbsp;|&#160;))`

// Book describes one canonical book.
//
// For numbered books (Number 1-3) Aliases holds the base spellings without
// the prefix ("John", "Jn"); the table derives "1 John", "1Jn", "I John" and
// "First John" from them.
type Book struct {
	Name    string
	OSIS    string
	Number  int
	Aliases []string
}

// Base returns the name without its numeric prefix.
func (b Book) Base() string {
	if b.Number == 0 {
		return b.Name
	}
	_, base, _ := strings.Cut(b.Name, " ")
	return base
}

// Numbered reports whether the book requires a numeric prefix.
func (b Book) Numbered() bool { return b.Number > 0 }

var (
	romanPrefixes   = []string{"", "I", "II", "III"}
	ordinalPrefixes = []string{"", "First", "Second", "Third"}
)

// Table is an immutable index from every recognized spelling to its book.
type Table struct {
	books   []Book
	byKey   map[string]int
	pattern string
}

// NewTable validates the books and builds the lookup index. Canonical names
// must be unique and no spelling may resolve to two different books.
func NewTable(list []Book) (*Table, error) {
	t := &Table{
		books: make([]Book, len(list)),
		byKey: make(map[string]int),
	}
	copy(t.books, list)

	names := make(map[string]bool, len(list))
	var alternatives []alternative
	for i, b := range t.books {
		if b.Number < 0 || b.Number >= len(romanPrefixes) {
			return nil, fmt.Errorf("%w: %s has number %d", ErrInvalidNumber, b.Name, b.Number)
		}
		name := normalize(b.Name)
		if names[name] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateBook, b.Name)
		}
		names[name] = true

		for _, alias := range spellings(b) {
			key := key(b.Number, alias)
			if prev, ok := t.byKey[key]; ok && prev != i {
				return nil, fmt.Errorf("%w: %q (%s, %s)", ErrDuplicateAlias, alias, t.books[prev].Name, b.Name)
			}
			if _, ok := t.byKey[key]; ok {
				continue
			}
			t.byKey[key] = i
			alternatives = append(alternatives, alternative{
				pattern: aliasPattern(b, alias),
				length:  len(alias) + b.Number,
				literal: key,
			})
		}
	}

	sort.SliceStable(alternatives, func(i, j int) bool {
		if alternatives[i].length != alternatives[j].length {
			return alternatives[i].length > alternatives[j].length
		}
		return alternatives[i].literal < alternatives[j].literal
	})
	parts := make([]string, len(alternatives))
	for i, a := range alternatives {
		parts[i] = a.pattern
	}
	t.pattern = strings.Join(parts, "|")
	return t, nil
}

type alternative struct {
	pattern string
	length  int
	literal string
}

// spellings returns the base name followed by the aliases of b.
func spellings(b Book) []string {
	out := []string{b.Base()}
	for _, a := range b.Aliases {
		if a != "" {
			out = append(out, a)
		}
	}
	return out
}

// aliasPattern renders one spelling as a regular expression fragment.
// Abbreviations accept a trailing period; full names do not.
func aliasPattern(b Book, alias string) string {
	words := strings.Fields(alias)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	p := strings.Join(words, Space+"+")
	if !strings.EqualFold(alias, b.Base()) {
		p += `\.?`
	}
	if b.Numbered() {
		n := strconv.Itoa(b.Number)
		p = `(?:` + n + Space + `*|(?-i:` + romanPrefixes[b.Number] + `)` + Space + `+|` +
			ordinalPrefixes[b.Number] + Space + `+)` + p
	}
	return p
}

// Lookup resolves a spelling such as "1 Thess.", "I John" or "song of
// solomon" to its book. Matching ignores case and repeated whitespace.
func (t *Table) Lookup(text string) (Book, bool) {
	n, rest := splitPrefix(normalize(text))
	i, ok := t.byKey[key(n, rest)]
	if !ok {
		return Book{}, false
	}
	return t.books[i], true
}

// ByName returns the book with the given canonical name.
func (t *Table) ByName(name string) (Book, bool) {
	want := normalize(name)
	for _, b := range t.books {
		if normalize(b.Name) == want {
			return b, true
		}
	}
	return Book{}, false
}

// Books returns the books in canonical order.
func (t *Table) Books() []Book {
	out := make([]Book, len(t.books))
	copy(out, t.books)
	return out
}

// Pattern returns a regular expression alternation, without an enclosing
// group, that matches every spelling in the table. Longer spellings come
// first so that "Song of Solomon" wins over "Song" at the same position.
// Roman numeral prefixes are only matched in upper case.
func (t *Table) Pattern() string { return t.pattern }

func key(number int, alias string) string {
	alias = normalize(alias)
	if number == 0 {
		return alias
	}
	return strconv.Itoa(number) + " " + alias
}

func normalize(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	return strings.TrimSuffix(s, ".")
}

// splitPrefix separates a leading book number ("1", "ii", "first", or a
// digit glued to the name as in "1jn") from a normalized spelling.
func splitPrefix(s string) (int, string) {
	if len(s) > 1 && s[0] >= '1' && s[0] <= '3' && s[1] != ' ' && (s[1] < '0' || s[1] > '9') {
		return int(s[0] - '0'), s[1:]
	}
	first, rest, ok := strings.Cut(s, " ")
	if !ok {
		return 0, s
	}
	for n := 1; n < len(romanPrefixes); n++ {
		if first == strconv.Itoa(n) || first == strings.ToLower(romanPrefixes[n]) || first == strings.ToLower(ordinalPrefixes[n]) {
			return n, rest
		}
	}
	return 0, s
}

var defaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(Protestant)
	if err != nil {
		panic(fmt.Sprintf("books: invalid built-in table: %v", err))
	}
	return t
})

// Default returns the built-in table of the 66 Protestant-canon books.
func Default() *Table { return defaultTable() }
