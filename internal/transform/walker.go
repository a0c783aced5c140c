package transform

import (
	"bytes"
	"errors"
	"io"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrUnfaithfulTokens is returned when the tokenizer's raw output does not
// reproduce the input byte for byte.
var ErrUnfaithfulTokens = errors.New("html tokens do not reconstruct input")

// excluded lists the elements whose text is never linked: anchors, headings,
// and the elements whose content the tokenizer reads as raw text.
var excluded = map[atom.Atom]bool{
	atom.A:         true,
	atom.H1:        true,
	atom.H2:        true,
	atom.H3:        true,
	atom.H4:        true,
	atom.H5:        true,
	atom.H6:        true,
	atom.Script:    true,
	atom.Style:     true,
	atom.Textarea:  true,
	atom.Title:     true,
	atom.Xmp:       true,
	atom.Iframe:    true,
	atom.Noembed:   true,
	atom.Noframes:  true,
	atom.Noscript:  true,
	atom.Plaintext: true,
}

// counterOf returns the atom whose open count tracks a. Any heading end tag
// closes whichever heading is open, so h1 to h6 share one count.
func counterOf(a atom.Atom) atom.Atom {
	switch a {
	case atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return atom.H1
	}
	return a
}

// Leaf is a run of character data between two pieces of markup.
type Leaf struct {
	Index    int
	Text     string
	Eligible bool
	// Anchored is set for text inside an anchor.
	Anchored bool
	// Before is the last rune of the text just inside a preceding </a>, or
	// 0. Text that directly follows an anchor continues the anchor's run.
	Before rune
}

type span struct {
	start, end int
	text       bool
	eligible   bool
	anchored   bool
	before     rune
}

// Document is an HTML fragment held as the raw byte spans of its tokens.
// Rendering a Document without replacements returns the input unchanged.
type Document struct {
	src      []byte
	spans    []span
	replaced map[int][]byte
	err      error
}

// Err returns the tokenizer error that ended the walk early, or nil when the
// whole input was tokenized.
func (d *Document) Err() error { return d.err }

// ParseDocument tokenizes src. Malformed markup is accepted as the tokenizer
// reads it. Input the tokenizer does not return becomes a single ineligible
// leaf.
func ParseDocument(src []byte) (*Document, error) {
	d := &Document{src: src, replaced: make(map[int][]byte)}
	open := make(map[atom.Atom]int)
	depth := 0

	z := html.NewTokenizer(bytes.NewReader(src))
	off := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// An unterminated tag at EOF is dropped by the tokenizer
			// rather than returned, so keep whatever it did not emit.
			if off < len(src) {
				d.spans = append(d.spans, span{start: off, end: len(src), text: true})
				off = len(src)
			}
			if err := z.Err(); !errors.Is(err, io.EOF) {
				d.err = err
			}
			break
		}

		raw := z.Raw()
		end := off + len(raw)
		if end > len(src) || !bytes.Equal(raw, src[off:end]) {
			return nil, ErrUnfaithfulTokens
		}
		s := span{start: off, end: end}
		off = end

		switch tt {
		case html.TextToken:
			s.text = true
			s.eligible = depth == 0
			s.anchored = open[atom.A] > 0
			s.before = d.anchorTail()
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); excluded[a] {
				open[counterOf(a)]++
				depth++
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if a := atom.Lookup(name); excluded[a] && open[counterOf(a)] > 0 {
				open[counterOf(a)]--
				depth--
			}
		}
		d.spans = append(d.spans, s)
	}

	if off != len(src) {
		return nil, ErrUnfaithfulTokens
	}
	return d, nil
}

// anchorTail returns the last rune of the text inside an anchor when the
// spans so far end with that text and its </a>.
func (d *Document) anchorTail() rune {
	n := len(d.spans)
	if n < 2 || !d.spans[n-2].text || !d.spans[n-2].anchored {
		return 0
	}
	end := d.spans[n-1]
	if !bytes.EqualFold(d.src[end.start:end.end], []byte("</a>")) {
		return 0
	}
	prev := d.spans[n-2]
	r, _ := utf8.DecodeLastRune(d.src[prev.start:prev.end])
	if r == utf8.RuneError {
		return 0
	}
	return r
}

// Leaves returns every text leaf in document order.
func (d *Document) Leaves() []Leaf {
	var out []Leaf
	for i, s := range d.spans {
		if !s.text {
			continue
		}
		out = append(out, Leaf{
			Index:    i,
			Text:     string(d.src[s.start:s.end]),
			Eligible: s.eligible,
			Anchored: s.anchored,
			Before:   s.before,
		})
	}
	return out
}

// Replace substitutes markup for an eligible leaf. Replacing an ineligible
// leaf or a non-text token is a no-op and returns false.
func (d *Document) Replace(index int, markup []byte) bool {
	if index < 0 || index >= len(d.spans) || !d.spans[index].eligible {
		return false
	}
	d.replaced[index] = markup
	return true
}

// Render serializes the document.
func (d *Document) Render() []byte {
	if len(d.replaced) == 0 {
		return d.src
	}
	var b bytes.Buffer
	b.Grow(len(d.src))
	for i, s := range d.spans {
		if r, ok := d.replaced[i]; ok {
			b.Write(r)
			continue
		}
		b.Write(d.src[s.start:s.end])
	}
	return b.Bytes()
}
