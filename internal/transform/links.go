package transform

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"

	"github.com/stronganchortech/bible-linker/internal/reference"
	"github.com/stronganchortech/bible-linker/internal/sites"
)

// hrefEscaper makes a URL safe inside a double-quoted attribute. The URL
// builders percent-encode every component, so "&" only appears as a query
// separator and is left as written.
var hrefEscaper = strings.NewReplacer(
	`"`, "&quot;",
	`'`, "&#39;",
	"<", "&lt;",
	">", "&gt;",
)

// linkRun replaces every reference in an eligible text run with an anchor.
// Text between references is copied unchanged. It returns nil when the run
// holds no reference.
func linkRun(m *reference.Matcher, leaf Leaf, cfg Config, res *Result) []byte {
	text := leaf.Text
	var b bytes.Buffer
	lastEnd := 0
	found := false
	for match := range m.ScanAfter(text, leaf.Before) {
		c := reference.Canonicalize(match)
		b.WriteString(text[lastEnd:match.Start])
		writeAnchor(&b, sites.URL(c.Display, cfg.Version, cfg.Site), c.Display)
		lastEnd = match.End()
		found = true
		res.Links++
		res.References = append(res.References, c)
		res.Cited = append(res.Cited, c)
	}
	if !found {
		return nil
	}
	b.WriteString(text[lastEnd:])
	return b.Bytes()
}

// citeRun records the references in the text of an existing anchor.
func citeRun(m *reference.Matcher, leaf Leaf, res *Result) {
	for match := range m.ScanAfter(leaf.Text, leaf.Before) {
		res.Cited = append(res.Cited, reference.Canonicalize(match))
	}
}

func writeAnchor(b *bytes.Buffer, href, display string) {
	b.WriteString(`<a href="`)
	b.WriteString(hrefEscaper.Replace(href))
	b.WriteString(`" target="_blank" rel="noopener">`)
	b.WriteString(html.EscapeString(display))
	b.WriteString(`</a>`)
}
