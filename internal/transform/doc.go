// Package transform rewrites scripture references in HTML fragments into
// links to a Bible-reading site.
//
// A rewrite runs as a sequence of stages:
//  1. Convert the input to UTF-8
//  2. Tokenize and classify text runs as eligible or not
//  3. Link references in eligible runs
//  4. Render, copying every untouched token byte for byte
//
// Text inside anchors, headings and raw-text elements such as <script> is
// never linked, so running the rewrite twice gives the same result as
// running it once.
package transform

import (
	"log/slog"
	"sync"

	"github.com/stronganchortech/bible-linker/internal/reference"
	"github.com/stronganchortech/bible-linker/internal/sites"
)

// Rewriter links references found by Matcher. A Rewriter has no mutable
// state and is safe for concurrent use.
type Rewriter struct {
	Matcher *reference.Matcher
	Logger  *slog.Logger
}

// NewRewriter returns a Rewriter using the built-in book table.
func NewRewriter(logger *slog.Logger) *Rewriter {
	return &Rewriter{Matcher: reference.Default(), Logger: logger}
}

var defaultRewriter = sync.OnceValue(func() *Rewriter {
	return &Rewriter{Matcher: reference.Default(), Logger: slog.Default()}
})

// Rewrite links the references in src with the default Rewriter and
// returns the resulting HTML.
func Rewrite(src string, cfg Config) (string, error) {
	res, err := defaultRewriter().Rewrite(src, cfg)
	return res.HTML, err
}

// Rewrite links every reference in the eligible text of src. On error the
// returned Result still carries src unchanged, so callers never see a
// partially rewritten document.
//
// Input in another charset is converted, and a rewritten document is UTF-8
// even when a <meta charset> in it names the original encoding. Callers
// serving the output should label it UTF-8. A document with nothing to link
// is returned as given.
func (r *Rewriter) Rewrite(src string, cfg Config) (Result, error) {
	cfg = cfg.WithDefaults()
	unchanged := Result{HTML: src}

	// Stage 1: Convert to UTF-8.
	body, err := toUTF8([]byte(src), cfg.Charset)
	if err != nil {
		return unchanged, err
	}

	// Stage 2: Tokenize.
	doc, err := ParseDocument(body)
	if err != nil {
		return unchanged, err
	}
	if err := doc.Err(); err != nil {
		r.logger().Debug("html tokenizer stopped early", "error", err)
	}

	// Stage 3: Link references.
	res := Result{}
	m := r.matcher()
	for _, leaf := range doc.Leaves() {
		if leaf.Anchored {
			citeRun(m, leaf, &res)
			continue
		}
		if !leaf.Eligible {
			continue
		}
		if linked := linkRun(m, leaf, cfg, &res); linked != nil {
			doc.Replace(leaf.Index, linked)
		}
	}
	if res.Links == 0 {
		unchanged.Cited = res.Cited
		return unchanged, nil
	}
	if !sites.Known(cfg.Site) {
		r.logger().Warn("unknown link site, references link to placeholder",
			"site", string(cfg.Site), "links", res.Links)
	}

	// Stage 4: Render.
	res.HTML = string(doc.Render())
	res.Changed = res.HTML != src
	return res, nil
}

func (r *Rewriter) matcher() *reference.Matcher {
	if r.Matcher != nil {
		return r.Matcher
	}
	return reference.Default()
}

func (r *Rewriter) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.New(slog.DiscardHandler)
}
