package transform

import (
	"github.com/stronganchortech/bible-linker/internal/reference"
	"github.com/stronganchortech/bible-linker/internal/sites"
)

const (
	DefaultVersion = "NIV"
	DefaultSite    = sites.BibleGateway
)

// Config is the per-invocation rewrite configuration.
type Config struct {
	Version string
	Site    sites.Site
	// Charset names the input encoding. When empty, valid UTF-8 is used as
	// is and anything else is sniffed.
	Charset string
}

// WithDefaults fills an empty version or site with the defaults.
func (c Config) WithDefaults() Config {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if c.Site == "" {
		c.Site = DefaultSite
	}
	return c
}

// Result describes the outcome of one rewrite.
type Result struct {
	HTML  string
	Links int
	// References are the references linked by this rewrite.
	References []reference.Canonical
	// Cited holds References together with the references found in the
	// text of anchors already in the document, in document order.
	Cited []reference.Canonical
	// Changed is false when HTML is the input unchanged.
	Changed bool
}
