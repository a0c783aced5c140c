// Package sites builds passage URLs for the supported Bible-reading sites.
package sites

import (
	"net/url"
	"strings"
)

// Site names a Bible-reading website.
type Site string

const (
	BibleGateway Site = "biblegateway"
	Biblia       Site = "biblia"
)

// Placeholder is the URL returned for a site that is not supported.
const Placeholder = "#"

var builders = map[Site]func(display, version string) string{
	BibleGateway: func(display, version string) string {
		return "https://www.biblegateway.com/passage/?search=" + escape(display) + "&version=" + escape(version)
	},
	Biblia: func(display, version string) string {
		formatted := strings.ReplaceAll(strings.ReplaceAll(display, " ", ""), ":", ".")
		return "https://biblia.com/bible/" + escape(version) + "/" + escape(formatted)
	},
}

// Sites lists the supported sites.
func Sites() []Site { return []Site{BibleGateway, Biblia} }

// Known reports whether site has a URL format.
func Known(site Site) bool {
	_, ok := builders[site]
	return ok
}

// URL returns the passage URL for a canonical display string such as
// "John 3:16". Unknown sites yield Placeholder.
func URL(display, version string, site Site) string {
	build, ok := builders[site]
	if !ok {
		return Placeholder
	}
	return build(display, version)
}

// escape percent-encodes s for use in a path segment or query value, with
// spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
