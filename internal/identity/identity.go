// Package identity maps human-readable label names to the host's internal
// label identifiers by scanning currently-rendered markup. The host may
// re-render with different identifiers across navigations, so maps are
// rebuilt per reconciliation pass and never cached.
package identity

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/quickbar/cli/internal/nav"
	"github.com/quickbar/cli/pkg/hostdom"
)

// Map is a case-insensitive lookup from normalized label names and internal
// identifiers to internal identifiers.
type Map map[string]string

// Build scans every label-route link in the snapshot and records two entries
// per named label: normalized display name and normalized identifier, both
// pointing at the identifier. An empty snapshot yields an empty map; lookup
// misses are the caller's normal case, not an error.
func Build(doc *hostdom.Document) Map {
	m := Map{}
	if doc == nil {
		return m
	}
	for _, link := range doc.Links() {
		href := link.Href()
		if !strings.Contains(href, nav.LabelMarker) {
			continue
		}
		id, ok := nav.CategoryFromRoute(href)
		if !ok {
			continue
		}
		name, ok := DisplayName(link)
		if !ok {
			continue
		}
		m[Normalize(name)] = id
		m[Normalize(id)] = id
	}
	return m
}

// Resolve returns the internal identifier for raw, or raw unchanged when the
// map has no entry for it.
func (m Map) Resolve(raw string) string {
	if id, ok := m[Normalize(raw)]; ok {
		return id
	}
	return raw
}

// DisplayName derives a link's human-readable name: an explicit title
// attribute on the element, a title attribute on a descendant, or the leading
// segment of the accessible name. The host appends count/status suffixes to
// accessible names after a comma ("Invoices, 3 unread"), so only the text
// before the first comma counts.
func DisplayName(link hostdom.Link) (string, bool) {
	if t, ok := link.OwnTitle(); ok {
		return t, true
	}
	if t, ok := link.DescendantTitle(); ok {
		return t, true
	}
	if label, ok := link.AriaLabel(); ok {
		name, _, _ := strings.Cut(label, ",")
		name = strings.TrimSpace(name)
		if name != "" {
			return name, true
		}
	}
	return "", false
}

var (
	separatorRuns  = regexp.MustCompile(`[/_-]+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
)

// Normalize decodes percent-encoding and lowercases. Strings that fail to
// decode are lowercased as-is.
func Normalize(s string) string {
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}
	return strings.ToLower(s)
}

// NormalizeFuzzy is the stricter form used for last-resort matching: on top
// of Normalize it collapses path separators, hyphens, and underscores to
// single spaces and squeezes repeated whitespace, so "Work/Clients",
// "work-clients", and "Work_Clients" all share one key.
func NormalizeFuzzy(s string) string {
	s = Normalize(s)
	s = separatorRuns.ReplaceAllString(s, " ")
	s = whitespaceRuns.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
