// Package scrape extracts unread counts from currently-rendered host markup.
// It is the last-resort source, consulted only when the feed yields nothing,
// and leans on fuzzy text/attribute matching because the host's markup is
// unversioned and shifts between renders.
package scrape

import (
	"regexp"
	"strings"

	"github.com/quickbar/cli/internal/identity"
	"github.com/quickbar/cli/internal/nav"
	"github.com/quickbar/cli/pkg/hostdom"
)

var (
	firstDigits    = regexp.MustCompile(`(\d[\d,]*)`)
	parenDigits    = regexp.MustCompile(`\((\d+)\)`)
	trailingDigits = regexp.MustCompile(`(\d+)\s*$`)
)

// Count returns the badge text for a shortcut scraped from the snapshot, or
// "" when nothing matches. "" means "hide the badge"; no failure here is
// ever an error.
func Count(doc *hostdom.Document, s nav.Shortcut) string {
	if doc == nil {
		return ""
	}
	switch s.Kind {
	case nav.CategoryTarget:
		return categoryCount(doc, s.Target)
	case nav.ViewTarget:
		if nav.IsSystemRoute(s.Target) {
			return systemCount(doc, s)
		}
		if name, ok := nav.CategoryFromRoute(s.Target); ok {
			return categoryCount(doc, name)
		}
	}
	return ""
}

// systemCount handles the host's fixed views (inbox, sent, and friends).
// Match by route suffix first, then by accessible-name/title prefix; extract
// the count with the ordered rules below, first non-empty answer wins.
func systemCount(doc *hostdom.Document, s nav.Shortcut) string {
	link, ok := findSystemLink(doc, s)
	if !ok {
		return ""
	}
	for _, extract := range countRules() {
		if text := extract(link); text != "" {
			return text
		}
	}
	return ""
}

func findSystemLink(doc *hostdom.Document, s nav.Shortcut) (hostdom.Link, bool) {
	frag := nav.Fragment(s.Target)
	links := doc.NavLinks()
	for _, l := range links {
		if frag != "" && strings.HasSuffix(strings.TrimRight(l.Href(), "/"), frag) {
			return l, true
		}
	}
	names := []string{s.Title}
	if canonical, ok := nav.SystemName(s.Target); ok {
		names = append(names, canonical)
	}
	for _, l := range links {
		for _, name := range names {
			if name != "" && hasNamePrefix(l, name) {
				return l, true
			}
		}
	}
	return hostdom.Link{}, false
}

func hasNamePrefix(l hostdom.Link, name string) bool {
	name = strings.ToLower(name)
	if label, ok := l.AriaLabel(); ok && strings.HasPrefix(strings.ToLower(label), name) {
		return true
	}
	if title, ok := l.OwnTitle(); ok && strings.HasPrefix(strings.ToLower(title), name) {
		return true
	}
	return false
}

// countRules is the ordered extraction table for system views: nested badge
// element, accessible-name digits, "(N)" in the title, trailing digits in
// the link text.
func countRules() []func(hostdom.Link) string {
	return []func(hostdom.Link) string{
		func(l hostdom.Link) string {
			if badge, ok := l.BadgeText(); ok {
				return digitsOf(badge)
			}
			return ""
		},
		func(l hostdom.Link) string {
			if label, ok := l.AriaLabel(); ok {
				return firstDigitRun(label)
			}
			return ""
		},
		func(l hostdom.Link) string {
			if title, ok := l.OwnTitle(); ok {
				if m := parenDigits.FindStringSubmatch(title); m != nil {
					return m[1]
				}
			}
			return ""
		},
		func(l hostdom.Link) string {
			if m := trailingDigits.FindStringSubmatch(l.Text()); m != nil {
				return m[1]
			}
			return ""
		},
	}
}

// categoryCount handles label shortcuts. Exact route suffix is the fast
// path; fuzzy title matching covers renamed labels and display/route
// encoding divergence. Count extraction prefers the accessible name, since
// some render paths omit the nested badge.
func categoryCount(doc *hostdom.Document, name string) string {
	link, ok := findCategoryLink(doc, name)
	if !ok {
		return ""
	}
	if label, ok := link.AriaLabel(); ok {
		if text := firstDigitRun(label); text != "" {
			return text
		}
	}
	if badge, ok := link.BadgeText(); ok {
		return digitsOf(badge)
	}
	return ""
}

func findCategoryLink(doc *hostdom.Document, name string) (hostdom.Link, bool) {
	suffix := nav.LabelMarker + nav.EncodeLabel(name)
	var candidates []hostdom.Link
	for _, l := range doc.Links() {
		href := l.Href()
		if !strings.Contains(href, nav.LabelMarker) {
			continue
		}
		if strings.HasSuffix(strings.TrimRight(href, "/"), suffix) {
			return l, true
		}
		candidates = append(candidates, l)
	}
	want := identity.NormalizeFuzzy(name)
	for _, l := range candidates {
		got, ok := identity.DisplayName(l)
		if !ok {
			continue
		}
		if identity.NormalizeFuzzy(got) == want {
			return l, true
		}
	}
	return hostdom.Link{}, false
}

// firstDigitRun pulls the first run of digits out of free-form text like
// "Inbox, 1,204 unread".
func firstDigitRun(s string) string {
	m := firstDigits.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.ReplaceAll(m[1], ",", "")
}

// digitsOf keeps badge text only when it actually carries a number.
func digitsOf(s string) string {
	return firstDigitRun(s)
}
