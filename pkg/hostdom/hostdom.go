// Package hostdom wraps a rendered snapshot of the host's markup behind
// fallible query helpers. The host re-renders constantly and nothing here is
// guaranteed to exist, so every read returns an optional result instead of
// assuming element presence.
package hostdom

import (
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// navRegionSelector locates the host's navigation rail.
const navRegionSelector = `[role="navigation"]`

// badgeSelector matches the small unread-count element the host nests inside
// some nav links.
const badgeSelector = ".bsU"

// Document is one parsed snapshot of the host's rendered markup.
type Document struct {
	doc *goquery.Document
}

// Parse reads an HTML snapshot.
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// ParseString reads an HTML snapshot from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// Link is one link-like element in the snapshot.
type Link struct {
	sel *goquery.Selection
}

// Links returns every element carrying a link target, in document order.
func (d *Document) Links() []Link {
	if d == nil || d.doc == nil {
		return nil
	}
	return collectLinks(d.doc.Find("a[href]"))
}

// NavLinks returns the links inside the host's navigation region, falling
// back to the whole document when the region is missing from the snapshot.
func (d *Document) NavLinks() []Link {
	if d == nil || d.doc == nil {
		return nil
	}
	nav := d.doc.Find(navRegionSelector)
	if nav.Length() == 0 {
		return d.Links()
	}
	return collectLinks(nav.Find("a[href]"))
}

func collectLinks(sel *goquery.Selection) []Link {
	links := make([]Link, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		links = append(links, Link{sel: s})
	})
	return links
}

// Href returns the link target, or "" when absent.
func (l Link) Href() string {
	href, _ := l.sel.Attr("href")
	return href
}

// OwnTitle returns the title attribute on the link element itself.
func (l Link) OwnTitle() (string, bool) {
	t, ok := l.sel.Attr("title")
	return t, ok && t != ""
}

// DescendantTitle returns the first non-empty title attribute on a
// descendant of the link.
func (l Link) DescendantTitle() (string, bool) {
	var title string
	l.sel.Find("[title]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if t, ok := s.Attr("title"); ok && t != "" {
			title = t
			return false
		}
		return true
	})
	return title, title != ""
}

// AriaLabel returns the link's accessible name attribute.
func (l Link) AriaLabel() (string, bool) {
	t, ok := l.sel.Attr("aria-label")
	return t, ok && t != ""
}

// Text returns the link's flattened text content, trimmed.
func (l Link) Text() string {
	return strings.TrimSpace(l.sel.Text())
}

// BadgeText returns the text of a nested unread badge element, if one is
// rendered inside this link.
func (l Link) BadgeText() (string, bool) {
	badge := l.sel.Find(badgeSelector).First()
	if badge.Length() == 0 {
		return "", false
	}
	t := strings.TrimSpace(badge.Text())
	return t, t != ""
}
