// Package feed resolves unread counts through the host's per-label atom
// feed. This is the primary count source: one scoped same-origin GET per
// shortcut, with the count read from a single leaf element of the XML body.
package feed

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pterm/pterm"

	"github.com/quickbar/cli/internal/nav"
	"github.com/quickbar/cli/internal/session"
)

// maxBodySize bounds how much of a feed response is read; real feeds are a
// few KB.
const maxBodySize = 1 << 20

// Client fetches per-shortcut counts from the host's atom feed endpoint.
type Client struct {
	base   string
	cookie string
	http   *http.Client
}

// New builds a feed client from the shared session state.
func New(st session.State) (*Client, error) {
	if st.BaseURL == "" {
		return nil, fmt.Errorf("session has no base URL")
	}
	if _, err := url.Parse(st.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", st.BaseURL, err)
	}
	return &Client{
		base:   st.BaseURL,
		cookie: st.Cookie,
		http:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// atomFeed is the slice of the feed document we care about.
type atomFeed struct {
	XMLName   xml.Name `xml:"feed"`
	Fullcount *int     `xml:"fullcount"`
}

// FetchCount returns the unread count for a shortcut, or nil when this
// source has no signal. nil and a returned 0 are distinct: 0 means the feed
// answered "none unread" and callers need not fall through to scraping.
// Network and parse failures are logged at warning level, never propagated.
func (c *Client) FetchCount(ctx context.Context, s nav.Shortcut) *int {
	seg, ok := feedSegment(s)
	if !ok {
		return nil
	}
	feedURL := c.base + "feed/atom/" + seg

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		pterm.Warning.Printfln("feed: bad request for %q: %v", s.Title, err)
		return nil
	}
	if c.cookie != "" {
		req.Header.Set("Cookie", c.cookie)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		pterm.Warning.Printfln("feed: fetch failed for %q: %v", s.Title, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		pterm.Warning.Printfln("feed: %s returned %s for %q", feedURL, resp.Status, s.Title)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		pterm.Warning.Printfln("feed: read failed for %q: %v", s.Title, err)
		return nil
	}

	var doc atomFeed
	if err := xml.Unmarshal(body, &doc); err != nil {
		pterm.Warning.Printfln("feed: unparseable response for %q: %v", s.Title, err)
		return nil
	}
	if doc.Fullcount == nil || *doc.Fullcount < 0 {
		return nil
	}
	return doc.Fullcount
}

// feedSegment maps a shortcut to its feed path segment. The empty segment
// selects the host's primary view. Arbitrary view routes have no feed
// representation and resolve to no request at all.
func feedSegment(s nav.Shortcut) (string, bool) {
	switch s.Kind {
	case nav.CategoryTarget:
		return url.PathEscape(s.Target), true
	case nav.ViewTarget:
		if nav.IsInboxRoute(s.Target) {
			return "", true
		}
		if name, ok := nav.CategoryFromRoute(s.Target); ok {
			return url.PathEscape(name), true
		}
	}
	return "", false
}
