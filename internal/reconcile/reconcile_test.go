package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbar/cli/internal/nav"
	"github.com/quickbar/cli/internal/stream"
	"github.com/quickbar/cli/pkg/hostdom"
)

// stubFetcher returns canned per-shortcut results and records call order.
type stubFetcher struct {
	counts map[string]*int
	calls  []string
}

func (f *stubFetcher) FetchCount(_ context.Context, s nav.Shortcut) *int {
	f.calls = append(f.calls, s.ID)
	return f.counts[s.ID]
}

func intp(n int) *int { return &n }

func staticShortcuts(shortcuts ...nav.Shortcut) func() []nav.Shortcut {
	return func() []nav.Shortcut { return shortcuts }
}

func snapshotOf(t *testing.T, html string) func() (*hostdom.Document, error) {
	t.Helper()
	return func() (*hostdom.Document, error) {
		return hostdom.ParseString(html)
	}
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "", FormatCount(0))
	assert.Equal(t, "1", FormatCount(1))
	assert.Equal(t, "120", FormatCount(120))
}

func TestRefreshFeedWins(t *testing.T) {
	s := nav.Shortcut{ID: "a", Title: "Invoices", Kind: nav.CategoryTarget, Target: "Invoices"}
	sink := NewMemorySink()
	snapshotCalls := 0

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Fetcher:   &stubFetcher{counts: map[string]*int{"a": intp(3)}},
		Snapshot: func() (*hostdom.Document, error) {
			snapshotCalls++
			return nil, nil
		},
		Sink: sink,
	}
	e.Refresh(context.Background())

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "3", badge)
	assert.Zero(t, snapshotCalls, "scraper must not run when the feed answers")
}

func TestRefreshZeroShortCircuits(t *testing.T) {
	s := nav.Shortcut{ID: "a", Kind: nav.ViewTarget, Target: "#inbox"}
	sink := NewMemorySink()
	snapshotCalls := 0

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Fetcher:   &stubFetcher{counts: map[string]*int{"a": intp(0)}},
		Snapshot: func() (*hostdom.Document, error) {
			snapshotCalls++
			return nil, nil
		},
		Sink: sink,
	}
	e.Refresh(context.Background())

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "", badge, "an authoritative zero hides the badge")
	assert.Zero(t, snapshotCalls, "zero from the feed must not fall through to scraping")
}

func TestRefreshFallsThroughToScraper(t *testing.T) {
	s := nav.Shortcut{ID: "a", Title: "Inbox", Kind: nav.ViewTarget, Target: "#inbox"}
	sink := NewMemorySink()
	fetcher := &stubFetcher{}

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Fetcher:   fetcher,
		Snapshot: snapshotOf(t, `<div role="navigation">
			<a href="#inbox" aria-label="Inbox, 7 unread">Inbox</a>
		</div>`),
		Sink: sink,
	}
	e.Refresh(context.Background())

	assert.Equal(t, []string{"a"}, fetcher.calls, "feed is always attempted first")
	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "7", badge)
}

func TestRefreshScraperEmptyStillWrites(t *testing.T) {
	s := nav.Shortcut{ID: "a", Title: "Invoices", Kind: nav.CategoryTarget, Target: "Invoices"}
	sink := NewMemorySink()
	sink.SetBadge("a", "5") // stale badge from an earlier pass

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Fetcher:   &stubFetcher{},
		Snapshot:  snapshotOf(t, `<html></html>`),
		Sink:      sink,
	}
	e.Refresh(context.Background())

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "", badge, "empty scrape result overwrites; hide beats stale")
}

func TestRefreshNoFetcherNoSnapshot(t *testing.T) {
	// Everything degraded: no feed, no markup. Badge ends hidden, nothing
	// panics.
	s := nav.Shortcut{ID: "a", Title: "Invoices", Kind: nav.CategoryTarget, Target: "Invoices"}
	sink := NewMemorySink()

	e := &Engine{Shortcuts: staticShortcuts(s), Sink: sink}
	assert.NotPanics(t, func() { e.Refresh(context.Background()) })

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "", badge)
}

func TestApplyDirectLookupViaIdentityMap(t *testing.T) {
	// The batch speaks internal ids; the identity map bridges from the
	// shortcut's display-name target.
	s := nav.Shortcut{ID: "a", Title: "Archive", Kind: nav.CategoryTarget, Target: "Archive"}
	sink := NewMemorySink()

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Snapshot: snapshotOf(t, `<div role="navigation">
			<a href="#label/Label_42" aria-label="Archive, 1 unread">Archive</a>
		</div>`),
		Sink: sink,
	}
	e.Apply([]stream.Event{{Label: "Label_42", Count: 5}})

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "5", badge)
}

func TestApplyDirectLookup(t *testing.T) {
	s := nav.Shortcut{ID: "a", Title: "Archive", Kind: nav.CategoryTarget, Target: "Label_42"}
	sink := NewMemorySink()

	e := &Engine{Shortcuts: staticShortcuts(s), Sink: sink}
	e.Apply([]stream.Event{{Label: "Label_42", Count: 5}})

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "5", badge)
}

func TestApplyFuzzyFallback(t *testing.T) {
	// Direct lookup misses (space instead of underscore); the fuzzy scan
	// still matches.
	s := nav.Shortcut{ID: "a", Title: "Archive", Kind: nav.CategoryTarget, Target: "Label_42"}
	sink := NewMemorySink()

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Snapshot:  func() (*hostdom.Document, error) { return hostdom.ParseString("<html></html>") },
		Sink:      sink,
	}
	e.Apply([]stream.Event{{Label: "label 42", Count: 5}})

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "5", badge)
}

func TestApplySystemTokenZeroHidesBadge(t *testing.T) {
	s := nav.Shortcut{ID: "a", Title: "Inbox", Kind: nav.ViewTarget, Target: "#inbox"}
	sink := NewMemorySink()
	sink.SetBadge("a", "12")

	e := &Engine{Shortcuts: staticShortcuts(s), Sink: sink}
	e.Apply([]stream.Event{{Label: "^i", Count: 0}})

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "", badge, "explicit zero hides the badge, distinct from no data")
}

func TestApplyMissLeavesBadgeUntouched(t *testing.T) {
	s := nav.Shortcut{ID: "a", Title: "Inbox", Kind: nav.ViewTarget, Target: "#inbox"}
	sink := NewMemorySink()
	sink.SetBadge("a", "12")

	e := &Engine{Shortcuts: staticShortcuts(s), Sink: sink}
	e.Apply([]stream.Event{{Label: "Label_9", Count: 4}})

	badge, _ := sink.Badge("a")
	assert.Equal(t, "12", badge, "absence from one batch is not evidence of zero")
}

func TestApplySystemTokenNeverFuzzyMatches(t *testing.T) {
	// A system token absent from the batch must not fuzzy-match a
	// near-miss label; fuzzy fallback is for category identifiers only.
	s := nav.Shortcut{ID: "a", Title: "Inbox", Kind: nav.ViewTarget, Target: "#inbox"}
	sink := NewMemorySink()

	e := &Engine{Shortcuts: staticShortcuts(s), Sink: sink}
	e.Apply([]stream.Event{{Label: "^i ", Count: 9}})

	_, ok := sink.Badge("a")
	assert.False(t, ok)
}

func TestApplyLaterBatchLowersCount(t *testing.T) {
	// Hosts mark items read; a later, lower count overwrites.
	s := nav.Shortcut{ID: "a", Title: "Inbox", Kind: nav.ViewTarget, Target: "#inbox"}
	sink := NewMemorySink()

	e := &Engine{Shortcuts: staticShortcuts(s), Sink: sink}
	e.Apply([]stream.Event{{Label: "^i", Count: 9}})
	e.Apply([]stream.Event{{Label: "^i", Count: 2}})

	badge, _ := sink.Badge("a")
	assert.Equal(t, "2", badge)
}

func TestApplyEmptyBatch(t *testing.T) {
	snapshotCalls := 0
	e := &Engine{
		Shortcuts: staticShortcuts(),
		Snapshot: func() (*hostdom.Document, error) {
			snapshotCalls++
			return nil, nil
		},
		Sink: NewMemorySink(),
	}
	e.Apply(nil)
	assert.Zero(t, snapshotCalls, "empty batches are dropped before any work")
}

func TestApplyArbitraryViewIgnored(t *testing.T) {
	s := nav.Shortcut{ID: "a", Title: "Search", Kind: nav.ViewTarget, Target: "#search/x"}
	sink := NewMemorySink()

	e := &Engine{Shortcuts: staticShortcuts(s), Sink: sink}
	e.Apply([]stream.Event{{Label: "^i", Count: 3}})

	_, ok := sink.Badge("a")
	assert.False(t, ok)
}

func TestEndToEndAllSourcesFail(t *testing.T) {
	// Empty DOM, unreachable feed, no batch: badge ends hidden, no panic.
	s := nav.Shortcut{ID: "a", Title: "Invoices", Kind: nav.CategoryTarget, Target: "Invoices"}
	sink := NewMemorySink()

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Fetcher:   &stubFetcher{}, // nil for every shortcut, like a network error
		Snapshot:  func() (*hostdom.Document, error) { return nil, fmt.Errorf("no snapshot") },
		Sink:      sink,
	}
	assert.NotPanics(t, func() {
		e.Refresh(context.Background())
		e.Apply([]stream.Event{{Label: "Unrelated", Count: 1}})
	})

	badge, ok := sink.Badge("a")
	require.True(t, ok)
	assert.Equal(t, "", badge)
}

func TestPathsLastWriteWins(t *testing.T) {
	// Path A and Path B write the same badge with no sequencing; whichever
	// runs later is what shows.
	s := nav.Shortcut{ID: "a", Title: "Inbox", Kind: nav.ViewTarget, Target: "#inbox"}
	sink := NewMemorySink()

	e := &Engine{
		Shortcuts: staticShortcuts(s),
		Fetcher:   &stubFetcher{counts: map[string]*int{"a": intp(8)}},
		Sink:      sink,
	}
	e.Refresh(context.Background())
	e.Apply([]stream.Event{{Label: "^i", Count: 6}})

	badge, _ := sink.Badge("a")
	assert.Equal(t, "6", badge)

	e.Refresh(context.Background())
	badge, _ = sink.Badge("a")
	assert.Equal(t, "8", badge)
}
