// Package reconcile decides what each shortcut's unread badge shows. Two
// independent paths write badges: a per-shortcut feed-then-scrape pass at
// render time, and a live pass applied whenever a decoded sync batch arrives.
// The paths race by design; last write wins and no sequencing is added
// between them.
package reconcile

import (
	"context"
	"strconv"
	"sync"

	"github.com/pterm/pterm"

	"github.com/quickbar/cli/internal/identity"
	"github.com/quickbar/cli/internal/nav"
	"github.com/quickbar/cli/internal/scrape"
	"github.com/quickbar/cli/internal/stream"
	"github.com/quickbar/cli/pkg/hostdom"
)

// BadgeSink receives badge text for a shortcut. Text "" means hide the
// badge. The rendering layer owns the implementation; writes for shortcuts
// it no longer renders are its no-ops, not ours.
type BadgeSink interface {
	SetBadge(shortcutID, text string)
}

// CountFetcher is the primary count source. A nil result means "no signal
// from this source"; a non-nil zero means "authoritatively none unread".
type CountFetcher interface {
	FetchCount(ctx context.Context, s nav.Shortcut) *int
}

// Engine reconciles unread counts for the current shortcut set. Shortcuts
// and Snapshot are called fresh on every pass; the engine caches nothing
// across passes.
type Engine struct {
	// Shortcuts returns the currently-rendered shortcut set in order.
	Shortcuts func() []nav.Shortcut
	// Snapshot returns the host's currently-rendered markup. May fail; a
	// failed snapshot degrades the pass, it never aborts it.
	Snapshot func() (*hostdom.Document, error)
	// Fetcher is the feed source. Optional; nil skips straight to scraping.
	Fetcher CountFetcher
	// Sink receives every badge write.
	Sink BadgeSink
}

// FormatCount renders a count as badge text. Zero hides the badge.
func FormatCount(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// Refresh runs the initial/periodic resolution path over every shortcut:
// feed first, scraper only when the feed has no signal. Each shortcut is
// resolved independently; one failure never blocks the rest.
func (e *Engine) Refresh(ctx context.Context) {
	for _, s := range e.Shortcuts() {
		e.refreshOne(ctx, s)
	}
}

func (e *Engine) refreshOne(ctx context.Context, s nav.Shortcut) {
	if e.Fetcher != nil {
		if n := e.Fetcher.FetchCount(ctx, s); n != nil {
			e.Sink.SetBadge(s.ID, FormatCount(*n))
			return
		}
	}
	e.Sink.SetBadge(s.ID, scrape.Count(e.snapshot(), s))
}

// Apply runs the live-update path for one decoded batch. The identity map
// is rebuilt from the current snapshot every time, because the host may have
// re-rendered since the last batch. A shortcut absent from the batch keeps
// its badge untouched: absence from one sync batch is common and is not
// evidence of zero.
func (e *Engine) Apply(events []stream.Event) {
	if len(events) == 0 {
		return
	}
	counts := make(map[string]int, len(events))
	for _, ev := range events {
		counts[ev.Label] = ev.Count
	}
	idmap := identity.Build(e.snapshot())
	for _, s := range e.Shortcuts() {
		raw, ok := rawIdentifier(s)
		if !ok {
			continue
		}
		resolved := idmap.Resolve(raw)
		n, found := counts[resolved]
		if !found && !nav.IsSystemToken(resolved) {
			n, found = fuzzyLookup(counts, resolved)
		}
		if found {
			e.Sink.SetBadge(s.ID, FormatCount(n))
		}
	}
}

func (e *Engine) snapshot() *hostdom.Document {
	if e.Snapshot == nil {
		return nil
	}
	doc, err := e.Snapshot()
	if err != nil {
		pterm.Warning.Printfln("reconcile: markup snapshot unavailable: %v", err)
		return nil
	}
	return doc
}

// rawIdentifier derives the identifier a sync batch would use for this
// shortcut: the fixed token for system views, the decoded label name for
// categories and label sub-routes. Other view routes never appear in sync
// batches.
func rawIdentifier(s nav.Shortcut) (string, bool) {
	switch s.Kind {
	case nav.CategoryTarget:
		return s.Target, true
	case nav.ViewTarget:
		if tok, ok := nav.SystemToken(s.Target); ok {
			return tok, true
		}
		if name, ok := nav.CategoryFromRoute(s.Target); ok {
			return name, true
		}
	}
	return "", false
}

// fuzzyLookup scans the batch table comparing fuzzy-normalized forms, so a
// batch identifier "label 42" still reaches a shortcut resolved to
// "Label_42". First match wins.
func fuzzyLookup(counts map[string]int, id string) (int, bool) {
	want := identity.NormalizeFuzzy(id)
	for label, n := range counts {
		if identity.NormalizeFuzzy(label) == want {
			return n, true
		}
	}
	return 0, false
}

// MemorySink is a BadgeSink that records the latest badge text per
// shortcut. The CLI uses it as its rendering surface; tests use it to
// observe writes.
type MemorySink struct {
	mu     sync.Mutex
	badges map[string]string
}

// NewMemorySink returns an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{badges: make(map[string]string)}
}

// SetBadge records the latest text for a shortcut.
func (m *MemorySink) SetBadge(shortcutID, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.badges[shortcutID] = text
}

// Badge returns the latest text for a shortcut and whether anything was
// ever written for it.
func (m *MemorySink) Badge(shortcutID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	text, ok := m.badges[shortcutID]
	return text, ok
}

// Badges returns a copy of all recorded badges.
func (m *MemorySink) Badges() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.badges))
	for k, v := range m.badges {
		out[k] = v
	}
	return out
}
