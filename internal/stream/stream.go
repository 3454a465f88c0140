// Package stream decodes intercepted host sync payloads into (label, count)
// events. The wire format is undocumented and changes shape ad hoc, so this
// is a best-effort walk over generic JSON, not a schema-validated parse.
package stream

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

// hijackPrefix is the fixed anti-hijacking sequence the host prepends to
// JSON responses.
const hijackPrefix = ")]}'"

// maxDepth bounds the recursive walk; host payloads are nowhere near this
// deep in practice, but the format carries no contract.
const maxDepth = 64

// maxLabelLen caps candidate identifier length.
const maxLabelLen = 80

// Event is one decoded (identifier, count) pair. Label may be a host
// internal identifier or a short system token; Count is never negative.
type Event struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// Decode extracts count candidates from a raw intercepted response body.
// It never fails: anything unparseable yields an empty slice.
func Decode(raw string) []Event {
	if rest, ok := strings.CutPrefix(raw, hijackPrefix); ok {
		raw = strings.TrimPrefix(rest, "\n")
	}
	var root any
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil
	}
	var events []Event
	walk(root, 0, &events)
	return events
}

// walk visits every array and object node. An array whose first element is a
// string and second a non-negative whole number is a candidate pair; the
// walk still descends into all of its elements, since pairs nest inside
// larger arrays and one array can hold several pairs at different depths.
func walk(node any, depth int, out *[]Event) {
	if depth > maxDepth {
		return
	}
	switch n := node.(type) {
	case []any:
		if len(n) >= 2 {
			label, okLabel := n[0].(string)
			count, okCount := n[1].(float64)
			if okLabel && okCount && count >= 0 && count == math.Trunc(count) && plausibleLabel(label) {
				*out = append(*out, Event{Label: label, Count: int(count)})
			}
		}
		for _, el := range n {
			walk(el, depth+1, out)
		}
	case map[string]any:
		for _, el := range n {
			walk(el, depth+1, out)
		}
	}
}

// attachmentPath matches identifiers that are really attachment resource
// paths embedded in the payload.
var attachmentPath = regexp.MustCompile(`(?i)(^|/)attachments?(/|$)|[?&]attid=`)

// plausibleLabel filters out strings the untyped walk would otherwise pair
// with unrelated numbers (URLs next to sizes, paths next to timestamps).
// Trades recall for precision: a dropped real label only costs a stale
// badge, a garbage match corrupts a visible count.
func plausibleLabel(s string) bool {
	switch {
	case s == "":
		return false
	case len(s) > maxLabelLen:
		return false
	case strings.Contains(s, "://"):
		return false
	case strings.HasPrefix(s, "/"):
		return false
	case attachmentPath.MatchString(s):
		return false
	}
	return true
}
