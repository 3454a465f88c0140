package nav

import (
	"net/url"
	"strings"
)

// LabelMarker is the substring the host puts in every label route fragment.
const LabelMarker = "#label/"

// systemViews maps the host's fixed view fragments to the short tokens the
// host uses for them in sync payloads.
var systemViews = map[string]systemView{
	"#inbox":   {Token: "^i", Name: "Inbox"},
	"#starred": {Token: "^t", Name: "Starred"},
	"#drafts":  {Token: "^r", Name: "Drafts"},
	"#sent":    {Token: "^f", Name: "Sent"},
	"#spam":    {Token: "^s", Name: "Spam"},
	"#trash":   {Token: "^k", Name: "Trash"},
	"#all":     {Token: "^all", Name: "All Mail"},
}

type systemView struct {
	Token string
	Name  string
}

// Fragment returns the "#..." portion of a route, or the route itself when
// it carries no separate fragment. Trailing slashes are ignored.
func Fragment(route string) string {
	if i := strings.Index(route, "#"); i >= 0 {
		route = route[i:]
	}
	return strings.TrimRight(route, "/")
}

// SystemToken returns the sync token for a fixed system view route.
func SystemToken(route string) (string, bool) {
	v, ok := systemViews[Fragment(route)]
	if !ok {
		return "", false
	}
	return v.Token, true
}

// SystemName returns the host's display name for a fixed system view route.
func SystemName(route string) (string, bool) {
	v, ok := systemViews[Fragment(route)]
	if !ok {
		return "", false
	}
	return v.Name, true
}

// IsSystemRoute reports whether the route points at one of the host's fixed
// views rather than a label or an arbitrary query.
func IsSystemRoute(route string) bool {
	_, ok := systemViews[Fragment(route)]
	return ok
}

// IsSystemToken reports whether s is one of the short sync tokens.
func IsSystemToken(s string) bool {
	for _, v := range systemViews {
		if v.Token == s {
			return true
		}
	}
	return false
}

// IsInboxRoute reports whether the route selects the host's primary view.
func IsInboxRoute(route string) bool {
	return Fragment(route) == "#inbox"
}

// CategoryFromRoute extracts the decoded label name embedded in a label
// route. Returns false when the route carries no label marker.
func CategoryFromRoute(route string) (string, bool) {
	i := strings.Index(route, LabelMarker)
	if i < 0 {
		return "", false
	}
	seg := route[i+len(LabelMarker):]
	if seg == "" {
		return "", false
	}
	return DecodeLabel(seg), true
}

// DecodeLabel reverses the host's route encoding for label names: percent
// decoding plus the host's plus-for-space convention. A segment that fails to
// decode is returned as-is; the caller treats it as an opaque identifier.
func DecodeLabel(seg string) string {
	decoded, err := url.QueryUnescape(seg)
	if err != nil {
		return seg
	}
	return decoded
}

// EncodeLabel applies the host's route encoding for label names.
func EncodeLabel(name string) string {
	return url.QueryEscape(name)
}
