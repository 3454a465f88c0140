// Package nav defines the shortcut model and the host's route conventions
// shared by the identity, feed, scrape, and reconcile packages.
package nav

// TargetKind says what a shortcut points at.
type TargetKind string

const (
	// CategoryTarget points at a named host-side label.
	CategoryTarget TargetKind = "category"
	// ViewTarget points at an arbitrary route fragment.
	ViewTarget TargetKind = "view"
)

// Shortcut is one user-defined navigation entry. ID is stable across renames;
// Target is never empty.
type Shortcut struct {
	ID       string     `json:"id"`
	Profile  string     `json:"profile"`
	Position int        `json:"position"`
	Title    string     `json:"title"`
	Kind     TargetKind `json:"kind"`
	Target   string     `json:"target"`
}
