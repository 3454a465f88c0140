package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quickbar/cli/internal/nav"
)

func TestShortcutURL(t *testing.T) {
	base := "https://mail.example.com/mail/u/0/"
	tests := []struct {
		name     string
		shortcut nav.Shortcut
		expected string
	}{
		{
			"category",
			nav.Shortcut{Kind: nav.CategoryTarget, Target: "Invoices"},
			base + "#label/Invoices",
		},
		{
			"category with space",
			nav.Shortcut{Kind: nav.CategoryTarget, Target: "Work Clients"},
			base + "#label/Work+Clients",
		},
		{
			"view fragment",
			nav.Shortcut{Kind: nav.ViewTarget, Target: "#inbox"},
			base + "#inbox",
		},
		{
			"view with full url keeps fragment only",
			nav.Shortcut{Kind: nav.ViewTarget, Target: "https://elsewhere.example.com/x#sent"},
			base + "#sent",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shortcutURL(base, tt.shortcut))
		})
	}
}
