package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/browser"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/nav"
)

var openCmd = &cobra.Command{
	Use:   "open <id|title>",
	Short: "Open a shortcut's target in your browser",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	shortcuts, err := st.List(profile)
	if err != nil {
		return err
	}

	var target *nav.Shortcut
	for i := range shortcuts {
		if shortcuts[i].ID == args[0] || strings.EqualFold(shortcuts[i].Title, args[0]) {
			target = &shortcuts[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("no shortcut %q in profile %q", args[0], profile)
	}

	sess, err := loadSession(st, profile)
	if err != nil {
		return err
	}

	u := shortcutURL(sess.BaseURL, *target)
	pterm.Info.Printfln("Opening %s", u)
	return browser.OpenURL(u)
}

func shortcutURL(baseURL string, s nav.Shortcut) string {
	switch s.Kind {
	case nav.CategoryTarget:
		return baseURL + nav.LabelMarker + nav.EncodeLabel(s.Target)
	default:
		return baseURL + nav.Fragment(s.Target)
	}
}
