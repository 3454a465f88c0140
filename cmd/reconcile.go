package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/feed"
	"github.com/quickbar/cli/internal/nav"
	"github.com/quickbar/cli/internal/reconcile"
	"github.com/quickbar/cli/internal/store"
	"github.com/quickbar/cli/pkg/hostdom"
	"github.com/quickbar/cli/pkg/util"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Resolve unread badges for every shortcut once",
	Long: `Runs one feed-then-scrape resolution pass over the current profile's
shortcuts and prints the resulting badges. Pass --dom to scrape a saved
snapshot of the host's rendered markup when the feed has no signal.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().String("dom", "", "Path to an HTML snapshot of the host page")
	reconcileCmd.Flags().Bool("offline", false, "Skip the feed source and scrape only")
	reconcileCmd.Flags().StringP("output", "o", "", "Output format (json)")
	rootCmd.AddCommand(reconcileCmd)
}

var badgeStyle = lipgloss.NewStyle().Bold(true)

func runReconcile(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	domPath, _ := cmd.Flags().GetString("dom")
	offline, _ := cmd.Flags().GetBool("offline")

	engine, sink, err := buildEngine(st, profile, domPath, offline)
	if err != nil {
		return err
	}

	engine.Refresh(cmd.Context())

	shortcuts, err := st.List(profile)
	if err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		type result struct {
			nav.Shortcut
			Badge string `json:"badge"`
		}
		results := make([]result, 0, len(shortcuts))
		for _, s := range shortcuts {
			badge, _ := sink.Badge(s.ID)
			results = append(results, result{Shortcut: s, Badge: badge})
		}
		return util.PrintJSON(results)
	}

	rows := pterm.TableData{{"Title", "Target", "Badge"}}
	for _, s := range shortcuts {
		badge, _ := sink.Badge(s.ID)
		shown := util.OrDash(badge)
		if badge != "" {
			shown = badgeStyle.Render(badge)
		}
		rows = append(rows, []string{util.OrDash(s.Title), util.Truncate(s.Target, 48), shown})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

// buildEngine wires the reconciliation engine for CLI use: shortcuts read
// fresh from the store, snapshots re-read from the collector's file, and a
// memory sink standing in for the rendering layer.
func buildEngine(st *store.Store, profile, domPath string, offline bool) (*reconcile.Engine, *reconcile.MemorySink, error) {
	sink := reconcile.NewMemorySink()

	engine := &reconcile.Engine{
		Shortcuts: func() []nav.Shortcut {
			shortcuts, err := st.List(profile)
			if err != nil {
				pterm.Warning.Printfln("cannot read shortcuts: %v", err)
				return nil
			}
			return shortcuts
		},
		Sink: sink,
	}

	if domPath != "" {
		engine.Snapshot = func() (*hostdom.Document, error) {
			f, err := os.Open(domPath)
			if err != nil {
				return nil, fmt.Errorf("cannot open snapshot: %w", err)
			}
			defer f.Close()
			return hostdom.Parse(f)
		}
	}

	if !offline {
		sess, err := loadSession(st, profile)
		if err != nil {
			return nil, nil, err
		}
		fetcher, err := feed.New(sess)
		if err != nil {
			return nil, nil, err
		}
		engine.Fetcher = fetcher
	}

	return engine, sink, nil
}
