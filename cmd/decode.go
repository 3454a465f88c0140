package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/stream"
	"github.com/quickbar/cli/pkg/util"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode an intercepted sync payload into (label, count) events",
	Long: `Debugging aid: runs the sync-payload decoder over a captured response
body (or stdin) and prints the candidate events it surfaces.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDecode,
}

func init() {
	decodeCmd.Flags().StringP("output", "o", "", "Output format (json)")
	rootCmd.AddCommand(decodeCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	var raw []byte
	var err error
	if len(args) == 1 && args[0] != "-" {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("cannot read payload: %w", err)
	}

	events := stream.Decode(string(raw))

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		return util.PrintJSON(events)
	}

	if len(events) == 0 {
		pterm.Info.Println("No count events found in payload")
		return nil
	}

	rows := pterm.TableData{{"Label", "Count"}}
	rows = append(rows, lo.Map(events, func(ev stream.Event, _ int) []string {
		return []string{ev.Label, fmt.Sprintf("%d", ev.Count)}
	})...)
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}
