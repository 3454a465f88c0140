package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/nav"
	"github.com/quickbar/cli/pkg/util"
)

var shortcutsCmd = &cobra.Command{
	Use:   "shortcuts",
	Short: "Manage the shortcuts on your navigation bar",
}

var shortcutsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the shortcuts in the current profile",
	RunE:  runShortcutsList,
}

var shortcutsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a shortcut pointing at a label or a view route",
	Args:  cobra.ExactArgs(1),
	RunE:  runShortcutsAdd,
}

var shortcutsRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a shortcut",
	Args:  cobra.ExactArgs(1),
	RunE:  runShortcutsRemove,
}

var shortcutsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a shortcut (its identifier is unchanged)",
	Args:  cobra.ExactArgs(2),
	RunE:  runShortcutsRename,
}

var shortcutsMoveCmd = &cobra.Command{
	Use:   "move <id> <position>",
	Short: "Move a shortcut to a new bar position",
	Args:  cobra.ExactArgs(2),
	RunE:  runShortcutsMove,
}

func init() {
	shortcutsListCmd.Flags().StringP("output", "o", "", "Output format (json)")
	shortcutsAddCmd.Flags().String("label", "", "Host label the shortcut points at")
	shortcutsAddCmd.Flags().String("view", "", "Route fragment the shortcut points at (e.g. #inbox)")
	shortcutsCmd.AddCommand(shortcutsListCmd, shortcutsAddCmd, shortcutsRemoveCmd, shortcutsRenameCmd, shortcutsMoveCmd)
	rootCmd.AddCommand(shortcutsCmd)
}

func runShortcutsList(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	shortcuts, err := st.List(profile)
	if err != nil {
		return err
	}

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		return util.PrintJSON(shortcuts)
	}

	if len(shortcuts) == 0 {
		pterm.Info.Printfln("No shortcuts in profile %q. Add one with: quickbar shortcuts add", profile)
		return nil
	}

	rows := pterm.TableData{{"#", "ID", "Title", "Kind", "Target"}}
	rows = append(rows, lo.Map(shortcuts, func(s nav.Shortcut, i int) []string {
		return []string{
			fmt.Sprintf("%d", i+1),
			s.ID,
			util.OrDash(s.Title),
			string(s.Kind),
			util.Truncate(s.Target, 48),
		}
	})...)
	return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
}

func runShortcutsAdd(cmd *cobra.Command, args []string) error {
	label, _ := cmd.Flags().GetString("label")
	view, _ := cmd.Flags().GetString("view")
	if (label == "") == (view == "") {
		return fmt.Errorf("exactly one of --label or --view is required")
	}

	sc := nav.Shortcut{Title: args[0]}
	if label != "" {
		sc.Kind = nav.CategoryTarget
		sc.Target = label
	} else {
		sc.Kind = nav.ViewTarget
		sc.Target = view
	}

	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	added, err := st.Add(profile, sc)
	if err != nil {
		return err
	}
	pterm.Success.Printfln("Added shortcut %q (%s)", added.Title, added.ID)
	return nil
}

func runShortcutsRemove(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Remove(profile, args[0]); err != nil {
		return err
	}
	pterm.Success.Printfln("Removed shortcut %s", args[0])
	return nil
}

func runShortcutsRename(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Rename(profile, args[0], args[1]); err != nil {
		return err
	}
	pterm.Success.Printfln("Renamed shortcut %s to %q", args[0], args[1])
	return nil
}

func runShortcutsMove(cmd *cobra.Command, args []string) error {
	var position int
	if _, err := fmt.Sscanf(args[1], "%d", &position); err != nil {
		return fmt.Errorf("position must be a number: %w", err)
	}

	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Move(profile, args[0], position); err != nil {
		return err
	}
	pterm.Success.Printfln("Moved shortcut %s to position %d", args[0], position)
	return nil
}
