package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/session"
	"github.com/quickbar/cli/pkg/util"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage the host session used by the feed source",
}

var sessionSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Store the host account and session cookie for this profile",
	Long: `Stores the account email and base URL in the profile, and the session
cookie in the OS keyring. The cookie is read from --cookie or, when the flag
is absent, from stdin so it stays out of shell history.`,
	RunE: runSessionSet,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored host session (never the cookie itself)",
	RunE:  runSessionShow,
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored session cookie from the keyring",
	RunE:  runSessionClear,
}

func init() {
	sessionSetCmd.Flags().String("email", "", "Host account email")
	sessionSetCmd.Flags().String("base-url", "", "Host mail root (default "+defaultBaseURL+")")
	sessionSetCmd.Flags().String("cookie", "", "Session cookie header value")
	sessionCmd.AddCommand(sessionSetCmd, sessionShowCmd, sessionClearCmd)
	rootCmd.AddCommand(sessionCmd)
}

func runSessionSet(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	baseURL, _ := cmd.Flags().GetString("base-url")
	cookie, _ := cmd.Flags().GetString("cookie")

	if email == "" {
		return fmt.Errorf("--email is required")
	}
	if cookie == "" {
		pterm.Info.Println("Paste the session cookie and press enter:")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("cannot read cookie: %w", err)
		}
		cookie = strings.TrimSpace(line)
	}
	if cookie == "" {
		return fmt.Errorf("a non-empty cookie is required")
	}

	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SetAccount(profile, email, baseURL); err != nil {
		return err
	}
	if err := session.SaveCookie(email, cookie); err != nil {
		return err
	}
	pterm.Success.Printfln("Session stored for %s", email)
	return nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	sess, err := loadSession(st, profile)
	if err != nil {
		return err
	}

	rows := pterm.TableData{
		{"Profile", profile},
		{"Email", util.OrDash(sess.Email)},
		{"Base URL", util.OrDash(sess.BaseURL)},
		{"Cookie stored", fmt.Sprintf("%t", sess.Email != "" && session.HasCookie(sess.Email))},
	}
	return pterm.DefaultTable.WithData(rows).Render()
}

func runSessionClear(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	email, _, err := st.Account(profile)
	if err != nil {
		return err
	}
	if email == "" {
		pterm.Info.Println("No session stored for this profile")
		return nil
	}
	if err := session.DeleteCookie(email); err != nil {
		return err
	}
	pterm.Success.Printfln("Session cookie cleared for %s", email)
	return nil
}
