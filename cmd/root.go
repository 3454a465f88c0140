package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/session"
	"github.com/quickbar/cli/internal/store"
)

// defaultBaseURL is the host's primary-account mail root; overridable per
// profile and via QUICKBAR_BASE_URL.
const defaultBaseURL = "https://mail.google.com/mail/u/0/"

var rootCmd = &cobra.Command{
	Use:           "quickbar",
	Short:         "User-configurable navigation bar with live unread badges for your webmail",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// A .env in the working directory is honored but never required.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("profile", envOr("QUICKBAR_PROFILE", store.DefaultProfile), "Configuration profile")
	rootCmd.PersistentFlags().String("db", "", "Path to the configuration database (default: user config dir)")
}

// Execute runs the CLI.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dbPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, nil
	}
	if p := os.Getenv("QUICKBAR_DB"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate config directory: %w", err)
	}
	return filepath.Join(dir, "quickbar", "quickbar.db"), nil
}

func openStore(cmd *cobra.Command) (*store.Store, string, error) {
	profile, _ := cmd.Flags().GetString("profile")
	path, err := dbPath(cmd)
	if err != nil {
		return nil, "", err
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, "", err
	}
	return st, profile, nil
}

// loadSession assembles the shared host-session state for a profile: stored
// account settings, environment overrides, and the keyring cookie.
func loadSession(st *store.Store, profile string) (session.State, error) {
	email, baseURL, err := st.Account(profile)
	if err != nil {
		return session.State{}, err
	}
	if v := os.Getenv("QUICKBAR_BASE_URL"); v != "" {
		baseURL = v
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return session.Load(email, baseURL), nil
}
