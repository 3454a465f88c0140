package cmd

import (
	"net/http"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/session"
	"github.com/quickbar/cli/pkg/util"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check that quickbar can reach its configuration and the host",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringP("output", "o", "", "Output format (json)")
	rootCmd.AddCommand(statusCmd)
}

type statusComponent struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

var statusDisplay = map[string]pterm.RGB{
	"ok":       pterm.NewRGB(31, 163, 130),
	"degraded": pterm.NewRGB(245, 158, 11),
	"failed":   pterm.NewRGB(239, 68, 68),
}

func coloredDot(status string) string {
	rgb, ok := statusDisplay[status]
	if !ok {
		rgb = pterm.NewRGB(128, 128, 128)
	}
	return rgb.Sprint("●")
}

func runStatus(cmd *cobra.Command, args []string) error {
	var components []statusComponent

	st, profile, err := openStore(cmd)
	if err != nil {
		components = append(components, statusComponent{"configuration", "failed", err.Error()})
	} else {
		defer st.Close()
		if _, err := st.List(profile); err != nil {
			components = append(components, statusComponent{"configuration", "failed", err.Error()})
		} else {
			components = append(components, statusComponent{Name: "configuration", Status: "ok"})
		}
	}

	var sess session.State
	if st != nil {
		sess, err = loadSession(st, profile)
		if err != nil {
			components = append(components, statusComponent{"session", "failed", err.Error()})
		} else if sess.Email == "" {
			components = append(components, statusComponent{"session", "degraded", "no account stored; run: quickbar session set"})
		} else if sess.Cookie == "" {
			components = append(components, statusComponent{"session", "degraded", "no cookie in keyring; feed source will run unauthenticated"})
		} else {
			components = append(components, statusComponent{Name: "session", Status: "ok"})
		}

		components = append(components, checkHost(sess))
	}

	if output, _ := cmd.Flags().GetString("output"); output == "json" {
		return util.PrintJSON(components)
	}

	pterm.Println()
	for _, comp := range components {
		pterm.Printf("  %s %-16s %s\n", coloredDot(comp.Status), comp.Name, util.OrDash(comp.Detail))
	}
	pterm.Println()
	return nil
}

// checkHost probes the host's feed endpoint. Any HTTP answer counts as
// reachable; an auth rejection just means the stored cookie is stale.
func checkHost(sess session.State) statusComponent {
	if sess.BaseURL == "" {
		return statusComponent{"host", "degraded", "no base URL configured"}
	}
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(http.MethodGet, sess.BaseURL+"feed/atom/", nil)
	if err != nil {
		return statusComponent{"host", "failed", err.Error()}
	}
	if sess.Cookie != "" {
		req.Header.Set("Cookie", sess.Cookie)
	}
	resp, err := client.Do(req)
	if err != nil {
		return statusComponent{"host", "failed", "unreachable: " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return statusComponent{"host", "degraded", "reachable but rejected the session cookie"}
	}
	if resp.StatusCode >= 500 {
		return statusComponent{"host", "degraded", "host error: " + resp.Status}
	}
	return statusComponent{Name: "host", Status: "ok"}
}
