package cmd

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/quickbar/cli/internal/reconcile"
	"github.com/quickbar/cli/internal/stream"
	"github.com/quickbar/cli/internal/transport"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep badges live from intercepted host sync traffic",
	Long: `Runs an initial resolution pass, then listens for update batches from
the browser-side collector and applies them as they arrive. Badge changes
are printed as they happen.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("listen", "127.0.0.1:8765", "Address for the collector websocket")
	watchCmd.Flags().String("dom", "", "Path to the collector's HTML snapshot file (re-read each pass)")
	watchCmd.Flags().Bool("offline", false, "Skip the feed source and scrape only")
	watchCmd.Flags().Duration("refresh", 0, "Re-run the full resolution pass at this interval (0 disables)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	st, profile, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	domPath, _ := cmd.Flags().GetString("dom")
	offline, _ := cmd.Flags().GetBool("offline")
	listen, _ := cmd.Flags().GetString("listen")
	refresh, _ := cmd.Flags().GetDuration("refresh")

	engine, sink, err := buildEngine(st, profile, domPath, offline)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	announcer := &announcingEngine{engine: engine, sink: sink, titles: func(id string) string {
		for _, s := range engine.Shortcuts() {
			if s.ID == id {
				return s.Title
			}
		}
		return id
	}}

	pterm.Info.Println("Running initial resolution pass...")
	engine.Refresh(ctx)
	announcer.announceAll()

	srv := transport.New(listen, announcer)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if refresh > 0 {
		go func() {
			ticker := time.NewTicker(refresh)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					engine.Refresh(ctx)
					announcer.announceAll()
				}
			}
		}()
	}

	pterm.Info.Printfln("Listening for collector updates on ws://%s/updates", listen)
	return srv.ListenAndServe()
}

// announcingEngine applies batches and prints any badge that changed. Both
// the websocket handler and the refresh ticker call in; the mutex keeps the
// change log coherent between them.
type announcingEngine struct {
	engine *reconcile.Engine
	sink   *reconcile.MemorySink
	titles func(id string) string

	mu   sync.Mutex
	last map[string]string
}

func (a *announcingEngine) Apply(events []stream.Event) {
	a.engine.Apply(events)
	a.announceAll()
}

func (a *announcingEngine) announceAll() {
	a.mu.Lock()
	defer a.mu.Unlock()
	current := a.sink.Badges()
	for id, badge := range current {
		if a.last != nil && a.last[id] == badge {
			continue
		}
		if badge == "" {
			pterm.Info.Printfln("%s: no unread", a.titles(id))
		} else {
			pterm.Info.Printfln("%s: %s unread", a.titles(id), badge)
		}
	}
	a.last = current
}
