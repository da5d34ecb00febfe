package cmd

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kurobon/workbench/internal/server"
	"github.com/kurobon/workbench/internal/watcher"
)

var (
	listenPort int
	noWatch    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the project status model over HTTP",
	Long: `Serve the project's status model and command registry over HTTP.
Unless disabled, the working tree is watched and changes trigger a new
reconciliation pass after the configured debounce.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&listenPort, "port", 0, "listen port (default: server.port from config)")
	serveCmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not watch the working tree")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, p, log, err := openProject()
	if err != nil {
		return err
	}
	if listenPort != 0 {
		cfg.Server.Port = listenPort
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.NewServer(p, log)

	if cfg.Watcher.Enabled && !noWatch {
		w := watcher.New(p.Path(), watcher.Options{
			Debounce:       time.Duration(cfg.Watcher.DebounceMS) * time.Millisecond,
			IgnorePatterns: cfg.Watcher.IgnorePatterns,
			MetadataDir:    p.Backend().MetadataDir(),
		}, srv.FilesChanged, log)
		if err := w.Start(ctx); err != nil {
			return err
		}
		defer w.Stop()
	}

	return srv.ListenAndServe(ctx, cfg.Server.Addr())
}
