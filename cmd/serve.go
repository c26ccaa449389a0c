package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plansync/config"
	"plansync/reconcile"
	"plansync/storage"
	"plansync/web"
)

var (
	servePort      int
	serveDBPath    string
	serveStateFile string
	serveNoOpen    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start local web UI to review and apply shift plan changes",
	Long: `Start a local HTTP server with a single review page.

The page runs the same classification as "plansync sync" and lets you pick
which changes to apply. After a successful apply the local snapshot is
refreshed automatically.`,
	Example: `
  # Start local server on default port
  plansync serve

  # Start with explicit db/state-file and custom port
  plansync serve --port 9090 --db ./plansync.db --state-file ~/.plansync/erp-session-state.json
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		stateFile, err := resolveSessionStatePath(serveStateFile)
		if err != nil {
			return err
		}
		schedule, err := buildScheduleClient(cfg, stateFile, "plansync-serve/1.0")
		if err != nil {
			return err
		}
		client, err := buildLighthouseClient(cfg)
		if err != nil {
			return err
		}

		store, err := storage.OpenSQLite(serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		svc := &reconcile.Service{
			Schedule:  schedule,
			Devices:   client,
			Store:     store,
			ClusterID: cfg.Lighthouse.ClusterID,
		}

		addr := fmt.Sprintf("127.0.0.1:%d", servePort)
		server := &http.Server{
			Addr:    addr,
			Handler: web.NewServer(svc, client, store, *cfg),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		pageURL := "http://" + addr + "/"
		fmt.Printf("Review UI listening on %s\n", pageURL)
		if !serveNoOpen {
			if err := openURLInBrowser(pageURL); err != nil {
				fmt.Fprintf(os.Stderr, "Could not open browser: %v\n", err)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 8080, "HTTP port for the local web server")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "./plansync.db", "Path to local SQLite snapshot database")
	serveCmd.Flags().StringVar(&serveStateFile, "state-file", "", "Path to ERP session state JSON (default: $HOME/.plansync/erp-session-state.json)")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
