package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/reinacht/medtrack/internal/config"
	"github.com/reinacht/medtrack/internal/registry"
	"github.com/reinacht/medtrack/internal/scheduler"
	"github.com/reinacht/medtrack/internal/server"
	"github.com/reinacht/medtrack/internal/sound"
	"github.com/reinacht/medtrack/internal/store"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the reminder scheduler and HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Resolve database path
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	reg := registry.Load(db)
	player := newPlayer(cfg, dbPath)

	feed := server.NewFeed(100)
	sched := scheduler.New(reg, feed.Record, player, cfg.Scheduler.PollInterval, cfg.Sound.Enabled)
	sched.Start()
	defer sched.Stop()

	srv := server.New(db, reg, sched, player, feed, cfg.Scheduler.Snooze, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "medtrack serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  poll: %s  snooze: %s\n", cfg.Scheduler.PollInterval, cfg.Scheduler.Snooze)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}

// newPlayer picks the audio backend: a sound-file directory with an external
// player command when configured, otherwise the terminal bell. Disabled
// sound still returns a player so per-call toggles stay possible.
func newPlayer(cfg config.Config, dbPath string) sound.Player {
	dir := cfg.Sound.Dir
	if dir == "" {
		dir = filepath.Join(filepath.Dir(dbPath), "sound_files")
	}
	if cfg.Sound.Command != "" {
		return sound.NewDir(dir, cfg.Sound.Command)
	}
	return sound.Bell{}
}
