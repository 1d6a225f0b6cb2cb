package cli

import (
	"fmt"
	"os"

	"github.com/reinacht/medtrack/internal/config"
	"github.com/reinacht/medtrack/internal/registry"
	"github.com/reinacht/medtrack/internal/store"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON record snapshot, replacing current records",
	Long:  "Reads a snapshot file and replaces the stored records with it. Accepts both the list-of-people form this tool writes and the old single-person object form.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	doc, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot file: %w", err)
	}

	people, err := store.DecodeSnapshot(doc)
	if err != nil {
		return fmt.Errorf("parse snapshot file: %w", err)
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	reg := registry.Load(db)
	if err := reg.Replace(people); err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}

	fmt.Fprintf(os.Stderr, "imported %d people from %s\n", len(people), args[0])
	return nil
}

// openDB resolves the configured database path and opens it.
func openDB() (*store.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	path := cfg.Database.Path
	if path == "" {
		path, err = store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve db path: %w", err)
		}
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
