package cli

import (
	"fmt"
	"os"

	"github.com/reinacht/medtrack/internal/registry"
	"github.com/reinacht/medtrack/internal/store"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the current records as a JSON snapshot file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	reg := registry.Load(db)
	doc, err := store.EncodeSnapshot(reg.People())
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.WriteFile(args[0], doc, 0644); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "exported to %s\n", args[0])
	return nil
}
