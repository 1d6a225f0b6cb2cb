package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "medtrack",
	Short: "Medication schedules and reminders for tracked individuals",
	Long:  "Medtrack tracks who takes which medication when, reminds exactly once per scheduled dose per day, and learns the entries you repeat. Single Go binary.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}
