package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "todoplanner",
		Short:         "Personal to-do planner with recurring tasks and reminders",
		Long:          "Keeps dated, timed, optionally recurring tasks in a local SQLite file and reminds you through Telegram.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newBotCmd())
	rootCmd.AddCommand(newAddCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newToggleCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newCategoriesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
