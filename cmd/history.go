package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/pytutor/internal/infrastructure/sqlite"
	"github.com/zjrosen/pytutor/internal/presentation"
)

var (
	historyLimit   int
	historySession string
	historyJSON    bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent runs",
	Long: `List recent runs from the local history database.

Examples:
  pytutor history
  pytutor history --limit 50
  pytutor history --session 4f1c... --json
  pytutor history --json | jq '.[].output'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.History.DBPath == "" {
			return fmt.Errorf("history.db_path is not set")
		}
		db, err := sqlite.NewDB(cfg.History.DBPath)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		var runs []sqlite.Run
		if historySession != "" {
			runs, err = db.Runs().FindByGUID(cmd.Context(), historySession)
		} else {
			runs, err = db.Runs().ListRecent(cmd.Context(), historyLimit)
		}
		if err != nil {
			return err
		}

		formatter := presentation.NewFormatter(cmd.OutOrStdout())
		dtos := presentation.FromRuns(runs)
		if historyJSON {
			return formatter.FormatRuns(dtos)
		}
		return formatter.FormatRunsTable(dtos)
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show")
	historyCmd.Flags().StringVarP(&historySession, "session", "s", "", "show every turn of one session")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print JSON")
	rootCmd.AddCommand(historyCmd)
}
