package cmd

import (
	"fmt"

	"github.com/abdul-hamid-achik/domspec/packages/core/config"
	"github.com/abdul-hamid-achik/domspec/packages/history"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect saved runs",
	Long: `List saved runs or query a stored run's result document.

Examples:
  domspec history
  domspec history --limit 50
  domspec history --show <run-id>
  domspec history --show <run-id> --filter "pages.0.checks.#(passed==false)#.description"`,
	RunE: historyCommand,
}

var (
	historyLimit  int
	historyShow   string
	historyFilter string
	historyDB     string
)

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to list")
	historyCmd.Flags().StringVar(&historyShow, "show", "", "show the stored results of a run id")
	historyCmd.Flags().StringVar(&historyFilter, "filter", "", "gjson path applied to the stored results")
	historyCmd.Flags().StringVar(&historyDB, "db", "", "history database path")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	path := historyDB
	if path == "" {
		cfg, err := config.LoadConfig("")
		if err != nil {
			return err
		}
		path = cfg.HistoryPath
	}
	if path == "" {
		path = ".domspec_history.db"
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if historyShow != "" {
		if historyFilter != "" {
			value, err := store.Extract(ctx, historyShow, historyFilter)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
			return nil
		}
		results, err := store.Results(ctx, historyShow)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, results)
		return nil
	}

	entries, err := store.List(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No saved runs.")
		return nil
	}

	for _, e := range entries {
		status := "ok"
		if e.Failed > 0 {
			status = fmt.Sprintf("%d failed", e.Failed)
		}
		fmt.Fprintf(out, "%s  %s  %s  %d checks (%s)  %dms\n",
			e.ID, e.StartedAt.Format("2006-01-02 15:04:05"), e.SpecFile, e.Total, status, e.Duration.Milliseconds())
	}
	return nil
}
