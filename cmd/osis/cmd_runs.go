package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"osis/internal/format"
	"osis/internal/store"
)

var runsListFlags struct {
	db     string
	limit  int
	format string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect the training runs registry",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded training runs, newest first",
	RunE:  runRunsList,
}

func init() {
	f := runsListCmd.Flags()
	f.StringVar(&runsListFlags.db, "db", store.DefaultDBPath, "Runs registry database path")
	f.IntVar(&runsListFlags.limit, "limit", 20, "Maximum rows to show (0 = all)")
	f.StringVar(&runsListFlags.format, "format", "ascii", "Table format (ascii, markdown)")
	runsCmd.AddCommand(runsListCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	mode, err := format.ParseMode(runsListFlags.format)
	if err != nil {
		return err
	}
	s, err := store.Open(runsListFlags.db)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.ListRuns(runsListFlags.limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	tbl := format.NewTable(mode)
	tbl.Header("ID", "Created", "Dataset", "Samples", "Took", "R²", "RMSE", "OK")
	tbl.RightAlign(1, 4, 5, 6, 7)
	for _, r := range runs {
		tbl.Row(r.ID, r.CreatedAt, format.Truncate(r.DatasetPath, 32), format.FmtCount(r.Samples),
			format.FmtDuration(r.Duration),
			fmt.Sprintf("%.5f", r.R2), fmt.Sprintf("%.4f", r.RMSE),
			format.BoolMark(r.Status == store.StatusSuccess))
	}
	fmt.Fprintln(out, tbl.String())
	return nil
}
