package cmd

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sudankdk/cee/internal/store"
	"github.com/sudankdk/cee/internal/utils"
)

var (
	historyLimit    int
	historyLanguage string
	historyUser     int64
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent executions",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := historyService()
		if err != nil {
			return err
		}
		defer closeStore()

		opts := store.ExecutionListOptions{Language: historyLanguage, Limit: historyLimit}
		if cmd.Flags().Changed("user") {
			opts.UserID = &historyUser
		}
		recs, err := svc.History(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if len(recs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No executions found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLANGUAGE\tSTATUS\tEXIT\tTIME\tCREATED\tCODE")
		for _, r := range recs {
			exit := "-"
			if r.ExitCode != nil {
				exit = strconv.Itoa(*r.ExitCode)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%dms\t%s\t%s\n",
				r.ID, r.Language, r.Status, exit, r.ExecutionTimeMs,
				r.CreatedAt.Local().Format("2006-01-02 15:04"), utils.Preview(r.Code, 30))
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum rows")
	historyCmd.Flags().StringVar(&historyLanguage, "language", "", "only this language")
	historyCmd.Flags().Int64Var(&historyUser, "user", 0, "only this user id")
	rootCmd.AddCommand(historyCmd)
}
