package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
)

var imagesCmd = &cobra.Command{
	Use:   "images",
	Short: "Show which execution images are present on the daemon",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LANGUAGE\tIMAGE\tSTATUS\tSIZE")
		missing := 0
		for _, st := range a.registry.Check(cmd.Context()) {
			status, size := "present", units.HumanSize(float64(st.Size))
			if !st.Present {
				status, size = "missing", "-"
				missing++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", st.Language, st.ImageName, status, size)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if missing > 0 {
			return fmt.Errorf("%d image(s) missing; build them before executing code", missing)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(imagesCmd)
}
