package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sudankdk/cee/internal/service"
	"github.com/sudankdk/cee/internal/store/sqlite"
	"github.com/sudankdk/cee/internal/utils"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage stored code templates",
}

var templatesImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import templates from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		svc, closeStore, err := historyService()
		if err != nil {
			return err
		}
		defer closeStore()

		tpls, err := svc.ImportTemplates(cmd.Context(), f)
		if err != nil {
			return err
		}
		for _, t := range tpls {
			fmt.Fprintf(cmd.OutOrStdout(), "imported #%d %s (%s)\n", t.ID, t.Title, t.Language)
		}
		return nil
	},
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeStore, err := historyService()
		if err != nil {
			return err
		}
		defer closeStore()

		tpls, err := svc.Templates(cmd.Context())
		if err != nil {
			return err
		}
		if len(tpls) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tLANGUAGE\tCODE")
		for _, t := range tpls {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", t.ID, t.Title, t.Language, utils.Preview(t.Code, 40))
		}
		return w.Flush()
	},
}

// historyService opens only the store. Listing and importing never touch the
// docker daemon.
func historyService() (*service.CodeExecutionService, func(), error) {
	st, err := sqlite.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, nil, err
	}
	return service.NewCodeExecutionService(st, nil), func() { st.Close() }, nil
}

func init() {
	templatesCmd.AddCommand(templatesImportCmd)
	templatesCmd.AddCommand(templatesListCmd)
	rootCmd.AddCommand(templatesCmd)
}
