package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sudankdk/cee/internal/mcptool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the code_run tool over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		return mcptool.New(a.svc).ServeStdio(Version)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
