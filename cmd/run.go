package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sudankdk/cee/internal/service"
	"github.com/sudankdk/cee/internal/utils"
)

var (
	langFlag      string
	stdinFileFlag string
)

var runCmd = &cobra.Command{
	Use:   "run <file>",
	Short: "Execute a source file in its sandbox",
	Long: `Execute a source file in a fresh container and print its output.

The language is detected from the file extension unless --lang is given. The
process exits with the program's exit code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		code, err := utils.ReadSubmission(args[0], langFlag, stdinFileFlag)
		if err != nil {
			return err
		}

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		rec, err := a.svc.Execute(cmd.Context(), nil, service.ExecuteInput{
			Language: code.Language,
			Code:     code.SourceCode,
			Stdin:    code.Stdin,
		})
		if err != nil {
			return err
		}

		if rec.Stdout != "" {
			fmt.Fprintln(cmd.OutOrStdout(), rec.Stdout)
		}
		if rec.Stderr != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), rec.Stderr)
		}
		if rec.ExitCode != nil && *rec.ExitCode != 0 {
			a.Close()
			os.Exit(*rec.ExitCode)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&langFlag, "lang", "l", "", "language (default: detected from extension)")
	runCmd.Flags().StringVar(&stdinFileFlag, "stdin-file", "", `file fed to the program's stdin ("-" for this process's stdin)`)
	rootCmd.AddCommand(runCmd)
}
