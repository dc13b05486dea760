package main

import (
	"github.com/spf13/cobra"
)

func newValidateCmd() *cobra.Command {
	var (
		src  sourceFlags
		opts loadFlags
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the roster against the class configurations without touching the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.dryRun = true
			return runLoad(cmd.Context(), cmd, cmd.OutOrStdout(), &src, opts)
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Also reject roster rows with unconfigured classes (default LOADER_STRICT)")
	cmd.Flags().StringVar(&opts.reportFormat, "report-format", "", "Run report artifact: none, csv or pdf (default REPORT_FORMAT)")
	return cmd
}
