package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	appErrors "github.com/noah-isme/roster-etl/pkg/errors"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "roster-etl",
		Short:         "Load class configurations and the student roster into Postgres",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newLoadCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newClassifyCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(appErrors.ExitCodeOf(err))
	}
}
