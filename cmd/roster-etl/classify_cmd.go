package main

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/noah-isme/roster-etl/internal/service"
	"github.com/noah-isme/roster-etl/internal/source"
	appErrors "github.com/noah-isme/roster-etl/pkg/errors"
)

type classification struct {
	Class   string `json:"class"`
	Pattern string `json:"pattern,omitempty"`
	Shift   string `json:"shift,omitempty"`
	Grade   string `json:"grade,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newClassifyCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "classify [CLASS...]",
		Short: "Show how class names are classified into pattern, shift and grade level",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if configDir != "" {
				configs, err := source.NewConfigReader(validator.New()).ReadDir(configDir)
				if err != nil {
					return appErrors.WrapAs(err, appErrors.ErrSource, "read class configurations")
				}
				for _, c := range configs {
					names = append(names, c.Name)
				}
			}
			if len(names) == 0 {
				return appErrors.Clone(appErrors.ErrUsage, "classify needs class names or --configs")
			}

			results, failed := classifyAll(names)
			if err := writeJSON(cmd.OutOrStdout(), results); err != nil {
				return err
			}
			if failed > 0 {
				return appErrors.Clone(appErrors.ErrClassification, fmt.Sprintf("%d class name(s) not recognised", failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configDir, "configs", "", "Classify every class configured in this directory")
	return cmd
}

func classifyAll(names []string) ([]classification, int) {
	results := make([]classification, 0, len(names))
	failed := 0
	for _, name := range names {
		c, err := service.Classify(name)
		if err != nil {
			failed++
			results = append(results, classification{Class: name, Error: err.Error()})
			continue
		}
		results = append(results, classification{
			Class:   name,
			Pattern: c.Pattern.String(),
			Shift:   string(c.Shift),
			Grade:   c.GradeLevel.String(),
		})
	}
	return results, failed
}
