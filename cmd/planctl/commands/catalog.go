package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List project types, cultural tunings and municipal codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := api.Catalog(commandContext(cmd))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project types:\n  %s\n", strings.Join(cat.ProjectTypes, "\n  "))
			fmt.Fprintf(out, "Cultural tunings:\n  %s\n", strings.Join(cat.CulturalTunings, "\n  "))
			fmt.Fprintf(out, "Municipal codes:\n  %s\n", strings.Join(cat.MunicipalCodes, "\n  "))
			return nil
		},
	}
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check that the backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := api.Status(commandContext(cmd))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "backend %v at %s\n", st["status"], serverURL)
			return nil
		},
	}
}
