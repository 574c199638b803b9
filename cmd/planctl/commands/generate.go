package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"archplan/internal/planner/models"
)

func generateCmd() *cobra.Command {
	var alternatives int
	cmd := &cobra.Command{
		Use:   "generate <project>",
		Short: "Generate plan alternatives and list them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			resp, err := api.Generate(ctx, args[0], alternatives)
			if err != nil {
				return err
			}
			// список перечитывается, как это делал браузер после генерации
			plans, err := api.ListPlans(ctx, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "generation %d\n", resp.Generation)
			printPlans(out, plans)
			if len(plans) > 0 {
				fmt.Fprintf(out, "selected %s\n", plans[0].PlanID)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&alternatives, "alternatives", "n", 4, "number of alternatives (1-12)")
	return cmd
}

func plansCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "plans <project>",
		Short: "List plans of the latest generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := api.ListPlans(commandContext(cmd), args[0])
			if err != nil {
				return err
			}
			printPlans(cmd.OutOrStdout(), plans)
			return nil
		},
	}
}

func printPlans(w io.Writer, plans []models.PlanSummary) {
	if len(plans) == 0 {
		fmt.Fprintln(w, "no plans yet")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPLAN\tSCORE")
	for i, p := range plans {
		fmt.Fprintf(tw, "%d\t%s\t%.1f\n", i+1, p.PlanID, p.Score)
	}
	tw.Flush()
}
