package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"archplan/internal/planner/models"
	"archplan/internal/planner/render"
)

func showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <project> <plan>",
		Short: "Show rooms, compliance checks and the cost estimate of a plan",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := api.LoadPlan(commandContext(cmd), args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := printRooms(out, bundle.SVG); err != nil {
				return err
			}
			fmt.Fprintln(out)
			printCompliance(out, bundle.Compliance)
			fmt.Fprintln(out)
			printEstimate(out, bundle.Estimate)
			return nil
		},
	}
}

// printRooms читает комнаты прямо из чертежа, который видит пользователь.
func printRooms(w io.Writer, svg string) error {
	rooms, err := render.NewRenderer().Rooms(svg)
	if err != nil {
		return fmt.Errorf("read drawing: %w", err)
	}
	fmt.Fprintln(w, "Rooms")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROOM\tKIND\tSIZE\tAREA")
	for _, room := range rooms {
		fmt.Fprintf(tw, "%s\t%s\t%gx%g\t%.1f\n", room.Name, room.Kind, room.Width, room.Height, room.Area())
	}
	return tw.Flush()
}

func printCompliance(w io.Writer, report models.ComplianceReport) {
	fmt.Fprintf(w, "Compliance (%.0f%% passed)\n", report.PassRate()*100)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "\tCHECK\tSOURCE\tMESSAGE")
	for _, it := range report.Items {
		mark := "FAIL"
		if it.Passed {
			mark = "ok"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, it.Name, it.Source, it.Message)
	}
	tw.Flush()
}

func printEstimate(w io.Writer, est models.Estimate) {
	fmt.Fprintln(w, "Bill of materials")
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tQTY\tUNIT\tRATE\tCOST")
	for _, row := range est.BOM {
		fmt.Fprintf(tw, "%s\t%g\t%s\t%s\t%s\n", row.Item, row.Quantity, row.Unit, optional(row.UnitRate), optional(row.Cost))
	}
	tw.Flush()
	fmt.Fprintf(w, "Total: %s %.0f - %.0f\n", est.Currency, est.TotalCostLow, est.TotalCostHigh)
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}
