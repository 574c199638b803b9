package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func downloadCmd() *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "download <project> <plan>",
		Short: "Download a plan drawing or its bill of materials",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			projectID, planID := args[0], args[1]

			var data []byte
			switch format {
			case "svg":
				svg, err := api.PlanSVG(ctx, projectID, planID)
				if err != nil {
					return err
				}
				data = []byte(svg)
			case "png":
				png, err := api.PlanPNG(ctx, projectID, planID)
				if err != nil {
					return err
				}
				data = png
			case "csv":
				csv, err := api.BOMCSV(ctx, projectID, planID)
				if err != nil {
					return err
				}
				data = csv
			default:
				return fmt.Errorf("unknown format %q (svg, png, csv)", format)
			}

			if output == "" {
				output = DefaultFilename(planID, format)
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "saved %s (%d bytes)\n", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "svg", "svg, png or csv")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")
	return cmd
}

// DefaultFilename: имя файла, под которым браузер сохранял артефакт.
func DefaultFilename(planID, format string) string {
	if format == "csv" {
		return planID + "-bom.csv"
	}
	return planID + "." + format
}
