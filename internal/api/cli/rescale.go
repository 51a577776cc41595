package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	app "beetle-pipeline/internal/application"
	"beetle-pipeline/internal/container"
)

func rescaleCommand(c *container.Container) *cobra.Command {
	var p app.RescaleParams

	cmd := &cobra.Command{
		Use:   "rescale",
		Short: "Rescale individual crops with uniform per-group-image factors",
		RunE: func(cmd *cobra.Command, args []string) error {
			p = withRescaleDefaults(p)

			summary, err := c.RescaleService.Run(cmd.Context(), p)
			if err != nil {
				return err
			}

			notifyDone(cmd.Context(), c, fmt.Sprintf("rescale: %d of %d images resized, %d skipped, %d errors",
				summary.SuccessfullyProcessed, summary.TotalIndividualImages, summary.SkippedNoScaling, summary.Errors))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.BaseDir, "base-dir", "2018-NEON-beetles", "Dataset base directory")
	f.StringVar(&p.GroupDir, "group-dir", "", "Original group images (default <base-dir>/group_images)")
	f.StringVar(&p.ProcessDir, "process-dir", "", "Resized group images (default <base-dir>/processed_images)")
	f.StringVar(&p.Manifest, "manifest", "", "Individual specimens CSV (default <base-dir>/individual_specimens.csv)")
	f.StringVar(&p.OutputDir, "output-dir", "", "Output directory (default <process-dir>/individual_images_resized_uniform)")

	return cmd
}

// withRescaleDefaults выводит незаданные каталоги из базового.
func withRescaleDefaults(p app.RescaleParams) app.RescaleParams {
	if p.GroupDir == "" {
		p.GroupDir = filepath.Join(p.BaseDir, "group_images")
	}
	if p.ProcessDir == "" {
		p.ProcessDir = filepath.Join(p.BaseDir, "processed_images")
	}
	if p.Manifest == "" {
		p.Manifest = filepath.Join(p.BaseDir, "individual_specimens.csv")
	}
	if p.OutputDir == "" {
		p.OutputDir = filepath.Join(p.ProcessDir, "individual_images_resized_uniform")
	}
	return p
}
