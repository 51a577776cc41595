package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	app "beetle-pipeline/internal/application"
	"beetle-pipeline/internal/container"
)

func cropCommand(c *container.Container) *cobra.Command {
	var p app.CropParams

	cmd := &cobra.Command{
		Use:   "crop-annotations",
		Short: "Extract specimen crops from CVAT annotations",
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.CropService.Run(cmd.Context(), p)
			if err != nil {
				return err
			}

			notifyDone(cmd.Context(), c, fmt.Sprintf("crop-annotations: %d of %d boxes saved, %d images missing, %d failed",
				report.Saved, report.Boxes, report.MissingImages, report.FailedImages))
			return nil
		},
	}

	cmd.Flags().StringVar(&p.XMLFile, "xml-file", "", "Path to the CVAT annotations XML file")
	cmd.Flags().StringVar(&p.ImagesDir, "images-dir", "", "Directory containing the group images")
	cmd.Flags().StringVar(&p.OutputDir, "output-dir", "", "Directory to save the specimen crops")
	cmd.Flags().IntVar(&p.Padding, "padding", 0, "Padding around each box in pixels")
	for _, name := range []string{"xml-file", "images-dir", "output-dir"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
