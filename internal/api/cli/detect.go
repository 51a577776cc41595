package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	app "beetle-pipeline/internal/application"
	"beetle-pipeline/internal/container"
)

func detectCommand(c *container.Container) *cobra.Command {
	var p app.DetectParams

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Extract specimen crops with a zero-shot object detector",
		RunE: func(cmd *cobra.Command, args []string) error {
			if p.CropSize <= 0 {
				return fmt.Errorf("crop size must be positive, got %d", p.CropSize)
			}

			report, err := c.DetectionService.Run(cmd.Context(), p)
			if err != nil {
				return err
			}

			notifyDone(cmd.Context(), c, fmt.Sprintf("detect: %d crops from %d of %d images, %d failed",
				report.Crops, report.DetectedImages, report.Images, report.FailedImages))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.CSVPath, "csv-path", "", "Path to the input CSV file")
	f.StringVar(&p.ImageDir, "image-dir", "", "Directory containing group images")
	f.StringVar(&p.SaveFolder, "save-folder", "", "Folder to save individual images and CSVs")
	f.StringVar(&p.OutputCSV, "output-csv", "", "Path to save the output CSV file")
	f.StringVar(&p.Query.ModelID, "model-id", "IDEA-Research/grounding-dino-base", "Model ID of the zero-shot detector")
	f.StringVar(&p.Query.Prompt, "text", "a beetle.", "Text prompt for detection")
	f.Float64Var(&p.Query.BoxThreshold, "box-threshold", 0.2, "Box threshold for detection")
	f.Float64Var(&p.Query.TextThreshold, "text-threshold", 0.2, "Text threshold for detection")
	f.Float64Var(&p.Padding, "padding", 0.1, "Padding factor for cropping")
	f.Float64Var(&p.IoUThreshold, "iou-threshold", 0.6, "IoU threshold for NMS")
	f.StringVar(&p.PreferredAnnotator, "preferred-annotator", "specific_user", "Annotator whose row is kept for each specimen")
	f.IntVar(&p.CropSize, "crop-size", 512, "Side of the square output crop in pixels")
	for _, name := range []string{"csv-path", "image-dir", "save-folder", "output-csv"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}
