package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	app "beetle-pipeline/internal/application"
	"beetle-pipeline/internal/container"
	"beetle-pipeline/internal/domain/entity"
)

func agreementCommand(c *container.Container) *cobra.Command {
	var (
		p         app.AgreementParams
		mode      string
		pairsPath string
	)

	cmd := &cobra.Command{
		Use:   "agreement",
		Short: "Compute agreement metrics and plot scatter panels",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if p.Mode, err = app.ParseAgreementMode(mode); err != nil {
				return err
			}
			if pairsPath != "" {
				if p.Pairs, err = app.LoadPairs(pairsPath); err != nil {
					return err
				}
			}

			report, err := c.AgreementService.Run(cmd.Context(), p)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)
			notifyDone(cmd.Context(), c, fmt.Sprintf("agreement (%s): %s, mean RMSE %.4f",
				p.Mode, report.Figure, report.Summary.Metrics.RMSE))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&p.DataPath, "data", "data/traits.csv", "CSV with the trait measurements")
	f.StringVar(&mode, "mode", string(app.ModeInterAnnotator), "Comparison mode: inter-annotator or system")
	f.StringVar(&p.OutputPath, "output", "", "Output PDF (default depends on mode)")
	f.StringVar(&pairsPath, "pairs", "", "YAML file with the column pairs to compare")
	f.Float64Var(&p.LimMin, "lim-min", 0.15, "Lower axis limit")
	f.Float64Var(&p.LimMax, "lim-max", 0.65, "Upper axis limit")

	return cmd
}

func printReport(w io.Writer, report *entity.AgreementReport) {
	fmt.Fprintf(w, "Agreement figure saved at: %s\n\n", report.Figure)
	for _, r := range report.Pairs {
		printMetrics(w, r)
	}
	printMetrics(w, *report.Summary)
}

func printMetrics(w io.Writer, r entity.PairResult) {
	fmt.Fprintf(w, "%s:\n", r.Title)
	fmt.Fprintf(w, "   RMSE       = %.4f\n", r.Metrics.RMSE)
	fmt.Fprintf(w, "   R² Score   = %.4f\n", r.Metrics.R2)
	fmt.Fprintf(w, "   Avg. Bias  = %.4f\n\n", r.Metrics.Bias)
}
