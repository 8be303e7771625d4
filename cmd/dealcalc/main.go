// dealcalc evaluates property and deal files offline with the same engine
// the API uses.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/config"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/dealdata"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/finance"
	"github.com/5CentralCapital/Portfolio-Anayltics-sub001/internal/models"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var engine *finance.Engine

	root := &cobra.Command{
		Use:   "dealcalc",
		Short: "Real-estate deal calculator",
		Long: `dealcalc reads property financials or legacy deal analyzer files
(JSON or Hjson, "-" for stdin) and prints the computed metrics as JSON.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a := finance.DefaultAssumptions()
			if path, _ := cmd.Flags().GetString("assumptions"); path != "" {
				var err error
				if a, err = config.LoadAssumptions(path); err != nil {
					return err
				}
			}
			engine = finance.NewEngine(a)
			return nil
		},
	}
	root.PersistentFlags().String("assumptions", "", "YAML file overriding engine thresholds and refinance defaults")

	metricsCmd := &cobra.Command{
		Use:   "metrics [file]",
		Short: "Compute return metrics for property financials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readFinancials(cmd, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), engine.ComputeMetrics(*p))
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [file]",
		Short: "Run the rent, cap rate and interest rate sensitivity sweep",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readFinancials(cmd, args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), engine.Sweep(*p))
		},
	}

	exitCmd := &cobra.Command{
		Use:   "exit [file]",
		Short: "Project hold, refinance and sale scenarios",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := readFinancials(cmd, args[0])
			if err != nil {
				return err
			}
			years, _ := cmd.Flags().GetInt("years")
			g := growthFlags(cmd)
			return printJSON(cmd.OutOrStdout(), engine.Project(*p, years, g))
		},
	}
	exitCmd.Flags().Int("years", 5, "hold period in years")
	exitCmd.Flags().Float64("rent-growth", 0.03, "annual rent growth")
	addGrowthFlags(exitCmd)

	dealCmd := &cobra.Command{
		Use:   "deal [file]",
		Short: "Decode a deal analyzer file and compute its KPIs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			d, err := dealdata.Decode(raw)
			if err != nil {
				return fmt.Errorf("failed to decode deal: %w", err)
			}

			out := dealReport{KPIs: engine.ComputeKPIs(*d)}
			if sweep, _ := cmd.Flags().GetBool("sensitivity"); sweep {
				s := engine.SweepDeal(*d)
				out.Sensitivity = &s
			}
			if cmd.Flags().Changed("exit-years") {
				years, _ := cmd.Flags().GetInt("exit-years")
				e := engine.ProjectDeal(*d, years, growthFlags(cmd))
				out.Exit = &e
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	dealCmd.Flags().Bool("sensitivity", false, "include the sensitivity sweep")
	dealCmd.Flags().Int("exit-years", 0, "include an exit projection over this many years (0 uses the deal's hold period)")
	addGrowthFlags(dealCmd)

	root.AddCommand(metricsCmd, sweepCmd, exitCmd, dealCmd)
	return root
}

type dealReport struct {
	KPIs        models.DealKPIs           `json:"kpis"`
	Sensitivity *models.SensitivityResult `json:"sensitivity,omitempty"`
	Exit        *models.ExitScenarios     `json:"exit,omitempty"`
}

func addGrowthFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("expense-growth", 0.02, "annual expense growth")
	cmd.Flags().Float64("sale-costs", 0.06, "sale costs as a fraction of the sale price")
}

// growthFlags reads the growth flags; rent growth is absent on the deal command
func growthFlags(cmd *cobra.Command) models.GrowthAssumptions {
	var g models.GrowthAssumptions
	g.AnnualRentGrowth, _ = cmd.Flags().GetFloat64("rent-growth")
	g.AnnualExpenseGrowth, _ = cmd.Flags().GetFloat64("expense-growth")
	g.SaleCostsPercent, _ = cmd.Flags().GetFloat64("sale-costs")
	return g
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// readFinancials accepts the API's snake_case JSON, leniently normalized
func readFinancials(cmd *cobra.Command, path string) (*models.PropertyFinancials, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return nil, err
	}
	data, err := dealdata.Normalize(raw)
	if err != nil {
		return nil, err
	}
	var p models.PropertyFinancials
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse financials: %w", err)
	}
	return &p, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
