package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/steveyegge/toolkit/internal/retirement"
	"github.com/steveyegge/toolkit/internal/types"
)

var retireCmd = &cobra.Command{
	Use:   "retire",
	Short: "Project retirement savings",
	Long: `Project savings growth until retirement and drawdown afterwards.

Rates are annual percentages (7 means 7%). Income is in today's money and
grows with inflation. Inputs start from built-in defaults, or from a saved
plan with --load, and any flag given overrides them.

Examples:
  tk retire --age 35 --retire-at 62 --savings 80000 --monthly 1200
  tk retire --load mine --return 5.5 --years
  tk retire --age 40 --income 5000 --save mine`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		plan := retirement.DefaultPlan()
		if err := loadInputs(ctx, cmd, types.ToolRetirement, &plan); err != nil {
			return err
		}
		if err := applyPlanFlags(cmd, &plan); err != nil {
			return err
		}

		proj, err := retirement.Project(plan)
		if err != nil {
			return err
		}
		if err := saveInputs(ctx, cmd, types.ToolRetirement, plan); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(proj)
		}
		printProjection(out, proj)
		if years, _ := cmd.Flags().GetBool("years"); years {
			printYears(out, proj)
		}
		return nil
	},
}

func init() {
	f := retireCmd.Flags()
	f.Int("age", 0, "Current age")
	f.Int("retire-at", 0, "Retirement age")
	f.Int("life", 0, "Life expectancy")
	f.String("savings", "", "Current savings")
	f.String("monthly", "", "Monthly contribution")
	f.String("income", "", "Desired monthly income in retirement (today's money)")
	f.String("return", "", "Annual return before retirement (%)")
	f.String("post-return", "", "Annual return after retirement (%) (default: --return)")
	f.String("inflation", "", "Annual inflation (%)")
	f.String("contribution-growth", "", "Yearly increase of the monthly contribution (%)")
	f.Bool("years", false, "Print the year-by-year table")
	f.Bool("json", false, "Print the projection as JSON")
	addStateFlags(retireCmd)
	rootCmd.AddCommand(retireCmd)
}

// applyPlanFlags overrides plan fields with the flags the user set
func applyPlanFlags(cmd *cobra.Command, plan *retirement.Plan) error {
	flags := cmd.Flags()
	ints := map[string]*int{
		"age":       &plan.CurrentAge,
		"retire-at": &plan.RetirementAge,
		"life":      &plan.LifeExpectancy,
	}
	for name, dest := range ints {
		if flags.Changed(name) {
			*dest, _ = flags.GetInt(name)
		}
	}

	decimals := map[string]*decimal.Decimal{
		"savings":             &plan.CurrentSavings,
		"monthly":             &plan.MonthlyContribution,
		"income":              &plan.DesiredMonthlyIncome,
		"return":              &plan.AnnualReturn,
		"inflation":           &plan.InflationRate,
		"contribution-growth": &plan.ContributionGrowth,
	}
	for name, dest := range decimals {
		if !flags.Changed(name) {
			continue
		}
		v, err := parseAmount(flags, name)
		if err != nil {
			return err
		}
		*dest = v
	}
	if flags.Changed("post-return") {
		v, err := parseAmount(flags, "post-return")
		if err != nil {
			return err
		}
		plan.PostRetirementReturn = &v
	}
	return nil
}

type stringFlags interface {
	GetString(name string) (string, error)
}

func parseAmount(flags stringFlags, name string) (decimal.Decimal, error) {
	s, _ := flags.GetString(name)
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, s)
	}
	return v, nil
}

// money formats an amount as $1,234.56
func money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", d.Round(2).InexactFloat64())
}

func printProjection(w io.Writer, p *retirement.Projection) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	plan := p.Plan
	fmt.Fprintf(w, "\n%s\n\n", cyan("Retirement Projection"))
	fmt.Fprintf(w, "  Age %d → retire at %d → plan to %d\n", plan.CurrentAge, plan.RetirementAge, plan.LifeExpectancy)
	fmt.Fprintf(w, "  Return %s%%, inflation %s%%\n\n", plan.AnnualReturn, plan.InflationRate)

	fmt.Fprintf(w, "  %-30s %s %s\n", "Nest egg at retirement", money(p.NestEgg), gray("("+money(p.NestEggReal)+" today)"))
	fmt.Fprintf(w, "  %-30s %s\n", "Total contributions", money(p.TotalContributions))
	fmt.Fprintf(w, "  %-30s %s\n", "Required nest egg", money(p.RequiredNestEgg))
	fmt.Fprintf(w, "  %-30s %s\n", "Income needed at retirement", money(p.MonthlyIncomeAtRetirement)+"/mo")
	fmt.Fprintf(w, "  %-30s %s\n", "Sustainable income", money(p.SustainableMonthlyIncome)+"/mo")
	fmt.Fprintln(w)

	if p.OnTrack {
		fmt.Fprintf(w, "  %s On track\n\n", green("✓"))
		return
	}
	if !p.Shortfall.IsZero() {
		fmt.Fprintf(w, "  %s Shortfall of %s\n", red("✗"), money(p.Shortfall))
	}
	if p.DepletionAge > 0 {
		fmt.Fprintf(w, "  %s Savings run out at age %d\n", red("✗"), p.DepletionAge)
	}
	fmt.Fprintln(w)
}

func printYears(w io.Writer, p *retirement.Projection) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s\n", bold(fmt.Sprintf("  %-4s %16s %14s %14s %14s %16s %16s",
		"Age", "Start", "Contributions", "Growth", "Withdrawals", "End", "Today's money")))
	for _, y := range p.Years {
		fmt.Fprintf(w, "  %-4d %16s %14s %14s %14s %16s %16s\n", y.Age,
			money(y.StartBalance), money(y.Contributions), money(y.Growth),
			money(y.Withdrawals), money(y.EndBalance), money(y.RealBalance))
	}
	fmt.Fprintln(w)
}
