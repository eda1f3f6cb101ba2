package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rgehrsitz/tpacalc/internal/calculation"
	"github.com/rgehrsitz/tpacalc/internal/compare"
	"github.com/rgehrsitz/tpacalc/internal/config"
	"github.com/rgehrsitz/tpacalc/internal/domain"
	"github.com/rgehrsitz/tpacalc/internal/logging"
	"github.com/rgehrsitz/tpacalc/internal/output"
	"github.com/rgehrsitz/tpacalc/internal/server"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tpacalc %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:   "tpacalc",
	Short: "401(k) compliance calculator CLI",
	Long:  "ADP/ACP nondiscrimination testing with top-down correction and 415(c) annual additions correction for defined contribution plans",
}

// loadSnapshot captures limits from the rules file, or statutory defaults when none is given
func loadSnapshot(cmd *cobra.Command) (*config.Snapshot, error) {
	rulesFile, _ := cmd.Flags().GetString("rules")
	if rulesFile == "" {
		return config.Capture(nil)
	}
	rules, err := config.NewInputParser().LoadPlanRules(rulesFile)
	if err != nil {
		return nil, err
	}
	return config.Capture(rules)
}

// cliLogger returns a zerolog-backed logger on stderr when --debug is set
func cliLogger(cmd *cobra.Command) (calculation.Logger, error) {
	debugMode, _ := cmd.Flags().GetBool("debug")
	if !debugMode {
		return calculation.NopLogger{}, nil
	}
	logger, err := logging.New(cmd.ErrOrStderr(), "debug", true)
	if err != nil {
		return nil, err
	}
	return logging.NewAdapter(logger), nil
}

func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, raw)
	}
	return v, nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := (&output.JSONFormatter{Pretty: true}).Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func isJSON(cmd *cobra.Command) bool {
	format, _ := cmd.Flags().GetString("format")
	return strings.EqualFold(format, "json")
}

var testCmd = &cobra.Command{
	Use:   "test [census-file]",
	Short: "Run ADP/ACP testing and 415(c) correction for a plan-year census",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		census, err := config.NewInputParser().LoadCensus(args[0])
		if err != nil {
			return err
		}
		snapshot, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		logger, err := cliLogger(cmd)
		if err != nil {
			return err
		}

		engine := calculation.NewEngine(snapshot)
		strategy, _ := cmd.Flags().GetString("strategy")
		engine.Strategy = domain.LevelingStrategy(strategy)
		distribution, _ := cmd.Flags().GetString("distribution")
		engine.Distribution = domain.DistributionMethod(distribution)
		engine.SetLogger(logger)

		report, err := engine.RunPlan(context.Background(), census)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		f, err := output.GetFormatterByName(format)
		if err != nil {
			return err
		}
		data, err := f.Format(report)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var ndtCmd = &cobra.Command{
	Use:   "ndt [records-file]",
	Short: "Run a single ADP or ACP leveling test from HCE contribution records",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := config.NewInputParser().LoadLevelingInput(args[0])
		if err != nil {
			return err
		}
		logger, err := cliLogger(cmd)
		if err != nil {
			return err
		}

		strategy, _ := cmd.Flags().GetString("strategy")
		distribution, _ := cmd.Flags().GetString("distribution")
		result, err := calculation.RunLevelingTest(input.Records, input.NHCEAverageRate,
			calculation.WithKind(input.Kind),
			calculation.WithStrategy(domain.LevelingStrategy(strategy)),
			calculation.WithDistribution(domain.DistributionMethod(distribution)),
			calculation.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		if isJSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.TestResultText(result))
		return err
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare [census-file]",
	Short: "Compare correction methods for a plan-year census",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		census, err := config.NewInputParser().LoadCensus(args[0])
		if err != nil {
			return err
		}
		snapshot, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		logger, err := cliLogger(cmd)
		if err != nil {
			return err
		}

		baseStr, _ := cmd.Flags().GetString("base")
		base, err := compare.ParseMethod(baseStr)
		if err != nil {
			return err
		}
		var alternatives []compare.Method
		withStr, _ := cmd.Flags().GetString("with")
		if withStr != "" {
			for _, name := range strings.Split(withStr, ",") {
				m, err := compare.ParseMethod(strings.TrimSpace(name))
				if err != nil {
					return err
				}
				alternatives = append(alternatives, m)
			}
		}

		ce := compare.NewCompareEngine(snapshot)
		ce.Logger = logger
		compSet, err := ce.Compare(context.Background(), census, compare.CompareOptions{
			Base:         base,
			Alternatives: alternatives,
		})
		if err != nil {
			return err
		}
		compSet.CensusPath = args[0]

		var out string
		format, _ := cmd.Flags().GetString("format")
		switch strings.ToLower(format) {
		case "table", "console":
			out = (&compare.TableFormatter{}).Format(compSet)
		case "csv":
			out, err = (&compare.CSVFormatter{}).Format(compSet)
		case "json":
			out, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
		default:
			return fmt.Errorf("unknown output format: %s (valid: table, csv, json)", format)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func loadCase(cmd *cobra.Command, path string) (*domain.AnnualAdditionsCase, error) {
	c, err := config.NewInputParser().LoadAnnualAdditionsCase(path)
	if err != nil {
		return nil, err
	}
	if !c.StatutoryDollarLimit.IsPositive() {
		snapshot, err := loadSnapshot(cmd)
		if err != nil {
			return nil, err
		}
		c.StatutoryDollarLimit = snapshot.Section415c()
	}
	return c, nil
}

var correctCmd = &cobra.Command{
	Use:   "correct-415 [case-file]",
	Short: "Apply the 415(c) correction waterfall to one participant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCase(cmd, args[0])
		if err != nil {
			return err
		}
		result, err := calculation.EvaluateAnnualAdditions(*c)
		if err != nil {
			return err
		}
		if isJSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), result)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.AnnualAdditionsText(result))
		return err
	},
}

var impactCmd = &cobra.Command{
	Use:   "impact [case-file]",
	Short: "Show how an ADP refund changes a participant's 415(c) position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadCase(cmd, args[0])
		if err != nil {
			return err
		}
		refund, err := decimalFlag(cmd, "refund")
		if err != nil {
			return err
		}
		impact, err := calculation.AnalyzeRefundImpact(*c, refund)
		if err != nil {
			return err
		}
		if isJSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), impact)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.RefundImpactText(impact))
		return err
	},
}

var earningsCmd = &cobra.Command{
	Use:   "earnings",
	Short: "Compute allocable earnings on a corrective distribution",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		values := make(map[string]decimal.Decimal, 4)
		for _, name := range []string{"excess", "beginning", "contributions", "ending"} {
			v, err := decimalFlag(cmd, name)
			if err != nil {
				return err
			}
			values[name] = v
		}

		earnings, net, err := calculation.AllocableEarnings(values["excess"], values["beginning"], values["contributions"], values["ending"])
		if err != nil {
			return err
		}
		if isJSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), domain.RefundEarnings{
				Principal:     values["excess"],
				Earnings:      earnings,
				TotalToReturn: values["excess"].Add(earnings),
			})
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.EarningsText(values["excess"], earnings, net))
		return err
	},
}

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Check how close an HCE average is to the ADP/ACP limit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		nhce, err := decimalFlag(cmd, "nhce")
		if err != nil {
			return err
		}
		hce, err := decimalFlag(cmd, "hce")
		if err != nil {
			return err
		}
		risk, err := calculation.AssessRisk(nhce, hce)
		if err != nil {
			return err
		}
		if isJSON(cmd) {
			return writeJSON(cmd.OutOrStdout(), risk)
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), output.RiskText(risk))
		return err
	},
}

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Print the limits a run would use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshot, err := loadSnapshot(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, output.TitleStyle.Render(snapshot.PlanName()))
		fmt.Fprintf(out, "Safe harbor: %t\n", snapshot.SafeHarbor())

		defaulted := make(map[string]bool)
		for _, key := range snapshot.Defaulted() {
			defaulted[key] = true
		}
		limits := snapshot.Limits()
		for _, key := range snapshot.Keys() {
			line := fmt.Sprintf("  %-28s %s", key, limits[key].StringFixed(0))
			if defaulted[key] {
				line += " (default)"
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate [census-file]",
	Short: "Validate a census file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		census, err := config.NewInputParser().LoadCensus(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Census is valid: %d employees for plan year %d\n", len(census.Employees), census.PlanYear)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the calculators over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		settingsFile, _ := cmd.Flags().GetString("config")
		settings, err := config.LoadServerSettings(settingsFile)
		if err != nil {
			return err
		}

		logger, err := logging.New(os.Stdout, settings.LogLevel, false)
		if err != nil {
			return err
		}

		var rules config.Provider
		if settings.RulesPath != "" {
			planRules, err := config.NewInputParser().LoadPlanRules(settings.RulesPath)
			if err != nil {
				return err
			}
			rules = planRules
		}

		api, err := server.NewWebAPI(logger, server.Config{
			Addr:            settings.Addr(),
			ShutdownTimeout: settings.ShutdownTimeout,
			Dependencies: server.Dependencies{
				Rules: rules,
			},
		})
		if err != nil {
			return err
		}
		return api.Start()
	},
}

func init() {
	for _, cmd := range []*cobra.Command{testCmd, ndtCmd, correctCmd, impactCmd, earningsCmd, riskCmd} {
		cmd.Flags().StringP("format", "f", "console", "Output format (console, json; test also accepts csv)")
	}
	for _, cmd := range []*cobra.Command{testCmd, compareCmd, correctCmd, impactCmd, limitsCmd} {
		cmd.Flags().String("rules", "", "Path to plan rules file (default: 2024 statutory limits)")
	}
	for _, cmd := range []*cobra.Command{testCmd, ndtCmd} {
		cmd.Flags().String("strategy", string(domain.LevelStaircase), "Leveling strategy (staircase, direct_to_target)")
		cmd.Flags().String("distribution", string(domain.DistributeByRate), "Refund distribution (rate, dollar)")
	}
	for _, cmd := range []*cobra.Command{testCmd, ndtCmd, compareCmd} {
		cmd.Flags().Bool("debug", false, "Enable debug output for leveling iterations")
	}

	compareCmd.Flags().String("base", compare.DefaultMethod.Name(), "Base correction method (strategy/distribution)")
	compareCmd.Flags().String("with", "", "Comma-separated methods to compare (default: all others)")
	compareCmd.Flags().StringP("format", "f", "table", "Output format (table, csv, json)")

	impactCmd.Flags().String("refund", "0", "ADP refund of elective deferrals")

	earningsCmd.Flags().String("excess", "0", "Excess contribution being distributed")
	earningsCmd.Flags().String("beginning", "0", "Account balance at the start of the plan year")
	earningsCmd.Flags().String("contributions", "0", "Contributions made during the plan year")
	earningsCmd.Flags().String("ending", "0", "Account balance at the end of the plan year")

	riskCmd.Flags().String("nhce", "0", "NHCE average rate as a fraction (0.03)")
	riskCmd.Flags().String("hce", "0", "HCE average rate as a fraction (0.05)")

	serveCmd.Flags().String("config", "", "Path to server settings file (TPACALC_* environment variables override it)")

	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(ndtCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(correctCmd)
	rootCmd.AddCommand(impactCmd)
	rootCmd.AddCommand(earningsCmd)
	rootCmd.AddCommand(riskCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
