package main

import (
	"os"

	"github.com/DJKarma/price-prism/internal/logging"
	"github.com/DJKarma/price-prism/internal/server"
	"github.com/DJKarma/price-prism/pkg/optimize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "priceprism"

// logger is set by the root command before any subcommand runs.
var logger = zap.NewNop()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var logLevel, logFormat string

	rootCmd := &cobra.Command{
		Use:          "priceprism",
		Short:        "Rule-based unit pricing and target-PSF optimization",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			l, err := logging.New(logLevel, logFormat, serviceName)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			_ = logger.Sync()
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", logging.FormatConsole, "log format (json, console)")

	rootCmd.AddCommand(validateCmd())
	rootCmd.AddCommand(priceCmd())
	rootCmd.AddCommand(floorsCmd())
	rootCmd.AddCommand(optimizeCmd())
	rootCmd.AddCommand(serveCmd())
	return rootCmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [project-path]",
		Short: "Validate a pricing configuration and its unit inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd.OutOrStdout(), args[0])
		},
	}
}

func priceCmd() *cobra.Command {
	var opts priceOptions

	cmd := &cobra.Command{
		Use:   "price [project-path]",
		Short: "Price every unit and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format (table, json, xlsx)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output file (required for xlsx)")
	cmd.Flags().StringVar(&opts.mode, "mode", "", "pricing mode (apartment, villa); defaults to the project type")
	return cmd
}

func floorsCmd() *cobra.Command {
	var maxFloor int

	cmd := &cobra.Command{
		Use:   "floors [project-path]",
		Short: "Print the cumulative floor premium table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFloors(cmd.OutOrStdout(), args[0], maxFloor)
		},
	}

	cmd.Flags().IntVar(&maxFloor, "max", 0, "highest floor to list; defaults to the highest unit floor")
	return cmd
}

func optimizeCmd() *cobra.Command {
	var opts optimizeOptions

	cmd := &cobra.Command{
		Use:   "optimize [project-path]",
		Short: "Search pricing parameters that reach a target average PSF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(cmd.OutOrStdout(), args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.scope, "scope", string(optimize.ScopeMega), "parameters to tune (single, mega, full)")
	f.StringVar(&opts.bedroomType, "type", "", "bedroom type tuned by a single-type run")
	f.StringSliceVar(&opts.bedroomTypes, "types", nil, "bedroom types included in mega and full runs")
	f.Float64Var(&opts.target, "target", 0, "target average PSF")
	f.StringVar(&opts.mode, "mode", "", "pricing mode (apartment, villa); defaults to the project type")
	f.Float64Var(&opts.settings.LearningRate, "learning-rate", 0, "gradient descent step size")
	f.IntVar(&opts.settings.MaxIterations, "max-iterations", 0, "iteration cap")
	f.Float64Var(&opts.settings.ConvergenceThreshold, "threshold", 0, "stop when the cost changes by less than this")
	f.Float64Var(&opts.settings.Epsilon, "epsilon", 0, "finite-difference step")
	f.Float64Var(&opts.settings.ConstraintFactor, "constraint-factor", 0, "weight of the stay-close penalty")
	f.BoolVar(&opts.write, "write", false, "write the optimized parameters back to the project config")
	f.StringVarP(&opts.format, "format", "f", formatTable, "output format (table, json)")
	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve [project-path]",
		Short: "Start the local dev server with the pricing API",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			srv := server.New(args[0], port, logger)
			return srv.Start()
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 3000, "HTTP server port")
	return cmd
}
