// Package main fits prey steering weights to simulated outcomes. The
// nelder-mead command minimizes the mean proportion of prey killed; the abc
// command runs rejection sampling against an observed proportion.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/store"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "optimize",
		Short:        "Fit prey flocking weights against predation outcomes",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("log-format")
			var handler slog.Handler
			if format == "json" {
				handler = slog.NewJSONHandler(os.Stdout, nil)
			} else {
				handler = slog.NewTextHandler(os.Stdout, nil)
			}
			slog.SetDefault(slog.New(handler))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Base config file (empty = use defaults)")
	rootCmd.PersistentFlags().String("output", "", "Output directory for results (required)")
	rootCmd.PersistentFlags().String("db", "", "SQLite run store to record evaluations in")
	rootCmd.PersistentFlags().Int("seeds", 0, "Simulations per evaluation (0 = use config)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: json or text")
	_ = rootCmd.MarkPersistentFlagRequired("output")

	rootCmd.AddCommand(newNelderMeadCmd(), newABCCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// study bundles what both search modes share.
type study struct {
	name      string
	outputDir string
	baseCfg   *config.Config
	params    *ParamVector
	evaluator *FitnessEvaluator
	log       *studyLog
	store     *store.RunStore
}

func openStudy(cmd *cobra.Command, mode string, total int) (*study, error) {
	configPath, _ := cmd.Flags().GetString("config")
	outputDir, _ := cmd.Flags().GetString("output")
	dbPath, _ := cmd.Flags().GetString("db")
	seeds, _ := cmd.Flags().GetInt("seeds")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	baseCfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if seeds <= 0 {
		seeds = baseCfg.Optimize.Seeds
	}

	s := &study{
		name:      fmt.Sprintf("%s-%s", mode, time.Now().UTC().Format("20060102-150405")),
		outputDir: outputDir,
		baseCfg:   baseCfg,
		params:    NewParamVector(),
	}
	s.evaluator = NewFitnessEvaluator(s.params, evalSeeds(seeds), baseCfg)

	if dbPath != "" {
		if s.store, err = store.Open(dbPath); err != nil {
			return nil, err
		}
	}
	if s.log, err = newStudyLog(outputDir, s.name, total, s.store); err != nil {
		s.Close()
		return nil, err
	}

	slog.Info("study started",
		"study", s.name,
		"mode", mode,
		"params", s.params.Dim(),
		"seeds", seeds,
		"prey", baseCfg.Population.Prey,
		"predators", baseCfg.Population.Predators,
		"end_time", baseCfg.Clock.EndTime,
	)
	return s, nil
}

// saveBest writes the base config with best applied to best_config.yaml.
func (s *study) saveBest(best []float64) error {
	if best == nil {
		return nil
	}
	bestCfg := s.baseCfg.Clone()
	s.params.ApplyToConfig(bestCfg, best)
	bestCfg.Recompute()

	path := filepath.Join(s.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(path); err != nil {
		return fmt.Errorf("failed to write best config: %w", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", path)
	return nil
}

func (s *study) printParams(title string, values []float64) {
	fmt.Printf("\n%s:\n", title)
	for i, spec := range s.params.Specs {
		fmt.Printf("  %-18s %.6f\n", spec.Name, values[i])
	}
}

func (s *study) Close() {
	if s.log != nil {
		s.log.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

func newNelderMeadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nelder-mead",
		Short: "Minimize the mean final proportion dead with Nelder-Mead",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			maxEvals, _ := cmd.Flags().GetInt("max-evals")
			fromConfig, _ := cmd.Flags().GetBool("start-from-config")

			s, err := openStudy(cmd, "nelder-mead", 0)
			if err != nil {
				return err
			}
			defer s.Close()
			if maxEvals <= 0 {
				maxEvals = s.baseCfg.Optimize.MaxEvals
			}
			s.log.total = maxEvals

			start := s.params.DefaultVector()
			if fromConfig {
				start = s.params.ExtractFromConfig(s.baseCfg)
			}

			var recordErr error
			problem := optimize.Problem{
				Func: func(x []float64) float64 {
					// The simplex works in normalized space
					res := s.evaluator.Evaluate(s.params.Denormalize(x))
					if err := s.log.Record(ctx, res.Fitness, false, res); err != nil && recordErr == nil {
						recordErr = err
					}
					return res.Fitness
				},
				Status: func() (optimize.Status, error) {
					if err := ctx.Err(); err != nil {
						return optimize.Failure, err
					}
					if recordErr != nil {
						return optimize.Failure, recordErr
					}
					return optimize.NotTerminated, nil
				},
			}
			settings := &optimize.Settings{
				FuncEvaluations: maxEvals,
				Converger: &optimize.FunctionConverge{
					Absolute:   1e-6,
					Iterations: 20,
				},
			}

			fmt.Printf("Starting Nelder-Mead with %d parameters, max_evals=%d\n", s.params.Dim(), maxEvals)
			result, err := optimize.Minimize(problem, s.params.Normalize(start), settings, &optimize.NelderMead{})
			if err != nil {
				if ctx.Err() != nil || recordErr != nil {
					return errors.Join(ctx.Err(), recordErr)
				}
				slog.Warn("optimization ended", "error", err)
			}

			// Best may come from any evaluation, not just the final simplex
			bestFitness, best := s.evaluator.Best()
			if best == nil && result != nil {
				best = s.params.Clamp(s.params.Denormalize(result.X))
			}

			fmt.Printf("\nOptimization complete after %d evaluations in %s\n",
				s.log.Count(), formatDuration(s.log.Elapsed()))
			fmt.Printf("Best fitness (mean prop dead): %.4f\n", bestFitness)
			if best != nil {
				s.printParams("Best parameters", best)
			}
			return s.saveBest(best)
		},
	}

	cmd.Flags().Int("max-evals", 0, "Maximum number of evaluations (0 = use config)")
	cmd.Flags().Bool("start-from-config", false, "Start from the config's prey weights instead of the defaults")

	return cmd
}

func newABCCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abc",
		Short: "Rejection-sample prey weights that reproduce an observed proportion dead",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			samples, _ := cmd.Flags().GetInt("samples")
			target, _ := cmd.Flags().GetFloat64("target")
			tolerance, _ := cmd.Flags().GetFloat64("tolerance")
			seed, _ := cmd.Flags().GetInt64("seed")

			s, err := openStudy(cmd, "abc", 0)
			if err != nil {
				return err
			}
			defer s.Close()

			opts := ABCOptions{
				Samples:   s.baseCfg.Optimize.ABCSamples,
				Target:    s.baseCfg.Optimize.ABCTarget,
				Tolerance: s.baseCfg.Optimize.ABCTolerance,
			}
			if samples > 0 {
				opts.Samples = samples
			}
			if cmd.Flags().Changed("target") {
				opts.Target = target
			}
			if tolerance > 0 {
				opts.Tolerance = tolerance
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			s.log.total = opts.Samples

			fmt.Printf("Starting ABC with %d samples, target=%.3f, tolerance=%.3f\n",
				opts.Samples, opts.Target, opts.Tolerance)
			res, err := runABC(ctx, s.evaluator, opts, rand.New(rand.NewSource(seed)),
				func(dist float64, accepted bool, r EvalResult) error {
					return s.log.Record(ctx, dist, accepted, r)
				})
			if err != nil {
				return err
			}

			fmt.Printf("\nABC complete after %d samples in %s\n", res.Samples, formatDuration(s.log.Elapsed()))
			fmt.Printf("Accepted: %d (rate %.3f)\n", len(res.Accepted), res.AcceptanceRate())
			if res.Posterior != nil {
				s.printParams("Posterior mean", res.Posterior)
			}
			if res.Best != nil {
				fmt.Printf("\nClosest draw: distance %.4f\n", res.BestDist)
				s.printParams("Closest parameters", res.Best)
			}
			return s.saveBest(res.Best)
		},
	}

	cmd.Flags().Int("samples", 0, "Number of candidate draws (0 = use config)")
	cmd.Flags().Float64("target", 0, "Observed final proportion dead (default from config)")
	cmd.Flags().Float64("tolerance", 0, "Acceptance distance (0 = use config)")
	cmd.Flags().Int64("seed", 0, "Sampler seed (0 = time-based)")

	return cmd
}
