package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"

	"github.com/davecgh/go-spew/spew"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/theapemachine/errnie"
	"github.com/theapemachine/qhamming"
)

var (
	rootCmd = &cobra.Command{
		Use:   "qhamming",
		Short: "Simulates the [[15,7,3]] quantum Hamming code",
		Long: `qhamming encodes logical zero, applies random single-qubit Pauli errors,
decodes the syndromes and reports how often the state survives.`,
	}
	encodeCmd = &cobra.Command{
		Use:   "encode",
		Short: "Prints the encoding circuit and the logical-zero codewords",
		RunE:  runEncode,
	}
	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "Estimates the success rate over a range of error probabilities",
		RunE:  runSweep,
	}

	dumpCode    bool
	configPath  string
	trials      int
	seed        uint64
	samplerKind string
	probs       []float64
	showExact   bool
	cacheDir    string
	metricsAddr string
)

func init() {
	encodeCmd.Flags().BoolVar(&dumpCode, "dump", false, "dump the full code definition")
	encodeCmd.Flags().StringVar(&cacheDir, "cache", "", "code cache directory (in-memory when empty)")

	sweepCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	sweepCmd.Flags().IntVar(&trials, "trials", 0, "trials per error probability")
	sweepCmd.Flags().Uint64Var(&seed, "seed", 0, "base seed for the batch random streams")
	sweepCmd.Flags().StringVar(&samplerKind, "sampler", "", "noise sampler: per-draw or construction")
	sweepCmd.Flags().Float64SliceVar(&probs, "p", nil, "error probabilities to sweep")
	sweepCmd.Flags().BoolVar(&showExact, "exact", false, "also print the exact success probability")
	sweepCmd.Flags().StringVar(&cacheDir, "cache", "", "code cache directory (in-memory when empty)")
	sweepCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address during the sweep")

	rootCmd.AddCommand(encodeCmd, sweepCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadCode(dir string) (*qhamming.Code, *qhamming.CodewordSet, error) {
	cache, err := qhamming.OpenCodeCache(dir)
	if err != nil {
		return nil, nil, err
	}
	defer cache.Close()

	h, err := qhamming.HammingMatrix(4)
	if err != nil {
		return nil, nil, err
	}
	return cache.LoadOrDefine(h)
}

func serveMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errnie.Warn("serveMetrics - %v", err)
		}
	}()
	return srv
}

func runEncode(cmd *cobra.Command, args []string) error {
	code, codewords, err := loadCode(cacheDir)
	if err != nil {
		return err
	}

	ops, _, err := qhamming.BuildEncoder(code)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dumpCode {
		fmt.Fprintln(out, spew.Sdump(code))
	}

	fmt.Fprintf(out, "# %s\n# H\n%s\n# H (standard form)\n%s\n# circuit\n%s\n# codewords\n",
		code, code.H, code.HStd, ops)
	for _, w := range codewords.Words() {
		fmt.Fprintln(out, w)
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg := qhamming.NewConfig()
	if configPath != "" {
		var err error
		if cfg, err = qhamming.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if trials > 0 {
		cfg.Trials = trials
	}
	if seed > 0 {
		cfg.Seed = seed
	}
	if samplerKind != "" {
		cfg.Sampler = qhamming.SamplerKind(samplerKind)
	}
	if len(probs) > 0 {
		cfg.Probabilities = probs
	}
	if cacheDir != "" {
		cfg.CacheDir = cacheDir
	}

	code, codewords, err := loadCode(cfg.CacheDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if metricsAddr != "" {
		srv := serveMetrics(metricsAddr)
		defer srv.Shutdown(context.Background())
	}

	runner, err := qhamming.NewRunnerWithCodewords(ctx, code, codewords, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	estimates, sweepErr := runner.Sweep(ctx, cfg.Probabilities)

	out := cmd.OutOrStdout()
	header := "p\ttrials\tsuccesses\trate\tstderr"
	if showExact {
		header += "\texact"
	}
	fmt.Fprintln(out, header)
	for _, est := range estimates {
		if est.Trials == 0 {
			continue
		}
		line := fmt.Sprintf("%.4f\t%d\t%d\t%.4f\t%.4f", est.P, est.Trials, est.Successes, est.Rate, est.StdErr)
		if showExact {
			exact, err := qhamming.ExactSuccessRate(code, est.P)
			if err != nil {
				return err
			}
			line += fmt.Sprintf("\t%.4f", exact)
		}
		fmt.Fprintln(out, line)
	}

	return sweepErr
}
