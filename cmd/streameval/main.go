package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/streameval/internal/config"
	"github.com/kailas-cloud/streameval/internal/version"
)

func main() {
	if err := rootCMD(run).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "streameval:", err)
		os.Exit(1)
	}
}

// startFunc runs the pipeline with the resolved configuration.
type startFunc func(env string, cfg config.Config) error

func rootCMD(start startFunc) *cobra.Command {
	var root = &cobra.Command{
		Use:           "streameval",
		Short:         "Evaluate pre-trained classifiers on a stream of labelled text batches",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCMD(start), versionCMD())
	return root
}

// runFlags override the matching config fields when set on the command line.
type runFlags struct {
	env          string
	batchSize    int
	totalRecords int
	addr         string
	transport    string
	httpPort     int
}

func runCMD(start startFunc) *cobra.Command {
	var f runFlags
	var run = &cobra.Command{
		Use:   "run",
		Short: "Consume batches and report per-model accuracy after every run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(f.env)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, &cfg, f); err != nil {
				return err
			}
			return start(f.env, cfg)
		},
	}
	run.Flags().StringVar(&f.env, "env", config.GetEnv(), "config environment (local, dev, prod)")
	run.Flags().IntVarP(&f.batchSize, "batch-size", "b", 100, "records per batch")
	run.Flags().IntVar(&f.totalRecords, "total-records", 3373, "records per reporting run")
	run.Flags().StringVar(&f.addr, "addr", "localhost:6100", "batch server address")
	run.Flags().StringVar(&f.transport, "transport", "tcp", "batch source: tcp or stdin")
	run.Flags().IntVar(&f.httpPort, "http-port", 0, "status server port (0 disables)")

	return run
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, f runFlags) error {
	flags := cmd.Flags()
	if flags.Changed("batch-size") {
		cfg.Run.BatchSize = f.batchSize
	}
	if flags.Changed("total-records") {
		cfg.Run.TotalRecords = f.totalRecords
	}
	if flags.Changed("addr") {
		cfg.Transport.Addr = f.addr
	}
	if flags.Changed("transport") {
		cfg.Transport.Kind = f.transport
	}
	if flags.Changed("http-port") {
		cfg.HTTP.Port = f.httpPort
	}
	return cfg.Validate()
}

func versionCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(version.String())
		},
	}
}
