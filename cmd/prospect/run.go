package main

import (
	"fmt"
	"math"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"prospect-engine/internal/config"
	"prospect-engine/internal/domain"
	"prospect-engine/internal/pipeline"
)

type runFlags struct {
	workers     int
	maxAttempts int
	maxWait     time.Duration
	outDir      string
	noCSV       bool
	noDB        bool
	eventsFile  string
}

func newRunCmd(g *globalFlags) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run <companies.csv> <title-filter>",
		Args:  cobra.ExactArgs(2),
		Short: "Prospect every domain in the CSV and save the contacts",
		Long: `Reads the "domain" column of the input CSV, launches one prospect job per
domain, polls until every job finishes, then writes one CSV per company and
saves all companies and persons to the database in a single transaction.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)

			cfg, res := config.NormalizeAndValidate(cfg)
			log, err := newLogger(cfg)
			if err != nil {
				log = logrus.StandardLogger()
			}
			for _, w := range res.Warnings {
				log.Warn("[config] " + w)
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}

			sum, err := pipeline.Run(cmd.Context(), cfg, pipeline.Input{CSVPath: args[0], TitleFilter: args[1]}, log)
			if sum != nil && sum.Report != nil {
				rep := sum.Report
				log.WithFields(logrus.Fields{
					"run_id":        sum.RunID,
					"launched":      rep.Launched,
					"launch_failed": len(rep.LaunchFailures),
					"succeeded":     rep.Count(domain.StatusSucceeded),
					"failed":        rep.Count(domain.StatusFailed),
					"timed_out":     rep.Count(domain.StatusTimedOut),
					"aborted":       rep.Count(domain.StatusAborted),
					"abandoned":     rep.Count(domain.StatusAbandoned),
					"csv_files":     len(sum.CSVFiles),
					"saved_persons": sum.Saved.Persons,
					"api_calls":     sum.APICalls,
				}).Info("[run] done")
			}
			if err != nil {
				return fmt.Errorf("run %s: %w", runID(sum), err)
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.IntVar(&f.workers, "workers", 0, "concurrent pollers sharing the rate limit")
	fl.IntVar(&f.maxAttempts, "max-attempts", 0, "polls per job before it is abandoned (0 disables)")
	fl.DurationVar(&f.maxWait, "max-wait", 0, "time per job before it is abandoned (0 disables)")
	fl.StringVar(&f.outDir, "out-dir", "", "directory for per-company CSV files")
	fl.BoolVar(&f.noCSV, "no-csv", false, "skip CSV output")
	fl.BoolVar(&f.noDB, "no-db", false, "skip the database")
	fl.StringVar(&f.eventsFile, "events-file", "", "append job lifecycle events to this JSONL file")

	return cmd
}

// apply copies explicitly set flags over cfg.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("workers") {
		cfg.Polling.Workers = f.workers
	}
	if fl.Changed("max-attempts") {
		cfg.Polling.MaxAttempts = f.maxAttempts
	}
	if fl.Changed("max-wait") {
		cfg.Polling.MaxWaitMinutes = int(math.Ceil(f.maxWait.Minutes()))
	}
	if fl.Changed("out-dir") {
		cfg.Output.Dir = f.outDir
	}
	if f.noCSV {
		cfg.Output.CSV = false
	}
	if f.noDB {
		cfg.Output.DB = false
	}
	if fl.Changed("events-file") {
		cfg.Output.EventsFile = f.eventsFile
	}
}

func runID(sum *pipeline.Summary) string {
	if sum == nil {
		return "-"
	}
	return sum.RunID
}
