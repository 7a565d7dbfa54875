package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"prospect-engine/internal/config"
	"prospect-engine/internal/events"
	"prospect-engine/internal/poll"
	"prospect-engine/internal/prospect"
	"prospect-engine/internal/ratelimit"
	"prospect-engine/internal/sink"
	"prospect-engine/internal/store"
)

// persistTimeout bounds the sinks after an interrupted run.
const persistTimeout = 2 * time.Minute

type Input struct {
	CSVPath     string
	TitleFilter string
}

type Summary struct {
	RunID    string
	Report   *poll.Report
	CSVFiles []string
	Saved    store.Saved

	// APICalls counts requests the limiter let through.
	APICalls      int64
	// DroppedEvents counts events a slow subscriber missed.
	DroppedEvents int64
}

// Run reads the domains, polls every job to an outcome, then writes the CSV
// files and saves the results. The store is opened and migrated before any
// job is launched so a bad database URL fails without spending API quota.
//
// When ctx ends mid-run the partial results are still written and the
// context error is returned.
func Run(ctx context.Context, cfg config.Config, in Input, log logrus.FieldLogger) (*Summary, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	sum := &Summary{RunID: uuid.NewString()}
	log = log.WithField("run_id", sum.RunID)

	domains, err := sink.ReadDomains(in.CSVPath)
	if err != nil {
		return sum, err
	}
	log.WithField("domains", len(domains)).Info("[run] domains loaded")

	var st store.Store
	if cfg.Output.DB {
		st, err = store.Open(ctx, cfg.Database.URL)
		if err != nil {
			return sum, fmt.Errorf("open store: %w", err)
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return sum, fmt.Errorf("migrate: %w", err)
		}
	}

	hub := events.NewHub()
	if cfg.Output.EventsFile != "" {
		rec, err := events.StartRecorder(hub, cfg.Output.EventsFile)
		if err != nil {
			return sum, fmt.Errorf("events file: %w", err)
		}
		defer func() {
			if err := rec.Close(); err != nil {
				log.WithError(err).Warn("[run] events file close failed")
			}
		}()
	}

	lim := ratelimit.New(ratelimit.Config{
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.Window(),
		Unit:     cfg.Unit(),
	})
	log.WithField("interval", lim.Interval()).Info("[run] rate limit")

	client := prospect.NewClient(prospect.Config{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.APIKey,
		Timeout: cfg.Timeout(),
	}, lim, log)

	p := poll.New(client, poll.Options{
		Workers:     cfg.Polling.Workers,
		MaxAttempts: cfg.Polling.MaxAttempts,
		MaxWait:     cfg.MaxWait(),
		RunID:       sum.RunID,
	}, log, hub)

	rep, runErr := p.Run(ctx, domains, in.TitleFilter)
	sum.Report = rep
	sum.APICalls = lim.Calls()
	sum.DroppedEvents = hub.Dropped()
	entry := log.WithFields(logrus.Fields{"api_calls": sum.APICalls, "events_dropped": sum.DroppedEvents})
	if sum.DroppedEvents > 0 {
		entry.Warn("[run] polling finished; events file is missing entries")
	} else {
		entry.Info("[run] polling finished")
	}
	if runErr != nil && !isContextErr(runErr) {
		return sum, runErr
	}

	sinkCtx := ctx
	if runErr != nil {
		log.WithField("collected", len(rep.Results)).Warn("[run] interrupted; saving partial results")
		var cancel context.CancelFunc
		sinkCtx, cancel = context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
		defer cancel()
	}

	if cfg.Output.CSV {
		files, err := writeCSV(cfg.Output.Dir, rep, log)
		sum.CSVFiles = files
		if err != nil {
			return sum, fmt.Errorf("csv: %w", err)
		}
	}

	if st != nil {
		saved, err := st.SaveResults(sinkCtx, rep.Results)
		sum.Saved = saved
		if err != nil {
			log.WithError(err).Error("[run] persist failed; transaction rolled back")
			return sum, err
		}
		log.WithFields(logrus.Fields{"companies": saved.Companies, "persons": saved.Persons}).Info("[run] results saved")
	}

	return sum, runErr
}

func writeCSV(dir string, rep *poll.Report, log logrus.FieldLogger) ([]string, error) {
	unlock, err := sink.LockDir(dir)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return sink.WriteAll(dir, rep.Results, log)
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
