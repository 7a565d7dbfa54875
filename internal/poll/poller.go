package poll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"prospect-engine/internal/domain"
	"prospect-engine/internal/events"
	"prospect-engine/internal/prospect"
)

// Prospector is the remote job API the poller drives.
type Prospector interface {
	Launch(ctx context.Context, d domain.Domain, titleFilter string) (domain.JobHandle, error)
	Poll(ctx context.Context, h domain.JobHandle) (prospect.PollResult, error)
}

type Options struct {
	// Workers polling concurrently. One keeps the strict round robin.
	Workers int
	// MaxAttempts bounds polls per job; zero disables the bound.
	MaxAttempts int
	// MaxWait bounds time since launch per job; zero disables the bound.
	MaxWait time.Duration
	// RunID tags published events.
	RunID string
}

type Outcome struct {
	Domain   domain.Domain
	Handle   domain.JobHandle
	Status   domain.JobStatus
	Attempts int
	Reason   string
}

type LaunchFailure struct {
	Domain domain.Domain
	Err    error
}

// Report is everything one run produced. Results are in completion order.
type Report struct {
	Results        domain.CollectedResults
	Outcomes       []Outcome
	LaunchFailures []LaunchFailure
	Launched       int
	// Pending lists jobs still queued when the run was interrupted.
	Pending []Outcome
}

func (r *Report) Count(st domain.JobStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == st {
			n++
		}
	}
	return n
}

type Poller struct {
	client Prospector
	opts   Options
	log    logrus.FieldLogger
	hub    *events.Hub
	now    func() time.Time
}

func New(client Prospector, opts Options, log logrus.FieldLogger, hub *events.Hub) *Poller {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Poller{
		client: client,
		opts:   opts,
		log:    log,
		hub:    hub,
		now:    time.Now,
	}
}

// Run launches one job per domain in input order, then polls every launched
// job until it reaches a terminal outcome. When ctx ends early, or its
// deadline leaves no room for the next rate-limited request, the partial
// report is returned together with that error.
func (p *Poller) Run(ctx context.Context, domains []domain.Domain, titleFilter string) (*Report, error) {
	rep := &Report{}
	aq := newActiveQueue()

	p.emit(events.MakeEvent(p.opts.RunID, events.TypeRunStarted, map[string]int{"domains": len(domains)}))

	var runErr error
	for _, d := range domains {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		h, err := p.client.Launch(ctx, d, titleFilter)
		if err != nil {
			if stopped(ctx, err) {
				runErr = err
				break
			}
			p.log.WithFields(logrus.Fields{"domain": d, "err": err}).Warn("[poll] launch failed; skipping domain")
			rep.LaunchFailures = append(rep.LaunchFailures, LaunchFailure{Domain: d, Err: err})
			evt := events.MakeEvent(p.opts.RunID, events.TypeLaunchFailed, nil)
			evt.Domain, evt.Reason = string(d), err.Error()
			p.emit(evt)
			continue
		}

		p.log.WithFields(logrus.Fields{"domain": d, "job_id": h}).Info("[poll] prospect launched")
		aq.push(&job{domain: d, handle: h, launched: p.now()})
		rep.Launched++
		evt := events.MakeEvent(p.opts.RunID, events.TypeLaunched, nil)
		evt.Domain, evt.JobID = string(d), string(h)
		p.emit(evt)
	}

	if runErr == nil {
		runErr = p.drain(ctx, &runState{rep: rep, aq: aq})
	}

	if runErr != nil {
		for _, j := range aq.remaining() {
			rep.Pending = append(rep.Pending, Outcome{
				Domain: j.domain, Handle: j.handle, Status: domain.StatusRunning, Attempts: j.attempts,
			})
		}
	}

	p.log.WithFields(logrus.Fields{
		"launched":  rep.Launched,
		"succeeded": len(rep.Results),
		"failed":    len(rep.Outcomes) - len(rep.Results),
		"pending":   len(rep.Pending),
	}).Info("[poll] run finished")
	p.emit(events.MakeEvent(p.opts.RunID, events.TypeRunFinished, map[string]int{
		"launched":  rep.Launched,
		"succeeded": len(rep.Results),
		"pending":   len(rep.Pending),
	}))

	return rep, runErr
}

func (p *Poller) drain(ctx context.Context, st *runState) error {
	g, gctx := errgroup.WithContext(ctx)

	stop := context.AfterFunc(gctx, st.aq.wake)
	defer stop()

	for i := 0; i < p.opts.Workers; i++ {
		g.Go(func() error {
			for {
				j, ok := st.aq.next(gctx)
				if !ok {
					return gctx.Err()
				}
				if err := p.pollOnce(gctx, st, j); err != nil {
					return err
				}
			}
		})
	}

	err := g.Wait()
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if stopped(ctx, err) {
		return err
	}
	return fmt.Errorf("poll drain: %w", err)
}

// stopped reports whether err ends the whole run rather than one job: the
// context is done, or the limiter refused because the deadline would pass
// first. Remote failures never stop the run.
func stopped(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	if prospect.IsTransient(err) {
		return false
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (p *Poller) emit(evt events.Event) {
	if p.hub != nil {
		p.hub.Publish(evt)
	}
}
