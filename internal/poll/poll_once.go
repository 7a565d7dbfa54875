package poll

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"prospect-engine/internal/domain"
	"prospect-engine/internal/events"
	"prospect-engine/internal/prospect"
)

type runState struct {
	mu  sync.Mutex
	rep *Report
	aq  *activeQueue
}

func (s *runState) finish(o Outcome, out *domain.ProspectResult) {
	s.mu.Lock()
	s.rep.Outcomes = append(s.rep.Outcomes, o)
	if out != nil {
		s.rep.Results = append(s.rep.Results, *out)
	}
	s.mu.Unlock()
	s.aq.done()
}

// pollOnce polls the job taken from the head of the queue and either puts it
// back at the tail or records its terminal outcome. It only returns an error
// when the run has to stop; the job is requeued untouched in that case.
func (p *Poller) pollOnce(ctx context.Context, st *runState, j *job) error {
	res, err := p.client.Poll(ctx, j.handle)
	if err != nil && stopped(ctx, err) {
		st.aq.requeue(j)
		return err
	}
	j.attempts++

	log := p.log.WithFields(logrus.Fields{"domain": j.domain, "job_id": j.handle, "attempt": j.attempts})

	switch {
	case err != nil && prospect.IsTransient(err):
		log.WithField("err", err).Info("[poll] status fetch failed; will retry")
		p.keepWaiting(st, j, log, "last poll failed: "+err.Error())

	case err != nil:
		log.WithField("err", err).Warn("[poll] dropping job with unusable response")
		p.terminal(st, j, domain.StatusFailed, err.Error(), nil)

	case res.Status == domain.StatusRunning:
		log.Debug("[poll] still running")
		p.keepWaiting(st, j, log, "")

	case res.Status == domain.StatusSucceeded && res.Output == nil:
		log.Warn("[poll] dropping succeeded job without output")
		p.terminal(st, j, domain.StatusFailed, "succeeded without output", nil)

	case res.Status == domain.StatusSucceeded:
		log.WithField("persons", len(res.Output.Persons)).Info("[poll] prospect received")
		p.terminal(st, j, res.Status, "", res.Output)

	default:
		log.WithField("status", res.Status).Warn("[poll] prospect failed")
		p.terminal(st, j, res.Status, "remote status "+res.Status.String(), nil)
	}
	return nil
}

// keepWaiting requeues j unless it has used up its attempt or time bound.
func (p *Poller) keepWaiting(st *runState, j *job, log logrus.FieldLogger, lastErr string) {
	reason := ""
	switch {
	case p.opts.MaxAttempts > 0 && j.attempts >= p.opts.MaxAttempts:
		reason = "max attempts reached"
	case p.opts.MaxWait > 0 && p.now().Sub(j.launched) >= p.opts.MaxWait:
		reason = "max wait exceeded"
	}
	if reason == "" {
		evt := events.MakeEvent(p.opts.RunID, events.TypePolled, nil)
		evt.Domain, evt.JobID, evt.Attempts, evt.Reason = string(j.domain), string(j.handle), j.attempts, lastErr
		evt.Status = domain.StatusRunning.String()
		p.emit(evt)
		st.aq.requeue(j)
		return
	}
	if lastErr != "" {
		reason += "; " + lastErr
	}
	log.WithField("reason", reason).Warn("[poll] abandoning job")
	p.terminal(st, j, domain.StatusAbandoned, reason, nil)
}

func (p *Poller) terminal(st *runState, j *job, status domain.JobStatus, reason string, out *domain.ProspectResult) {
	typ := events.TypeFailed
	switch status {
	case domain.StatusSucceeded:
		typ = events.TypeSucceeded
	case domain.StatusAbandoned:
		typ = events.TypeAbandoned
	}
	evt := events.MakeEvent(p.opts.RunID, typ, nil)
	evt.Domain, evt.JobID, evt.Attempts, evt.Status, evt.Reason = string(j.domain), string(j.handle), j.attempts, status.String(), reason
	p.emit(evt)

	st.finish(Outcome{
		Domain:   j.domain,
		Handle:   j.handle,
		Status:   status,
		Attempts: j.attempts,
		Reason:   reason,
	}, out)
}
