package poll

import (
	"context"
	"sync"
	"time"

	"github.com/gammazero/deque"

	"prospect-engine/internal/domain"
)

type job struct {
	domain   domain.Domain
	handle   domain.JobHandle
	launched time.Time
	attempts int
}

// activeQueue is the FIFO of unfinished jobs. Jobs are taken from the front
// and put back at the tail on every non-terminal outcome. A job being polled
// is counted in inflight so the drain only ends once nothing can be requeued.
type activeQueue struct {
	mu       sync.Mutex
	cond     *sync.Cond
	q        deque.Deque[*job]
	inflight int
}

func newActiveQueue() *activeQueue {
	aq := &activeQueue{}
	aq.cond = sync.NewCond(&aq.mu)
	return aq
}

func (aq *activeQueue) push(j *job) {
	aq.mu.Lock()
	aq.q.PushBack(j)
	aq.mu.Unlock()
	aq.cond.Signal()
}

// next blocks until a job is available, the queue is drained, or ctx is done.
func (aq *activeQueue) next(ctx context.Context) (*job, bool) {
	aq.mu.Lock()
	defer aq.mu.Unlock()
	for aq.q.Len() == 0 && aq.inflight > 0 && ctx.Err() == nil {
		aq.cond.Wait()
	}
	if ctx.Err() != nil || aq.q.Len() == 0 {
		return nil, false
	}
	aq.inflight++
	return aq.q.PopFront(), true
}

func (aq *activeQueue) requeue(j *job) {
	aq.mu.Lock()
	aq.q.PushBack(j)
	aq.inflight--
	aq.mu.Unlock()
	aq.cond.Broadcast()
}

func (aq *activeQueue) done() {
	aq.mu.Lock()
	aq.inflight--
	aq.mu.Unlock()
	aq.cond.Broadcast()
}

func (aq *activeQueue) wake() {
	aq.mu.Lock()
	aq.mu.Unlock()
	aq.cond.Broadcast()
}

// remaining empties the queue, returning the jobs still waiting.
func (aq *activeQueue) remaining() []*job {
	aq.mu.Lock()
	defer aq.mu.Unlock()
	out := make([]*job, 0, aq.q.Len())
	for aq.q.Len() > 0 {
		out = append(out, aq.q.PopFront())
	}
	return out
}
