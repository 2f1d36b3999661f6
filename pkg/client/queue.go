package client

import (
	"context"
	"sync"

	"github.com/confidential-assets/ca-core/pkg/rpc"
)

// Queue is a bounded, per-account FIFO task queue with backpressure. It
// replaces §9's redesign target ("event-emitter for batch transaction
// workers -> task queue with backpressure, FIFO per account"): a host
// driving many operations enqueues work without blocking on completion,
// and a full lane blocks the producer rather than growing unbounded.
//
// Queue never bypasses the per-(account, token) cooperative lock: it is
// a convenience for sequencing many calls against one Client, not a
// second concurrency-control mechanism. Each lane's worker goroutine
// runs its tasks one at a time, in submission order, and a task's own
// body is whatever Client operation the caller closed over (which still
// acquires its own pair lock internally).
type Queue struct {
	client   *Client
	capacity int

	mu    sync.Mutex
	lanes map[string]chan queueTask
}

type queueTask struct {
	run  func(ctx context.Context) error
	done chan<- error
}

// NewQueue returns a Queue backed by c, with each per-account lane
// holding up to capacity pending tasks before Enqueue blocks.
func NewQueue(c *Client, capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{client: c, capacity: capacity, lanes: make(map[string]chan queueTask)}
}

func (q *Queue) lane(account string) chan queueTask {
	q.mu.Lock()
	defer q.mu.Unlock()
	ch, ok := q.lanes[account]
	if !ok {
		ch = make(chan queueTask, q.capacity)
		q.lanes[account] = ch
		go q.drain(ch)
	}
	return ch
}

func (q *Queue) drain(ch chan queueTask) {
	for t := range ch {
		err := t.run(context.Background())
		t.done <- err
		close(t.done)
	}
}

// Enqueue appends run to account's FIFO lane, blocking while the lane is
// full or until ctx is done, whichever happens first. The returned
// channel receives run's result once the lane's worker executes it.
func (q *Queue) Enqueue(ctx context.Context, account rpc.Address, run func(ctx context.Context) error) (<-chan error, error) {
	done := make(chan error, 1)
	select {
	case q.lane(string(account)) <- queueTask{run: run, done: done}:
		return done, nil
	case <-ctx.Done():
		return nil, newError(KindCancelled, "queue", "enqueue", ctx.Err())
	}
}
