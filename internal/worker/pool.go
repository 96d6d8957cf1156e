// Package worker runs path generation batches off the caller's goroutine.
package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/mahamap/internal/geo"
	"github.com/woozymasta/mahamap/internal/pathgen"
)

// ErrClosed is returned when submitting to a closed pool.
var ErrClosed = errors.New("worker pool is closed")

type job struct {
	reply chan geo.PathResponse
	req   geo.PathRequest
}

// Pool converts path requests on a fixed number of goroutines.
// Every accepted request produces exactly one response; a batch runs to
// completion once picked up, independent of any other batch.
type Pool struct {
	jobs   chan job
	done   chan struct{}
	keys   geo.NameKeys
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// New starts a pool with the given concurrency. keys are used for requests
// that do not carry their own name keys.
func New(concurrency int, keys geo.NameKeys) *Pool {
	if concurrency <= 0 {
		concurrency = 1
	}

	p := &Pool{
		jobs: make(chan job, concurrency),
		done: make(chan struct{}),
		keys: keys.WithDefaults(),
	}

	for i := 0; i < concurrency; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				p.run(j)
			}
		}()
	}

	log.Debug().Int("concurrency", concurrency).Msg("Path worker pool started")
	return p
}

func (p *Pool) run(j job) {
	start := time.Now()
	resp := pathgen.Generate(j.req, p.keys)
	j.reply <- resp

	log.Trace().
		Str("id", resp.ID).
		Int("features", len(j.req.Features)).
		Dur("duration", time.Since(start)).
		Msg("Path batch converted")
}

// Submit queues req and returns the channel its single response will be
// delivered on. An empty request ID is replaced by a generated one.
// The context only bounds the wait for a free queue slot.
func (p *Pool) Submit(ctx context.Context, req geo.PathRequest) (<-chan geo.PathResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return nil, ErrClosed
	}

	reply := make(chan geo.PathResponse, 1)
	select {
	case p.jobs <- job{req: req, reply: reply}:
		return reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Generate submits req and waits for its response. Cancelling ctx stops the
// wait, the batch itself still completes.
func (p *Pool) Generate(ctx context.Context, req geo.PathRequest) (geo.PathResponse, error) {
	reply, err := p.Submit(ctx, req)
	if err != nil {
		return geo.PathResponse{}, err
	}

	select {
	case resp := <-reply:
		return resp, nil
	case <-ctx.Done():
		return geo.PathResponse{}, ctx.Err()
	}
}

// Close stops accepting requests and waits for queued batches to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	close(p.done)
	log.Debug().Msg("Path worker pool stopped")
}

// Done is closed after Close has drained the pool.
func (p *Pool) Done() <-chan struct{} {
	return p.done
}
