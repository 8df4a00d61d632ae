package embedding

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Pool bounds concurrent embedding extraction so a burst of requests cannot
// saturate the CPU with model inference. It implements Extractor and can be
// dropped in wherever a backend is expected.
//
// A caller whose context is canceled while waiting for a slot, or while its
// extraction is running, gets the context error immediately. The slot itself
// is released when the underlying extraction finishes, so aborted requests
// never leak pool capacity.
type Pool struct {
	extractor Extractor
	sem       *semaphore.Weighted
}

// NewPool wraps an extractor with a bounded worker pool of the given size.
func NewPool(extractor Extractor, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{
		extractor: extractor,
		sem:       semaphore.NewWeighted(int64(workers)),
	}
}

func (p *Pool) Name() string { return p.extractor.Name() }

func (p *Pool) Dim() int { return p.extractor.Dim() }

// Extract acquires a worker slot and runs the underlying extraction.
func (p *Pool) Extract(ctx context.Context, image []byte) ([]float32, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	type result struct {
		emb []float32
		err error
	}
	done := make(chan result, 1)

	go func() {
		defer p.sem.Release(1)
		emb, err := p.extractor.Extract(ctx, image)
		done <- result{emb: emb, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.emb, r.err
	}
}
