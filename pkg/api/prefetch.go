package api

import (
	"context"

	"github.com/gompdf/claimpacket/internal/imaging"
	"github.com/gompdf/claimpacket/pkg/claim"
	"golang.org/x/sync/semaphore"
)

type fetched struct {
	img *imaging.Image
	err error
	// held is set when the entry occupies a window slot
	held bool
}

type loadFunc func(ctx context.Context, ev claim.Evidence) (*imaging.Image, error)

// prefetcher loads evidence ahead of placement. At most window entries are
// in flight or waiting to be consumed; results are handed out strictly by
// index.
type prefetcher struct {
	sem     *semaphore.Weighted
	results []chan fetched
}

func startPrefetch(ctx context.Context, window int, entries []claim.Evidence, load loadFunc) *prefetcher {
	if window < 1 {
		window = 1
	}
	p := &prefetcher{
		sem:     semaphore.NewWeighted(int64(window)),
		results: make([]chan fetched, len(entries)),
	}
	for i := range p.results {
		p.results[i] = make(chan fetched, 1)
	}

	go func() {
		for i, ev := range entries {
			if err := p.sem.Acquire(ctx, 1); err != nil {
				for j := i; j < len(entries); j++ {
					p.results[j] <- fetched{err: err}
				}
				return
			}
			go func(i int, ev claim.Evidence) {
				img, err := load(ctx, ev)
				p.results[i] <- fetched{img: img, err: err, held: true}
			}(i, ev)
		}
	}()
	return p
}

// next blocks until entry i is ready and frees its window slot
func (p *prefetcher) next(ctx context.Context, i int) (*imaging.Image, error) {
	select {
	case f := <-p.results[i]:
		if f.held {
			p.sem.Release(1)
		}
		return f.img, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
