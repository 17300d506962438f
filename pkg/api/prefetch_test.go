package api

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gompdf/claimpacket/internal/imaging"
	"github.com/gompdf/claimpacket/pkg/claim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entries(n int) []claim.Evidence {
	out := make([]claim.Evidence, n)
	for i := range out {
		out[i] = claim.Evidence{ID: fmt.Sprintf("e%d", i), Path: fmt.Sprintf("p%d", i)}
	}
	return out
}

func TestPrefetchOrderAndWindow(t *testing.T) {
	const window = 3
	var started atomic.Int32

	load := func(ctx context.Context, ev claim.Evidence) (*imaging.Image, error) {
		started.Add(1)
		return &imaging.Image{Format: ev.ID}, nil
	}

	ctx := context.Background()
	list := entries(12)
	pf := startPrefetch(ctx, window, list, load)

	// nothing consumed yet, so only the window may have started
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(window), started.Load())

	for i, ev := range list {
		img, err := pf.next(ctx, i)
		require.NoError(t, err)
		assert.Equal(t, ev.ID, img.Format)
	}
	assert.Equal(t, int32(len(list)), started.Load())
}

func TestPrefetchErrorsStayWithTheirEntry(t *testing.T) {
	load := func(ctx context.Context, ev claim.Evidence) (*imaging.Image, error) {
		if ev.ID == "e1" {
			return nil, claim.ErrDecode
		}
		return &imaging.Image{Format: ev.ID}, nil
	}

	ctx := context.Background()
	pf := startPrefetch(ctx, 2, entries(3), load)

	img, err := pf.next(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "e0", img.Format)

	_, err = pf.next(ctx, 1)
	assert.ErrorIs(t, err, claim.ErrDecode)

	img, err = pf.next(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "e2", img.Format)
}

func TestPrefetchCancel(t *testing.T) {
	release := make(chan struct{})
	load := func(ctx context.Context, ev claim.Evidence) (*imaging.Image, error) {
		select {
		case <-release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &imaging.Image{}, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	pf := startPrefetch(ctx, 1, entries(4), load)
	cancel()

	_, err := pf.next(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
	close(release)
}
