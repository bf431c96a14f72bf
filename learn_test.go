// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"code.hybscloud.com/medi"
	"code.hybscloud.com/medi/di"
)

func TestFallbackLearnsDescriptor(t *testing.T) {
	var hits atomic.Int32
	cc := &countingContainer{inner: newPingContainer(&hits)}
	d := medi.New(cc)
	ctx := context.Background()

	// Nothing registered: the first dispatch must probe and learn.
	if n := medi.RequestDescriptorCount(d); n != 0 {
		t.Fatalf("registry has %d descriptors before first dispatch, want 0", n)
	}
	got, err := medi.Send[ping, pong](ctx, d, ping{n: 1})
	if err != nil {
		t.Fatalf("cold send: %v", err)
	}
	if got != (pong{n: 2}) {
		t.Fatalf("got %+v, want %+v", got, pong{n: 2})
	}
	if n := medi.RequestDescriptorCount(d); n != 1 {
		t.Fatalf("registry has %d descriptors after cold dispatch, want 1", n)
	}
	probesAfterCold := cc.probes.Load()

	// Warm dispatches take the fast path: no further generic probes.
	for range 5 {
		if _, err := medi.Send[ping, pong](ctx, d, ping{n: 1}); err != nil {
			t.Fatalf("warm send: %v", err)
		}
	}
	if cc.probes.Load() != probesAfterCold {
		t.Fatalf("warm dispatches probed the container %d more times, want 0",
			cc.probes.Load()-probesAfterCold)
	}
	if hits.Load() != 6 {
		t.Fatalf("handler invoked %d times, want 6", hits.Load())
	}
}

func TestFallbackPrefersContextAwareShape(t *testing.T) {
	// Container provides only the sync shape under its interface: the probe
	// must miss the context-aware shape and fall back.
	c := di.NewContainer()
	c.MustProvide(func() doubler { return doubler{} }, medi.Singleton,
		di.As[medi.SyncHandler[ping, pong]]())
	d := medi.New(c)

	got, err := medi.Send[ping, pong](context.Background(), d, ping{n: 21})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if got != (pong{n: 42}) {
		t.Fatalf("got %+v, want %+v", got, pong{n: 42})
	}
}

// TestLearnConcurrent dispatches an unregistered-but-resolvable request type
// from many goroutines at once: exactly one descriptor may be learned and
// every dispatch must succeed.
func TestLearnConcurrent(t *testing.T) {
	var hits atomic.Int32
	cc := &countingContainer{inner: newPingContainer(&hits)}
	d := medi.New(cc)

	const racers = 10
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := medi.Send[ping, pong](context.Background(), d, ping{n: i})
			if err == nil && got.n != i+1 {
				err = errWrongResponse
			}
			errs[i] = err
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("racer %d: %v", i, err)
		}
	}
	if n := medi.RequestDescriptorCount(d); n != 1 {
		t.Fatalf("registry has %d descriptors after concurrent cold dispatches, want exactly 1", n)
	}
	if hits.Load() != racers {
		t.Fatalf("handler invoked %d times, want %d", hits.Load(), racers)
	}
	// The invoker build collapsed: only one generic probe reached the
	// container.
	if cc.probes.Load() != 1 {
		t.Fatalf("container probed %d times, want 1", cc.probes.Load())
	}
}

func TestLearnedLifetimeFollowsDefault(t *testing.T) {
	c := newPingContainer(nil)
	d := medi.New(c, medi.WithDefaultLifetime(medi.Transient))

	if got := medi.DefaultLifetimeOf(d); got != medi.Transient {
		t.Fatalf("default lifetime %v, want transient", got)
	}
	if _, err := medi.Send[ping, pong](context.Background(), d, ping{n: 1}); err != nil {
		t.Fatalf("send: %v", err)
	}
}
