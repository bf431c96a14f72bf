// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"code.hybscloud.com/medi"
	"code.hybscloud.com/medi/di"
)

// errWrongResponse flags a dispatch that returned the wrong value in
// concurrent tests where t.Fatalf cannot be called from the goroutine.
var errWrongResponse = errors.New("wrong response")

// ping/pong is the standard request/response pair used across tests.
type ping struct{ n int }
type pong struct{ n int }

// pingHandler is the context-aware handler shape. hits counts invocations.
type pingHandler struct{ hits *atomic.Int32 }

func (h pingHandler) Handle(_ context.Context, p ping) (pong, error) {
	if h.hits != nil {
		h.hits.Add(1)
	}
	return pong{n: p.n + 1}, nil
}

// doubler is the sync handler shape: no context parameter.
type doubler struct{}

func (doubler) Handle(p ping) (pong, error) {
	return pong{n: p.n * 2}, nil
}

// failingHandler returns err unchanged on every dispatch.
type failingHandler struct{ err error }

func (h failingHandler) Handle(context.Context, ping) (pong, error) {
	return pong{}, h.err
}

// slowHandler sleeps before answering, for timing and cancellation tests.
type slowHandler struct{ d time.Duration }

func (h slowHandler) Handle(_ context.Context, p ping) (pong, error) {
	time.Sleep(h.d)
	return pong{n: p.n + 1}, nil
}

// trace records an ordered event log shared between behaviors and handlers.
type trace struct {
	mu     sync.Mutex
	events []string
}

func (tr *trace) add(ev string) {
	tr.mu.Lock()
	tr.events = append(tr.events, ev)
	tr.mu.Unlock()
}

func (tr *trace) snapshot() []string {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	return append([]string(nil), tr.events...)
}

// funcBehavior adapts a closure to medi.Behavior for direct chain tests.
type funcBehavior struct {
	fn func(ctx context.Context, req any, next medi.Next) (any, error)
}

func (b funcBehavior) Handle(ctx context.Context, req any, next medi.Next) (any, error) {
	return b.fn(ctx, req, next)
}

// behaviorA/B/C are distinct concrete types so each can be provided to the
// container; they log before/after around their continuation.
type behaviorA struct{ tr *trace }

func (b behaviorA) Handle(ctx context.Context, _ any, next medi.Next) (any, error) {
	b.tr.add("A:before")
	out, err := next(ctx)
	b.tr.add("A:after")
	return out, err
}

type behaviorB struct{ tr *trace }

func (b behaviorB) Handle(ctx context.Context, _ any, next medi.Next) (any, error) {
	b.tr.add("B:before")
	out, err := next(ctx)
	b.tr.add("B:after")
	return out, err
}

type behaviorC struct{ tr *trace }

func (b behaviorC) Handle(ctx context.Context, _ any, next medi.Next) (any, error) {
	b.tr.add("C:before")
	out, err := next(ctx)
	b.tr.add("C:after")
	return out, err
}

// shortCircuit never invokes its continuation; its response wins.
type shortCircuit struct {
	tr   *trace
	resp any
}

func (b shortCircuit) Handle(context.Context, any, medi.Next) (any, error) {
	b.tr.add("SC")
	return b.resp, nil
}

// countingContainer wraps a container and counts scope churn and generic
// probes (two-value Resolve calls), root and scope alike.
type countingContainer struct {
	inner    medi.Container
	scopes   atomic.Int32
	releases atomic.Int32
	probes   atomic.Int32
}

func (c *countingContainer) Resolve(t reflect.Type) (any, bool) {
	c.probes.Add(1)
	return c.inner.Resolve(t)
}

func (c *countingContainer) ResolveRequired(t reflect.Type) (any, error) {
	return c.inner.ResolveRequired(t)
}

func (c *countingContainer) ResolveAll(t reflect.Type) ([]any, error) {
	return c.inner.ResolveAll(t)
}

func (c *countingContainer) NewScope() medi.Scope {
	c.scopes.Add(1)
	return &countingScope{inner: c.inner.NewScope(), parent: c}
}

type countingScope struct {
	inner  medi.Scope
	parent *countingContainer
}

func (s *countingScope) Resolve(t reflect.Type) (any, bool) {
	s.parent.probes.Add(1)
	return s.inner.Resolve(t)
}

func (s *countingScope) ResolveRequired(t reflect.Type) (any, error) {
	return s.inner.ResolveRequired(t)
}

func (s *countingScope) ResolveAll(t reflect.Type) ([]any, error) {
	return s.inner.ResolveAll(t)
}

func (s *countingScope) Release() {
	s.parent.releases.Add(1)
	s.inner.Release()
}

// newPingContainer builds a container with the standard ping handler,
// provided under both its concrete type and the handler interface so the
// fallback probe can also find it.
func newPingContainer(hits *atomic.Int32) *di.Container {
	c := di.NewContainer()
	c.MustProvide(func() pingHandler { return pingHandler{hits: hits} }, medi.Scoped,
		di.As[medi.Handler[ping, pong]]())
	return c
}
