// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"context"
	"fmt"
	"reflect"

	"code.hybscloud.com/kont"
)

// invoker is the compiled dispatch function for one request type:
// resolve handler from the active context, run the behavior chain, invoke.
type invoker func(ctx context.Context, res Resolver, req any) (any, error)

// Send dispatches a request and blocks until its single handler (and the
// behavior chain around it) completes. The whole pipeline runs inline on the
// calling goroutine: no goroutine is spawned and no future is created, so a
// synchronous handler never crosses an asynchronous boundary.
//
// The resolution context is released on every exit path. Errors from the
// handler or a behavior surface unchanged; an unresolvable request type
// fails with ErrHandlerNotFound, and a short-circuit value that is not a
// Resp fails with ErrResponseShape.
func Send[Req, Resp any](ctx context.Context, d *Dispatcher, req Req) (Resp, error) {
	var zero Resp
	res, release := d.acquire()
	defer release()

	inv, err := invokerFor[Req, Resp](d, res)
	if err != nil {
		return zero, err
	}
	out, err := inv(ctx, res, req)
	if err != nil {
		return zero, err
	}
	resp, ok := out.(Resp)
	if !ok {
		return zero, fmt.Errorf("%w: %T for %s", ErrResponseShape, out, typeOf[Resp]())
	}
	return resp, nil
}

// SendAsync dispatches a request on its own goroutine and returns a Future
// completed with the pipeline's outcome. The same cached invoker backs Send
// and SendAsync, so both yield identical values for identical inputs.
//
// Cancellation is cooperative: ctx is threaded to the handler and behaviors,
// and the dispatcher performs no active cancellation of in-flight work.
func SendAsync[Req, Resp any](ctx context.Context, d *Dispatcher, req Req) *Future[Resp] {
	f := newFuture[Resp]()
	go func() {
		res, release := d.acquire()
		defer release()

		inv, err := invokerFor[Req, Resp](d, res)
		if err != nil {
			f.complete(kont.Left[error, Resp](err))
			return
		}
		out, err := inv(ctx, res, req)
		if err != nil {
			f.complete(kont.Left[error, Resp](err))
			return
		}
		resp, ok := out.(Resp)
		if !ok {
			f.complete(kont.Left[error, Resp](
				fmt.Errorf("%w: %T for %s", ErrResponseShape, out, typeOf[Resp]())))
			return
		}
		f.complete(kont.Right[error, Resp](resp))
	}()
	return f
}

// invokerFor returns the memoized invoker for Req, building it on the first
// dispatch. Concurrent cold dispatches collapse to one build.
func invokerFor[Req, Resp any](d *Dispatcher, res Resolver) (invoker, error) {
	reqType := typeOf[Req]()
	v, err := d.invokers.getOrBuild(reqType, func() (any, error) {
		return buildInvoker[Req, Resp](d, res, reqType)
	})
	if err != nil {
		return nil, err
	}
	return v.(invoker), nil
}

// buildInvoker performs the once-per-type analysis: locate the descriptor
// (registry fast path or container fallback), resolve and compose the
// behavior chain, and close over both in the compiled dispatch function.
// The handler itself is resolved per call from the active context so its
// lifetime policy is honored; the behavior instances are frozen here.
func buildInvoker[Req, Resp any](d *Dispatcher, res Resolver, reqType reflect.Type) (any, error) {
	desc, err := requestDescriptor[Req, Resp](d, res, reqType)
	if err != nil {
		return nil, err
	}
	behaviors, err := resolveBehaviors(res)
	if err != nil {
		return nil, err
	}
	chain := composeBehaviors(behaviors)

	d.log.Debug().
		Stringer("request", reqType).
		Stringer("handler", desc.Concrete).
		Int("behaviors", len(behaviors)).
		Bool("async", desc.Async).
		Msg("compiled request invoker")

	concrete := desc.Concrete
	async := desc.Async
	return invoker(func(ctx context.Context, res Resolver, req any) (any, error) {
		inst, err := res.ResolveRequired(concrete)
		if err != nil {
			return nil, err
		}
		var terminal Next
		if async {
			h, ok := inst.(Handler[Req, Resp])
			if !ok {
				return nil, fmt.Errorf("%w: %T as Handler for %s", ErrHandlerShape, inst, reqType)
			}
			terminal = func(ctx context.Context) (any, error) {
				return h.Handle(ctx, req.(Req))
			}
		} else {
			h, ok := inst.(SyncHandler[Req, Resp])
			if !ok {
				return nil, fmt.Errorf("%w: %T as SyncHandler for %s", ErrHandlerShape, inst, reqType)
			}
			terminal = func(context.Context) (any, error) {
				return h.Handle(req.(Req))
			}
		}
		return chain(ctx, req, terminal)
	}), nil
}

// requestDescriptor implements the resolution protocol: registry fast path
// first; otherwise probe the container generically (context-aware handler
// shape before sync) and learn the discovery; otherwise fail.
func requestDescriptor[Req, Resp any](d *Dispatcher, res Resolver, reqType reflect.Type) (*Descriptor, error) {
	if v, ok := d.requests.Load(reqType); ok {
		return v.(*Descriptor), nil
	}
	if inst, ok := res.Resolve(typeOf[Handler[Req, Resp]]()); ok {
		return d.learnRequest(reqType, reflect.TypeOf(inst), true), nil
	}
	if inst, ok := res.Resolve(typeOf[SyncHandler[Req, Resp]]()); ok {
		return d.learnRequest(reqType, reflect.TypeOf(inst), false), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrHandlerNotFound, reqType)
}
