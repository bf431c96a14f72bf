// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// notifThunk invokes one notification handler, bound to a concrete handler
// type at construction time. The instance is resolved per publish from the
// active resolution context.
type notifThunk func(ctx context.Context, res Resolver, n any) error

// Publish dispatches a notification to its handlers sequentially, in
// registration order, awaiting each before starting the next. The first
// handler error stops the fan-out: later handlers are never invoked and the
// error surfaces unchanged. Zero handlers is not an error.
//
// All handlers of one publish call share one resolution context, so they
// observe the same scoped dependency instances.
func Publish[N any](ctx context.Context, d *Dispatcher, n N) error {
	res, release := d.acquire()
	defer release()

	thunks, err := thunksFor[N](d, res)
	if err != nil {
		return err
	}
	for _, th := range thunks {
		if err := th(ctx, res, n); err != nil {
			return err
		}
	}
	return nil
}

// PublishParallel dispatches a notification to all its handlers
// concurrently, one goroutine per handler, and joins them all before
// returning: no handler is cancelled because a sibling failed, and a failure
// is surfaced only after every handler has finished. Failures are combined
// with errors.Join, so every failing handler's error is observable via
// errors.Is. There is no ordering guarantee among handlers.
//
// As with Publish, all handlers of one call share one resolution context.
func PublishParallel[N any](ctx context.Context, d *Dispatcher, n N) error {
	res, release := d.acquire()
	defer release()

	thunks, err := thunksFor[N](d, res)
	if err != nil {
		return err
	}
	if len(thunks) == 0 {
		return nil
	}

	errs := make([]error, len(thunks))
	var wg sync.WaitGroup
	for i, th := range thunks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = th(ctx, res, n)
		}()
	}
	wg.Wait()
	return errors.Join(errs...)
}

// thunksFor returns the memoized invoker array for N, building it on the
// first publish. The handler set observed then is authoritative for the
// process lifetime.
func thunksFor[N any](d *Dispatcher, res Resolver) ([]notifThunk, error) {
	nType := typeOf[N]()
	v, err := d.fanouts.getOrBuild(nType, func() (any, error) {
		return buildThunks[N](d, res, nType)
	})
	if err != nil {
		return nil, err
	}
	return v.([]notifThunk), nil
}

// buildThunks assembles one invocation thunk per handler descriptor, in
// order. With no registered descriptors it falls back to the container's
// multi-registration for the notification handler interface and learns the
// discovered set.
func buildThunks[N any](d *Dispatcher, res Resolver, nType reflect.Type) (any, error) {
	descs := d.notificationDescriptors(nType)
	if len(descs) == 0 {
		instances, err := res.ResolveAll(typeOf[NotificationHandler[N]]())
		if err != nil {
			return nil, err
		}
		if len(instances) > 0 {
			discovered := make([]*Descriptor, len(instances))
			for i, inst := range instances {
				discovered[i] = &Descriptor{
					Concrete: reflect.TypeOf(inst),
					Lifetime: d.defaultLifetime,
					Async:    true,
				}
			}
			descs = d.learnNotifications(nType, discovered)
		}
	}

	d.log.Debug().
		Stringer("notification", nType).
		Int("handlers", len(descs)).
		Msg("compiled notification invokers")

	thunks := make([]notifThunk, len(descs))
	for i, desc := range descs {
		concrete := desc.Concrete
		thunks[i] = func(ctx context.Context, res Resolver, n any) error {
			inst, err := res.ResolveRequired(concrete)
			if err != nil {
				return err
			}
			h, ok := inst.(NotificationHandler[N])
			if !ok {
				return fmt.Errorf("%w: %T as NotificationHandler for %s", ErrHandlerShape, inst, nType)
			}
			return h.Handle(ctx, n.(N))
		}
	}
	return thunks, nil
}
