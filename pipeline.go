// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"context"
	"fmt"
)

// chainFunc invokes the composed behavior chain around the terminal handler
// call. Built once per request type and reused for every dispatch.
type chainFunc func(ctx context.Context, req any, terminal Next) (any, error)

// resolveBehaviors queries the container's multi-registration for the ordered
// pipeline behaviors. Runs once per request type, against whichever
// resolution context is active on the first cold dispatch; the returned
// instances outlive that context.
func resolveBehaviors(res Resolver) ([]Behavior, error) {
	instances, err := res.ResolveAll(behaviorType)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}
	behaviors := make([]Behavior, len(instances))
	for i, inst := range instances {
		b, ok := inst.(Behavior)
		if !ok {
			return nil, fmt.Errorf("%w: %T", ErrBehaviorShape, inst)
		}
		behaviors[i] = b
	}
	return behaviors, nil
}

// composeBehaviors builds the onion chain: behavior 1 runs first going in and
// last coming out; each behavior's continuation invokes the next one; the
// last behavior's continuation invokes the terminal handler. The 0, 1 and 2
// cases are composed directly; the general path folds the slice into nested
// continuations at call time.
func composeBehaviors(behaviors []Behavior) chainFunc {
	switch len(behaviors) {
	case 0:
		return func(ctx context.Context, _ any, terminal Next) (any, error) {
			return terminal(ctx)
		}
	case 1:
		b := behaviors[0]
		return func(ctx context.Context, req any, terminal Next) (any, error) {
			return b.Handle(ctx, req, terminal)
		}
	case 2:
		b0, b1 := behaviors[0], behaviors[1]
		return func(ctx context.Context, req any, terminal Next) (any, error) {
			return b0.Handle(ctx, req, func(ctx context.Context) (any, error) {
				return b1.Handle(ctx, req, terminal)
			})
		}
	default:
		return func(ctx context.Context, req any, terminal Next) (any, error) {
			next := terminal
			for i := len(behaviors) - 1; i >= 0; i-- {
				b, inner := behaviors[i], next
				next = func(ctx context.Context) (any, error) {
					return b.Handle(ctx, req, inner)
				}
			}
			return next(ctx)
		}
	}
}
