// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"context"
	"reflect"
)

// Handler handles a request of type Req with cancellation support.
// This is the preferred shape: the dispatch engine probes for it first.
type Handler[Req, Resp any] interface {
	Handle(ctx context.Context, req Req) (Resp, error)
}

// SyncHandler handles a request without a context. The engine adapts it to
// the context-aware shape so the pipeline stays uniform; the context is
// simply not observed by the handler body.
type SyncHandler[Req, Resp any] interface {
	Handle(req Req) (Resp, error)
}

// NotificationHandler handles a notification of type N. A notification type
// may have zero or more handlers; order of registration is the order of
// sequential fan-out.
type NotificationHandler[N any] interface {
	Handle(ctx context.Context, n N) error
}

// Next invokes the remainder of the request pipeline: the behaviors after
// the current one, then the terminal handler.
type Next func(ctx context.Context) (any, error)

// Behavior wraps request handling with before/after logic. A behavior that
// returns without calling next short-circuits the chain: its return value
// becomes the overall response and nothing after it executes.
type Behavior interface {
	Handle(ctx context.Context, req any, next Next) (any, error)
}

// behaviorType is the service type queried from the container's
// multi-registration to build the behavior chain.
var behaviorType = reflect.TypeOf((*Behavior)(nil)).Elem()

// typeOf returns the reflect.Type for T without requiring a value.
// For interface T this is the interface type itself.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
