// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package medi provides an in-process message dispatch engine for two message
// kinds: requests (exactly one handler, one response) and notifications (zero
// or more handlers, no response).
//
// Handlers are resolved through an external dependency-injection container
// (any implementation of [Container]; [code.hybscloud.com/medi/di] is the
// bundled one). Cross-cutting concerns wrap request handling via an ordered
// chain of pipeline behaviors.
//
// # Architecture
//
//   - Dispatch: [Send] runs the request pipeline inline on the calling
//     goroutine. [SendAsync] runs the same cached pipeline on its own
//     goroutine and returns a [Future].
//   - Fan-out: [Publish] invokes notification handlers in registration order,
//     stopping at the first error. [PublishParallel] starts all handlers
//     concurrently and joins them all before surfacing a combined error.
//   - Caching: per request type, the resolve→compose→invoke analysis runs
//     once and is memoized. Racing first dispatches collapse to a single
//     build; losers wait with [code.hybscloud.com/iox.Backoff].
//   - Resolution: registered descriptors resolve handlers by concrete type.
//     Unregistered request types fall back to a generic container probe; a
//     successful probe is learned into the registry so every later dispatch
//     takes the fast path.
//   - Scoping: with [ScopePerDispatch] each dispatch acquires a child scope
//     released on every exit path. [ScopeRoot] resolves from the root
//     container with no per-dispatch allocation.
//
// # Handler Shapes
//
// Request handlers come in two shapes: [Handler] receives a context and is
// preferred, [SyncHandler] takes only the request. Probing tries the
// context-aware shape first; a sync handler is adapted in place so the rest
// of the pipeline stays shape-uniform.
//
// # Frozen Caches
//
// Behavior instances and notification handler bindings are resolved once, on
// the first cold dispatch for their type, and reused for the process
// lifetime. A behavior registered with a non-Singleton lifetime is therefore
// pinned to the instance observed on the first dispatch, and a notification's
// handler set does not track later container changes.
//
// # Example
//
//	c := di.NewContainer()
//	c.MustProvide(func() PingHandler { return PingHandler{} }, medi.Scoped)
//	d := medi.New(c)
//	medi.RegisterRequest[Ping, Pong, PingHandler](d, medi.Scoped)
//	pong, err := medi.Send[Ping, Pong](ctx, d, Ping{N: 1})
package medi
