// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import "errors"

// Engine error sentinels. Errors raised inside handlers and behaviors are
// never wrapped or translated: they surface to the caller unchanged.
var (
	// ErrHandlerNotFound reports that neither the registry nor the container
	// could produce a handler for a request type.
	ErrHandlerNotFound = errors.New("medi: no handler resolvable for request type")

	// ErrDuplicateHandler reports a second request-handler registration for
	// a request type that already has one.
	ErrDuplicateHandler = errors.New("medi: request type already has a registered handler")

	// ErrHandlerShape reports a registered or resolved handler that does not
	// implement the handler interface its registration promises.
	ErrHandlerShape = errors.New("medi: handler does not implement the required interface")

	// ErrBehaviorShape reports a container multi-registration under the
	// Behavior service type whose instance is not a Behavior.
	ErrBehaviorShape = errors.New("medi: registered instance is not a Behavior")

	// ErrResponseShape reports a pipeline outcome, typically a behavior's
	// short-circuit value, that is not assignable to the response type the
	// dispatch was invoked with.
	ErrResponseShape = errors.New("medi: pipeline response does not match the response type")
)
