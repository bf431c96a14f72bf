// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import "reflect"

// Test hooks into unexported engine state.

// ComposeChain exposes behavior composition for direct chain tests.
var ComposeChain = composeBehaviors

// RequestDescriptorCount reports the number of request descriptors held by
// the registry, registered and learned alike.
func RequestDescriptorCount(d *Dispatcher) int {
	n := 0
	d.requests.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}

// InvokerCached reports whether a compiled invoker is cached for t.
func InvokerCached(d *Dispatcher, t reflect.Type) bool {
	_, ok := d.invokers.lookup(t)
	return ok
}

// PolicyOf reports the dispatcher's scope policy.
func PolicyOf(d *Dispatcher) ScopePolicy { return d.policy }

// DefaultLifetimeOf reports the dispatcher's learned-descriptor lifetime.
func DefaultLifetimeOf(d *Dispatcher) Lifetime { return d.defaultLifetime }
