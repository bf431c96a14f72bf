// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import "reflect"

// Resolver is the capability the engine requires from a resolution context:
// lookup by service type, required lookup, and ordered multi-lookup.
type Resolver interface {
	// Resolve returns the instance registered for t, or false when absent.
	Resolve(t reflect.Type) (any, bool)

	// ResolveRequired returns the instance registered for t or an error.
	// The error is the container's own and is surfaced untranslated.
	ResolveRequired(t reflect.Type) (any, error)

	// ResolveAll returns every instance registered for t, in registration
	// order. An empty slice is not an error.
	ResolveAll(t reflect.Type) ([]any, error)
}

// Scope is a disposable resolution context derived from the root container.
// Release must be called exactly once when the dispatch operation ends.
type Scope interface {
	Resolver
	Release()
}

// Container is the root resolution context. NewScope derives a child scope
// for scoped-lifetime resolution.
type Container interface {
	Resolver
	NewScope() Scope
}

// acquire returns the resolution context for one dispatch operation and the
// release obligation for it. Under ScopeRoot the root container is handed
// back directly with a no-op release.
func (d *Dispatcher) acquire() (Resolver, func()) {
	if d.policy == ScopeRoot {
		return d.container, func() {}
	}
	s := d.container.NewScope()
	return s, s.Release
}
