// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"reflect"
	"sync"

	"github.com/rs/zerolog"
)

// Dispatcher is the dispatch engine. It owns the handler registries and the
// per-type invocation caches, and resolves handlers through the configured
// container. All methods and package-level dispatch functions are safe for
// concurrent use; after warm-up the per-type caches are read-only hot paths.
type Dispatcher struct {
	container       Container
	policy          ScopePolicy
	defaultLifetime Lifetime
	log             zerolog.Logger
	serial          Serial

	// requests maps RequestType → *Descriptor: at most one entry per type,
	// inserted by RegisterRequest or learned by the fallback protocol.
	requests sync.Map

	// notifs maps NotificationType → ordered descriptor list.
	notifMu sync.RWMutex
	notifs  map[reflect.Type][]*Descriptor

	// invokers memoizes the compiled dispatch function per request type.
	invokers typeCache

	// fanouts memoizes the per-handler invocation thunk array per
	// notification type.
	fanouts typeCache
}

// New creates a dispatcher resolving handlers from container. Defaults:
// per-dispatch scoping, scoped default lifetime, no-op logger.
func New(container Container, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		container:       container,
		policy:          ScopePerDispatch,
		defaultLifetime: Scoped,
		log:             zerolog.Nop(),
		serial:          nextSerial(),
		notifs:          make(map[reflect.Type][]*Descriptor),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Uint32("dispatcher", d.serial).Logger()
	return d
}

// Serial returns the serial number assigned to this dispatcher.
func (d *Dispatcher) Serial() Serial {
	return d.serial
}
