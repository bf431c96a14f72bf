// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package di provides a constructor-based dependency-injection container
// implementing the resolution contract of [code.hybscloud.com/medi]:
// lifetime-aware single and multi registration, root container plus
// disposable child scopes, and circular-dependency detection.
package di

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"code.hybscloud.com/medi"
)

// Container error sentinels.
var (
	ErrNotFunc           = errors.New("di: constructor must be a function")
	ErrBadConstructor    = errors.New("di: constructor must return exactly one concrete value")
	ErrBadServiceType    = errors.New("di: constructed type does not satisfy service type")
	ErrDuplicateProvider = errors.New("di: concrete type already provided")
	ErrNotProvided       = errors.New("di: no provider for type")
	ErrCircular          = errors.New("di: circular dependency")
	ErrScopedOnRoot      = errors.New("di: scoped lifetime cannot be resolved from the root container")
	ErrScopeReleased     = errors.New("di: scope already released")
)

// provider holds the registration metadata for one constructor: the concrete
// type it produces, its lifetime, and the cached parameter types. Singleton
// construction runs at most once; its outcome, error included, is sticky.
type provider struct {
	concrete reflect.Type
	lifetime medi.Lifetime
	ctor     reflect.Value
	params   []reflect.Type

	once     sync.Once
	instance any
	err      error
}

// Container is the root resolution context. Registration metadata is shared
// with every scope derived from it.
type Container struct {
	mu        sync.RWMutex
	providers map[reflect.Type][]*provider
}

// NewContainer creates an empty container.
func NewContainer() *Container {
	return &Container{providers: make(map[reflect.Type][]*provider)}
}

// As returns the reflect.Type of T, for naming service interfaces in
// Provide registrations and Resolve lookups.
func As[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Provide registers a constructor under its concrete return type and under
// each additional service type in as (typically interfaces named with As).
// The constructor must be a function with exactly one non-interface return
// value; its parameters are resolved from the container when it runs.
//
// A concrete type may be provided once; a service type may be shared by any
// number of providers, and ResolveAll returns them in registration order.
func (c *Container) Provide(ctor any, lt medi.Lifetime, as ...reflect.Type) error {
	ctorVal := reflect.ValueOf(ctor)
	ctorType := ctorVal.Type()
	if ctorType.Kind() != reflect.Func {
		return ErrNotFunc
	}
	if ctorType.NumOut() != 1 || ctorType.Out(0).Kind() == reflect.Interface {
		return fmt.Errorf("%w: %s", ErrBadConstructor, ctorType)
	}
	concrete := ctorType.Out(0)

	params := make([]reflect.Type, ctorType.NumIn())
	for i := range params {
		params[i] = ctorType.In(i)
	}
	p := &provider{
		concrete: concrete,
		lifetime: lt,
		ctor:     ctorVal,
		params:   params,
	}

	for _, svc := range as {
		if svc.Kind() == reflect.Interface {
			if !concrete.Implements(svc) {
				return fmt.Errorf("%w: %s as %s", ErrBadServiceType, concrete, svc)
			}
		} else if !concrete.AssignableTo(svc) {
			return fmt.Errorf("%w: %s as %s", ErrBadServiceType, concrete, svc)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.providers[concrete]) > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateProvider, concrete)
	}
	c.providers[concrete] = append(c.providers[concrete], p)
	for _, svc := range as {
		c.providers[svc] = append(c.providers[svc], p)
	}
	return nil
}

// MustProvide is Provide, panicking on error.
func (c *Container) MustProvide(ctor any, lt medi.Lifetime, as ...reflect.Type) {
	if err := c.Provide(ctor, lt, as...); err != nil {
		panic(err)
	}
}

// providersFor returns the ordered provider list registered under t.
func (c *Container) providersFor(t reflect.Type) []*provider {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.providers[t]
}

// Resolve returns the first instance registered for t, or false when no
// provider exists or resolution fails. Use ResolveRequired when the
// failure reason matters.
func (c *Container) Resolve(t reflect.Type) (any, bool) {
	v, err := c.ResolveRequired(t)
	if err != nil {
		return nil, false
	}
	return v, true
}

// ResolveRequired returns the first instance registered for t or an error.
func (c *Container) ResolveRequired(t reflect.Type) (any, error) {
	return c.resolveFirst(nil, t, make(map[*provider]bool))
}

// ResolveAll builds every instance registered for t, in registration order.
// An empty result is not an error; a failing provider is.
func (c *Container) ResolveAll(t reflect.Type) ([]any, error) {
	return c.resolveAll(nil, t)
}

// NewScope derives a disposable child scope. Scoped-lifetime instances are
// unique within one scope and isolated between scopes.
func (c *Container) NewScope() medi.Scope {
	return &Scope{root: c, instances: make(map[*provider]any)}
}

// resolveFirst resolves the first provider registered under t, threading the
// active scope (nil at root) and the cycle-tracking set.
func (c *Container) resolveFirst(s *Scope, t reflect.Type, track map[*provider]bool) (any, error) {
	ps := c.providersFor(t)
	if len(ps) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotProvided, t)
	}
	return c.build(s, ps[0], track)
}

// resolveAll resolves every provider registered under t in order.
func (c *Container) resolveAll(s *Scope, t reflect.Type) ([]any, error) {
	ps := c.providersFor(t)
	if len(ps) == 0 {
		return nil, nil
	}
	out := make([]any, len(ps))
	for i, p := range ps {
		v, err := c.build(s, p, make(map[*provider]bool))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// build produces an instance from p according to its lifetime.
func (c *Container) build(s *Scope, p *provider, track map[*provider]bool) (any, error) {
	if track[p] {
		return nil, fmt.Errorf("%w: %s", ErrCircular, p.concrete)
	}
	track[p] = true
	defer delete(track, p)

	switch p.lifetime {
	case medi.Singleton:
		p.once.Do(func() {
			p.instance, p.err = c.construct(s, p, track)
		})
		return p.instance, p.err

	case medi.Scoped:
		if s == nil {
			return nil, fmt.Errorf("%w: %s", ErrScopedOnRoot, p.concrete)
		}
		return s.scopedInstance(p, func() (any, error) {
			return c.construct(s, p, track)
		})

	default: // medi.Transient
		return c.construct(s, p, track)
	}
}

// construct resolves the constructor's parameters and calls it.
func (c *Container) construct(s *Scope, p *provider, track map[*provider]bool) (any, error) {
	args := make([]reflect.Value, len(p.params))
	for i, pt := range p.params {
		dep, err := c.resolveFirst(s, pt, track)
		if err != nil {
			return nil, fmt.Errorf("di: dependency %s of %s: %w", pt, p.concrete, err)
		}
		args[i] = reflect.ValueOf(dep)
	}
	return p.ctor.Call(args)[0].Interface(), nil
}

// Scope is a disposable child resolution context. Safe for concurrent use;
// parallel notification fan-out shares one scope across handler goroutines.
type Scope struct {
	root      *Container
	mu        sync.Mutex
	released  bool
	instances map[*provider]any
}

// Resolve returns the first instance registered for t, or false.
func (s *Scope) Resolve(t reflect.Type) (any, bool) {
	v, err := s.ResolveRequired(t)
	if err != nil {
		return nil, false
	}
	return v, true
}

// ResolveRequired returns the first instance registered for t or an error.
func (s *Scope) ResolveRequired(t reflect.Type) (any, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.root.resolveFirst(s, t, make(map[*provider]bool))
}

// ResolveAll builds every instance registered for t, in registration order.
func (s *Scope) ResolveAll(t reflect.Type) ([]any, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	return s.root.resolveAll(s, t)
}

// Release disposes the scope. Resolving from a released scope fails with
// ErrScopeReleased.
func (s *Scope) Release() {
	s.mu.Lock()
	s.released = true
	s.instances = nil
	s.mu.Unlock()
}

// check reports whether the scope is still usable.
func (s *Scope) check() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return ErrScopeReleased
	}
	return nil
}

// scopedInstance returns the scope's instance for p, constructing it if
// absent. Construction runs outside the scope lock (it may recurse into the
// scope); racing constructions collapse to the first stored instance.
func (s *Scope) scopedInstance(p *provider, construct func() (any, error)) (any, error) {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil, ErrScopeReleased
	}
	if v, ok := s.instances[p]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	v, err := construct()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return nil, ErrScopeReleased
	}
	if prev, ok := s.instances[p]; ok {
		return prev, nil
	}
	s.instances[p] = v
	return v, nil
}

var (
	_ medi.Container = (*Container)(nil)
	_ medi.Scope     = (*Scope)(nil)
)
