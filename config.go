// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
)

// ScopePolicy selects the resolution context used for one dispatch operation.
type ScopePolicy uint8

const (
	// ScopePerDispatch creates a disposable child scope per dispatch or
	// publish and releases it on every exit path. Default.
	ScopePerDispatch ScopePolicy = iota

	// ScopeRoot resolves from the root container with no allocation and no
	// release obligation. Scoped-lifetime registrations fail under this
	// policy; the container's own error surfaces untranslated.
	ScopeRoot
)

// String implements fmt.Stringer.
func (p ScopePolicy) String() string {
	switch p {
	case ScopePerDispatch:
		return "per_dispatch"
	case ScopeRoot:
		return "root"
	default:
		return fmt.Sprintf("ScopePolicy(%d)", uint8(p))
	}
}

// Option configures a Dispatcher at construction time.
type Option func(*Dispatcher)

// WithScopePolicy sets the resolution scope policy.
func WithScopePolicy(p ScopePolicy) Option {
	return func(d *Dispatcher) { d.policy = p }
}

// WithDefaultLifetime sets the lifetime recorded on descriptors learned by
// the fallback protocol. It does not affect how the container itself manages
// lifetimes of its registrations.
func WithDefaultLifetime(lt Lifetime) Option {
	return func(d *Dispatcher) { d.defaultLifetime = lt }
}

// WithLogger sets the structured logger. Only cold-path events are logged
// (learned descriptors, cache builds), all at debug level. Default is a
// no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = log }
}

// fileConfig is the on-disk shape read by LoadConfig.
type fileConfig struct {
	ResolutionScope string `toml:"resolution_scope"`
	DefaultLifetime string `toml:"default_lifetime"`
}

// LoadConfig reads dispatcher options from a TOML file. Recognized keys:
// resolution_scope ("per_dispatch" or "root") and default_lifetime
// ("singleton", "scoped" or "transient"). Missing keys keep defaults.
func LoadConfig(path string) ([]Option, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("medi: load config: %w", err)
	}

	var opts []Option
	switch fc.ResolutionScope {
	case "":
	case "per_dispatch":
		opts = append(opts, WithScopePolicy(ScopePerDispatch))
	case "root":
		opts = append(opts, WithScopePolicy(ScopeRoot))
	default:
		return nil, fmt.Errorf("medi: unknown resolution_scope %q", fc.ResolutionScope)
	}
	switch fc.DefaultLifetime {
	case "":
	case "singleton":
		opts = append(opts, WithDefaultLifetime(Singleton))
	case "scoped":
		opts = append(opts, WithDefaultLifetime(Scoped))
	case "transient":
		opts = append(opts, WithDefaultLifetime(Transient))
	default:
		return nil, fmt.Errorf("medi: unknown default_lifetime %q", fc.DefaultLifetime)
	}
	return opts, nil
}
