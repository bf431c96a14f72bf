// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"reflect"
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Cache slot states. A slot moves empty→building→ready; a failed build moves
// it back to empty so a later dispatch can retry once the misconfiguration
// is corrected.
const (
	slotEmpty uint32 = iota
	slotBuilding
	slotReady
)

// cacheSlot is the per-type memoization cell. value is written before the
// ready transition and never mutated afterwards.
type cacheSlot struct {
	state atomix.Uint32
	value any
}

// typeCache is a concurrent type-keyed store with atomic get-or-build
// semantics. Entries live for the process lifetime; there is no eviction.
// Each key builds independently: racing builders of unrelated types never
// serialize on a shared lock.
type typeCache struct {
	slots sync.Map // reflect.Type → *cacheSlot
}

// getOrBuild returns the value cached for t, building it at most once.
// Exactly one caller claims the slot and runs build; concurrent callers wait
// with adaptive backoff until the winner publishes. A build error releases
// the slot without caching anything, so a failed first dispatch leaves no
// observable side effect.
func (c *typeCache) getOrBuild(t reflect.Type, build func() (any, error)) (any, error) {
	v, _ := c.slots.LoadOrStore(t, &cacheSlot{})
	slot := v.(*cacheSlot)

	var bo iox.Backoff
	for {
		switch slot.state.Load() {
		case slotReady:
			return slot.value, nil
		case slotEmpty:
			if !slot.state.CompareAndSwap(slotEmpty, slotBuilding) {
				continue
			}
			val, err := build()
			if err != nil {
				slot.state.Store(slotEmpty)
				return nil, err
			}
			slot.value = val
			slot.state.Store(slotReady)
			return val, nil
		default:
			bo.Wait()
		}
	}
}

// lookup returns the cached value for t without building.
func (c *typeCache) lookup(t reflect.Type) (any, bool) {
	v, ok := c.slots.Load(t)
	if !ok {
		return nil, false
	}
	slot := v.(*cacheSlot)
	if slot.state.Load() != slotReady {
		return nil, false
	}
	return slot.value, true
}
