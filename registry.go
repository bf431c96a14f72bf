// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package medi

import (
	"fmt"
	"reflect"
)

// Lifetime is the lifetime policy recorded on a handler descriptor. The
// engine treats it as metadata for the external registrar and the container;
// runtime dispatch logic does not branch on it.
type Lifetime uint8

const (
	// Singleton instances are shared for the container lifetime.
	Singleton Lifetime = iota

	// Scoped instances are unique within one resolution scope. Default for
	// learned descriptors.
	Scoped

	// Transient instances are created on every resolution.
	Transient
)

// String implements fmt.Stringer.
func (lt Lifetime) String() string {
	switch lt {
	case Singleton:
		return "singleton"
	case Scoped:
		return "scoped"
	case Transient:
		return "transient"
	default:
		return fmt.Sprintf("Lifetime(%d)", uint8(lt))
	}
}

// Descriptor records how one handler is resolved: its concrete type, its
// lifetime policy, and whether it has the context-aware shape. Immutable
// once constructed.
type Descriptor struct {
	Concrete reflect.Type
	Lifetime Lifetime
	Async    bool
}

// RegisterRequest records the concrete handler type H for request type Req
// ahead of the first dispatch, so dispatch resolves it directly by concrete
// type instead of probing the container generically.
//
// H must implement Handler[Req, Resp] or SyncHandler[Req, Resp]; the shape
// is detected here. At most one handler may be registered per request type:
// a second registration returns ErrDuplicateHandler.
func RegisterRequest[Req, Resp, H any](d *Dispatcher, lt Lifetime) error {
	reqType := typeOf[Req]()
	concrete := typeOf[H]()

	async := concrete.Implements(typeOf[Handler[Req, Resp]]())
	if !async && !concrete.Implements(typeOf[SyncHandler[Req, Resp]]()) {
		return fmt.Errorf("%w: %s for request %s", ErrHandlerShape, concrete, reqType)
	}

	desc := &Descriptor{Concrete: concrete, Lifetime: lt, Async: async}
	if _, loaded := d.requests.LoadOrStore(reqType, desc); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateHandler, reqType)
	}
	return nil
}

// RegisterNotification appends the concrete handler type H to the ordered
// handler list for notification type N. Registration order is the sequential
// fan-out order. Registrations after the first publish of N do not take
// effect: the invoker array is frozen on first lookup.
func RegisterNotification[N, H any](d *Dispatcher, lt Lifetime) error {
	nType := typeOf[N]()
	concrete := typeOf[H]()

	if !concrete.Implements(typeOf[NotificationHandler[N]]()) {
		return fmt.Errorf("%w: %s for notification %s", ErrHandlerShape, concrete, nType)
	}

	desc := &Descriptor{Concrete: concrete, Lifetime: lt, Async: true}
	d.notifMu.Lock()
	d.notifs[nType] = append(d.notifs[nType], desc)
	d.notifMu.Unlock()
	return nil
}

// learnRequest inserts a descriptor discovered by the fallback probe.
// LoadOrStore keeps exactly one winner under concurrent first dispatches of
// the same type; losers adopt the stored descriptor.
func (d *Dispatcher) learnRequest(reqType, concrete reflect.Type, async bool) *Descriptor {
	desc := &Descriptor{Concrete: concrete, Lifetime: d.defaultLifetime, Async: async}
	v, loaded := d.requests.LoadOrStore(reqType, desc)
	if !loaded {
		d.log.Debug().
			Stringer("request", reqType).
			Stringer("handler", concrete).
			Msg("learned request handler")
	}
	return v.(*Descriptor)
}

// learnNotifications records descriptors for handlers discovered through the
// container's multi-registration. Double-checked under the registry lock so
// racing cold publishes insert the list once.
func (d *Dispatcher) learnNotifications(nType reflect.Type, descs []*Descriptor) []*Descriptor {
	d.notifMu.Lock()
	defer d.notifMu.Unlock()
	if existing := d.notifs[nType]; len(existing) > 0 {
		return existing
	}
	d.notifs[nType] = descs
	d.log.Debug().
		Stringer("notification", nType).
		Int("handlers", len(descs)).
		Msg("learned notification handlers")
	return descs
}

// notificationDescriptors returns the registered descriptor list for nType.
func (d *Dispatcher) notificationDescriptors(nType reflect.Type) []*Descriptor {
	d.notifMu.RLock()
	defer d.notifMu.RUnlock()
	return d.notifs[nType]
}
