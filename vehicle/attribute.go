package vehicle

import (
	"sync"
)

// Attribute is a single observable value in the vehicle attribute tree.
// Connectors populate it from the backend, the bridge observes it.
//
// An attribute starts out disabled (no value reported yet) and becomes
// enabled on the first Set. Observers may be registered at any time,
// also while the attribute is still disabled.
type Attribute[T comparable] struct {
	mu        sync.Mutex
	name      string
	value     T
	enabled   bool
	observers []func(T)
}

func NewAttribute[T comparable](name string) *Attribute[T] {
	return &Attribute[T]{name: name}
}

func (a *Attribute[T]) Name() string { return a.name }

// Get returns the current value and whether the attribute is enabled.
// A disabled attribute has no meaningful value.
func (a *Attribute[T]) Get() (T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.value, a.enabled
}

func (a *Attribute[T]) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Set stores a new value, enabling the attribute if it was disabled.
// Observers run only when the value actually changed (or on the first
// value after enable), after the internal lock is released so they can
// take their own locks.
func (a *Attribute[T]) Set(v T) {
	a.mu.Lock()
	if a.enabled && a.value == v {
		a.mu.Unlock()
		return
	}
	a.value = v
	a.enabled = true
	observers := make([]func(T), len(a.observers))
	copy(observers, a.observers)
	a.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
}

// Disable marks the attribute as no longer reported. The last value is
// kept but Get reports it as not meaningful. Observers do not fire.
func (a *Attribute[T]) Disable() {
	a.mu.Lock()
	a.enabled = false
	a.mu.Unlock()
}

// OnChange registers an observer for value changes. Registration works
// regardless of the current enabled state, a later-appearing attribute
// still reaches its observers.
func (a *Attribute[T]) OnChange(fn func(T)) {
	a.mu.Lock()
	a.observers = append(a.observers, fn)
	a.mu.Unlock()
}
