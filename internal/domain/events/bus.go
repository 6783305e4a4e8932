package events

import (
	"reflect"
	"sync"
)

type subscriber struct {
	id uint64
	fn func(any)
}

var (
	mu     sync.RWMutex
	nextID uint64
	subs   = map[string][]subscriber{} // nombre de tipo -> subs
)

func typeNameOf[T any]() string {
	var zero *T
	rt := reflect.TypeOf(zero).Elem() // *T -> T, sin dereferenciar nil
	return rt.PkgPath() + "." + rt.Name()
}

// Subscribe registers fn for events of type T and returns its cancel func.
func Subscribe[T any](fn func(T)) func() {
	name := typeNameOf[T]()
	wrapped := func(v any) {
		if ev, ok := v.(T); ok {
			fn(ev)
		}
	}

	mu.Lock()
	nextID++
	id := nextID
	subs[name] = append(subs[name], subscriber{id: id, fn: wrapped})
	mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			mu.Lock()
			defer mu.Unlock()
			ss := subs[name]
			for i, s := range ss {
				if s.id == id {
					subs[name] = append(ss[:i:i], ss[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers ev synchronously to every subscriber of T. A panicking
// subscriber does not stop the others.
func Publish[T any](ev T) {
	name := typeNameOf[T]()
	mu.RLock()
	ss := append([]subscriber(nil), subs[name]...)
	mu.RUnlock()
	for _, s := range ss {
		func() {
			defer func() {
				_ = recover()
			}()
			s.fn(ev)
		}()
	}
}

// Count reports how many subscribers T currently has.
func Count[T any]() int {
	name := typeNameOf[T]()
	mu.RLock()
	defer mu.RUnlock()
	return len(subs[name])
}
