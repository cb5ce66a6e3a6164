// Package handle implements a generation-checked slot store with explicit
// reference counting. Objects handed to foreign callers (interop layers,
// event callbacks) are identified by opaque handles rather than pointers, so
// a stale handle is detected instead of dereferencing freed state: each slot
// carries a generation that is bumped on release, and a handle encodes both
// the slot index and the generation it was minted with.
package handle

import (
	"errors"
	"sync"
)

// Handle is an opaque reference to a stored object. The low 32 bits hold the
// slot index, the high 32 bits the slot generation.
type Handle uint64

// Nil is the zero handle; it never resolves to an object.
const Nil Handle = 0

var (
	// ErrStale is returned when a handle's generation no longer matches its
	// slot, meaning the object it referred to was released.
	ErrStale = errors.New("stale handle")
	// ErrNil is returned when resolving the zero handle.
	ErrNil = errors.New("nil handle")
)

type slot struct {
	value interface{}
	gen   uint32
	refs  int32
	live  bool
}

// Store allocates handles for objects and tracks their reference counts.
// A freshly allocated handle holds one reference.
type Store struct {
	mu    sync.Mutex
	slots []slot
	free  []uint32
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Alloc stores value and returns a handle holding one reference.
func (s *Store) Alloc(value interface{}) Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	var idx uint32
	if n := len(s.free); n > 0 {
		idx = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.slots = append(s.slots, slot{})
		idx = uint32(len(s.slots) - 1)
	}
	sl := &s.slots[idx]
	sl.value = value
	sl.gen++
	sl.refs = 1
	sl.live = true
	return makeHandle(idx, sl.gen)
}

// Get resolves h to its stored value.
func (s *Store) Get(h Handle) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, err := s.resolve(h)
	if err != nil {
		return nil, err
	}
	return sl.value, nil
}

// AddRef increments the reference count of the object behind h.
func (s *Store) AddRef(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, err := s.resolve(h)
	if err != nil {
		return err
	}
	sl.refs++
	return nil
}

// Release decrements the reference count of the object behind h. When the
// count reaches zero the slot is reclaimed, its generation invalidating any
// outstanding copies of the handle, and the stored value is returned so the
// owner can finalize it. Otherwise Release returns nil.
func (s *Store) Release(h Handle) (interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sl, err := s.resolve(h)
	if err != nil {
		return nil, err
	}
	sl.refs--
	if sl.refs > 0 {
		return nil, nil
	}
	value := sl.value
	sl.value = nil
	sl.live = false
	s.free = append(s.free, uint32(h&0xffffffff))
	return value, nil
}

func (s *Store) resolve(h Handle) (*slot, error) {
	if h == Nil {
		return nil, ErrNil
	}
	idx := uint32(h & 0xffffffff)
	gen := uint32(h >> 32)
	if int(idx) >= len(s.slots) {
		return nil, ErrStale
	}
	sl := &s.slots[idx]
	if !sl.live || sl.gen != gen {
		return nil, ErrStale
	}
	return sl, nil
}

func makeHandle(idx, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(idx))
}
