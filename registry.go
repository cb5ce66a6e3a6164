package rtcpeer

import (
	"fmt"
	"sync"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

// transceiverRegistry owns the set of transceivers attached to a connection.
// Media-line indices are assigned atomically at creation, dense and
// monotonic, and are never recycled; transceivers stay registered until the
// owning connection is closed, which destroys the registry and everything in
// it.
type transceiverRegistry struct {
	mu           sync.Mutex
	transceivers []*Transceiver
}

// add registers t, assigns the next media-line index and returns it.
func (r *transceiverRegistry) add(t *Transceiver) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	index := len(r.transceivers)
	t.mlineIndex = index
	r.transceivers = append(r.transceivers, t)
	return index
}

// byIndex returns the transceiver at the given media-line index.
func (r *transceiverRegistry) byIndex(i int) (*Transceiver, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.transceivers) {
		return nil, &rtcerr.OutOfRangeError{Err: fmt.Errorf("no transceiver at media line %d", i)}
	}
	return r.transceivers[i], nil
}

// all returns a snapshot of the registered transceivers in insertion order,
// which is also media-line index order.
func (r *transceiverRegistry) all() []*Transceiver {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Transceiver, len(r.transceivers))
	copy(out, r.transceivers)
	return out
}

func (r *transceiverRegistry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.transceivers)
}
