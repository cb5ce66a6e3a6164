package rtcpeer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

// TransceiverStateUpdatedReason identifies what caused a transceiver
// state-updated notification.
type TransceiverStateUpdatedReason int

const (
	// StateUpdatedReasonLocalDescription indicates the negotiated direction
	// was recomputed because a local description was applied.
	StateUpdatedReasonLocalDescription TransceiverStateUpdatedReason = iota + 1

	// StateUpdatedReasonRemoteDescription indicates the negotiated direction
	// was recomputed because a remote description was applied.
	StateUpdatedReasonRemoteDescription

	// StateUpdatedReasonSetDirection indicates the desired direction was
	// changed through SetDirection.
	StateUpdatedReasonSetDirection
)

func (r TransceiverStateUpdatedReason) String() string {
	switch r {
	case StateUpdatedReasonLocalDescription:
		return "local-description-applied"
	case StateUpdatedReasonRemoteDescription:
		return "remote-description-applied"
	case StateUpdatedReasonSetDirection:
		return "set-direction"
	default:
		return unknownStr
	}
}

// Transceiver represents one bidirectional media slot on a connection: at
// most one local (sending) track, at most one remote (receiving) track, and
// the direction negotiation state between them. Transceivers are created
// explicitly through PeerConnection.AddTransceiver or implicitly when a
// remote offer introduces a media line not known locally, and are never
// removed while the connection is open.
type Transceiver struct {
	pc *PeerConnection

	// Immutable identity.
	name       string
	kind       MediaKind
	mlineIndex int

	mu               sync.RWMutex
	streamIDs        []string
	desiredDirection Direction
	// negotiatedDirection is only mutated by description application, never
	// directly by the application.
	negotiatedDirection Direction
	// remoteAdvertised is the direction the remote peer last advertised for
	// this media line, from the remote's point of view.
	remoteAdvertised Direction
	localTrack       *LocalTrack
	remoteTrack      *RemoteTrack

	handlersMu            sync.Mutex
	onStateUpdatedHandler func(TransceiverStateUpdatedReason, Direction, Direction)
}

// Name returns the transceiver's name, a valid SDP token usable as a mid.
func (t *Transceiver) Name() string { return t.name }

// Kind returns the transceiver's media kind, fixed for its lifetime.
func (t *Transceiver) Kind() MediaKind { return t.kind }

// MlineIndex returns the zero-based media-line index assigned at creation.
// Indices are dense, monotonic and never recycled.
func (t *Transceiver) MlineIndex() int { return t.mlineIndex }

// StreamIDs returns the stream IDs associated with the transceiver.
func (t *Transceiver) StreamIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.streamIDs
}

// DesiredDirection returns the direction the application wants to use in the
// next offer/answer exchange.
func (t *Transceiver) DesiredDirection() Direction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.desiredDirection
}

// NegotiatedDirection returns the direction agreed in the last completed
// offer/answer exchange, or DirectionUnset before the first one.
func (t *Transceiver) NegotiatedDirection() Direction {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.negotiatedDirection
}

// OnStateUpdated sets the handler invoked whenever the transceiver's
// direction state changes, with the reason, the negotiated direction and the
// desired direction. Handlers run on the connection's signaling goroutine.
func (t *Transceiver) OnStateUpdated(f func(reason TransceiverStateUpdatedReason, negotiated, desired Direction)) {
	t.handlersMu.Lock()
	t.onStateUpdatedHandler = f
	t.handlersMu.Unlock()
}

// SetDirection updates the desired direction. The change takes effect
// locally right away and fires a set-direction state update carrying the
// unchanged negotiated direction; it is only communicated to the remote peer
// by the next offer/answer exchange. Note that SetDirection alone does not
// fire renegotiation-needed: that signal is driven by transceiver and track
// set composition.
func (t *Transceiver) SetDirection(direction Direction) error {
	if t == nil {
		return &rtcerr.InvalidHandleError{Err: errNilTransceiver}
	}
	if direction == DirectionUnset {
		return &rtcerr.InvalidParameterError{Err: errors.New("desired direction cannot be unset")}
	}

	t.mu.Lock()
	if direction == t.desiredDirection {
		t.mu.Unlock()
		return nil
	}
	t.desiredDirection = direction
	negotiated := t.negotiatedDirection
	t.mu.Unlock()

	t.pc.log.Debugf("transceiver %s (#%d): desired direction -> %s", t.name, t.mlineIndex, direction)
	t.fireStateUpdated(StateUpdatedReasonSetDirection, negotiated, direction)
	return nil
}

// SetLocalTrack associates a local track with the transceiver, or detaches
// the current one when track is nil. The previous association is dropped
// without destroying the track; the application keeps ownership. A track of
// the wrong media kind is rejected with an invalid-operation error and
// nothing changes. Attaching or detaching fires renegotiation-needed only
// when it changes what media actually flows relative to the last negotiated
// state; swapping one track for another never does.
func (t *Transceiver) SetLocalTrack(track *LocalTrack) error {
	if t == nil {
		return &rtcerr.InvalidHandleError{Err: errNilTransceiver}
	}
	if track != nil && track.Kind() != t.kind {
		return &rtcerr.InvalidOperationError{
			Err: fmt.Errorf("cannot associate %s track with %s transceiver", track.Kind(), t.kind),
		}
	}

	t.mu.Lock()
	if track == t.localTrack {
		t.mu.Unlock()
		return nil
	}
	if track != nil {
		if err := track.bindConnection(t.pc); err != nil {
			t.mu.Unlock()
			return err
		}
	}
	old := t.localTrack
	t.localTrack = track
	negotiatedSend := t.negotiatedDirection.Send()
	t.mu.Unlock()

	// Exclusive hand-off: the old association is cleared before the new
	// track starts forwarding.
	if old != nil {
		old.setSink(nil)
		old.setNegotiatedSend(false)
	}
	if track != nil {
		track.setSink(t.pc.trackSink(t.mlineIndex))
		track.setNegotiatedSend(negotiatedSend)
	}

	had, has := old != nil, track != nil
	if had != has && negotiatedSend != has {
		t.pc.signalRenegotiationNeeded()
	}
	return nil
}

// LocalTrack returns the associated local track, or nil.
func (t *Transceiver) LocalTrack() *LocalTrack {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.localTrack
}

// RemoteTrack returns the connection-owned remote track currently fed by the
// negotiated media flow, or nil.
func (t *Transceiver) RemoteTrack() *RemoteTrack {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.remoteTrack
}

// setRemoteAdvertised records the direction the remote peer advertised for
// this media line, along with the remote-supplied stream IDs.
func (t *Transceiver) setRemoteAdvertised(direction Direction, streamIDs []string) {
	t.mu.Lock()
	t.remoteAdvertised = direction
	if len(streamIDs) > 0 {
		t.streamIDs = streamIDs
	}
	t.mu.Unlock()
}

// recomputeNegotiated intersects the locally desired direction with the
// remote advertised one and stores the result. It reports whether the
// negotiated direction changed, returning the new value.
func (t *Transceiver) recomputeNegotiated() (Direction, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remoteAdvertised == DirectionUnset {
		return t.negotiatedDirection, false
	}
	negotiated := intersectDirections(t.desiredDirection, t.remoteAdvertised)
	if negotiated == t.negotiatedDirection {
		return negotiated, false
	}
	t.negotiatedDirection = negotiated
	if t.localTrack != nil {
		t.localTrack.setNegotiatedSend(negotiated.Send())
	}
	return negotiated, true
}

func (t *Transceiver) fireStateUpdated(reason TransceiverStateUpdatedReason, negotiated, desired Direction) {
	t.handlersMu.Lock()
	handler := t.onStateUpdatedHandler
	t.handlersMu.Unlock()
	if handler != nil {
		handler(reason, negotiated, desired)
	}
}

var errNilTransceiver = errors.New("nil transceiver")
