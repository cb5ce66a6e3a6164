package rtcpeer

import (
	"fmt"
	"sync"

	"github.com/pion/logging"

	"github.com/driftware/rtcpeer/internal/util"
	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

// negotiationDriver reacts to description application and to transceiver and
// track set changes: it matches remote media lines to transceivers, computes
// negotiated directions, drives remote track lifecycle and decides when the
// renegotiation-needed signal must fire.
//
// All apply* methods run with the connection mutex held and return the
// notifications to deliver, in order, once the mutex is released. Callers
// must deliver them before reporting completion to the application; that
// ordering is what lets completion callbacks observe consistent transceiver
// state.
type negotiationDriver struct {
	pc  *PeerConnection
	log logging.LeveledLogger

	mu sync.Mutex
	// signaled coalesces renegotiation-needed: once fired, further triggers
	// are folded into the pending signal until a local offer is applied.
	signaled bool
}

func newNegotiationDriver(pc *PeerConnection, log logging.LeveledLogger) *negotiationDriver {
	return &negotiationDriver{pc: pc, log: log}
}

// signalNeeded fires renegotiation-needed unless one is already pending.
// Triggers are transceiver creation and flow-changing track attach/detach;
// a bare SetDirection never signals.
func (d *negotiationDriver) signalNeeded() {
	d.mu.Lock()
	if d.signaled {
		d.mu.Unlock()
		return
	}
	d.signaled = true
	d.mu.Unlock()
	d.pc.fireRenegotiationNeeded()
}

// clearNeeded resets the coalescing flag once a local offer has been
// applied, i.e. once the pending changes are on their way to the remote.
func (d *negotiationDriver) clearNeeded() {
	d.mu.Lock()
	d.signaled = false
	d.mu.Unlock()
}

// applyLocal applies a locally generated description. Applying an offer only
// records it as pending; applying an answer completes the exchange and
// recomputes every transceiver's negotiated direction from the locally
// expressed state.
func (d *negotiationDriver) applyLocal(desc SessionDescription) ([]func(), error) {
	pc := d.pc
	switch desc.Type {
	case SDPTypeOffer:
		if pc.signalingState != SignalingStateStable && pc.signalingState != SignalingStateHaveLocalOffer {
			return nil, &rtcerr.InvalidOperationError{
				Err: fmt.Errorf("cannot apply local offer in signaling state %s", pc.signalingState),
			}
		}
		pc.pendingLocalDescription = &desc
		pc.setSignalingState(SignalingStateHaveLocalOffer)
		d.clearNeeded()
		return nil, nil
	case SDPTypeAnswer:
		if pc.signalingState != SignalingStateHaveRemoteOffer {
			return nil, &rtcerr.InvalidOperationError{
				Err: fmt.Errorf("cannot apply local answer in signaling state %s", pc.signalingState),
			}
		}
		pc.currentLocalDescription = &desc
		pc.currentRemoteDescription = pc.pendingRemoteDescription
		pc.pendingRemoteDescription = nil
		pc.setSignalingState(SignalingStateStable)
		return d.recompute(StateUpdatedReasonLocalDescription), nil
	default:
		return nil, &rtcerr.InvalidParameterError{Err: fmt.Errorf("unknown description type %d", desc.Type)}
	}
}

// applyRemote applies a description received from the remote peer. Each
// media line is matched to an existing transceiver, or a new transceiver is
// created when the remote introduced one unilaterally. A remote answer
// completes the exchange and recomputes negotiated directions.
func (d *negotiationDriver) applyRemote(desc SessionDescription) ([]func(), error) {
	pc := d.pc
	switch desc.Type {
	case SDPTypeOffer:
		if pc.signalingState != SignalingStateStable && pc.signalingState != SignalingStateHaveRemoteOffer {
			return nil, &rtcerr.InvalidOperationError{
				Err: fmt.Errorf("cannot apply remote offer in signaling state %s", pc.signalingState),
			}
		}
	case SDPTypeAnswer:
		if pc.signalingState != SignalingStateHaveLocalOffer {
			return nil, &rtcerr.InvalidOperationError{
				Err: fmt.Errorf("cannot apply remote answer in signaling state %s", pc.signalingState),
			}
		}
	default:
		return nil, &rtcerr.InvalidParameterError{Err: fmt.Errorf("unknown description type %d", desc.Type)}
	}

	events := d.matchSections(desc.mediaSections(), desc.Type == SDPTypeOffer)

	if desc.Type == SDPTypeOffer {
		pc.pendingRemoteDescription = &desc
		pc.setSignalingState(SignalingStateHaveRemoteOffer)
		return events, nil
	}

	pc.currentRemoteDescription = &desc
	pc.currentLocalDescription = pc.pendingLocalDescription
	pc.pendingLocalDescription = nil
	pc.setSignalingState(SignalingStateStable)
	return append(events, d.recompute(StateUpdatedReasonRemoteDescription)...), nil
}

// matchSections pairs each remote media line with a transceiver: first by
// mid matching a transceiver name when unambiguous, then by ordinal position
// among unmatched transceivers of the same kind in description order, and
// finally, for remote offers only, by creating a new transceiver for lines
// the remote introduced. An answer can only reference lines our own offer
// carried, so an unmatched line in one is a remote fault: it is logged and
// ignored rather than turned into a transceiver. Matched transceivers record
// the remote advertised direction and stream IDs; creations are reported
// through transceiver-added notifications.
func (d *negotiationDriver) matchSections(sections []mediaSection, isOffer bool) []func() {
	pc := d.pc
	transceivers := pc.registry.all()
	used := make([]bool, len(transceivers))

	var events []func()
	for _, sec := range sections {
		t := matchByName(transceivers, used, sec)
		if t == nil {
			t = matchByOrdinal(transceivers, used, sec)
		}
		if t == nil {
			if !isOffer {
				d.log.Warnf("remote answer carries unmatched %s media line %d, ignoring", sec.kind, sec.index)
				continue
			}
			t = d.createFromRemote(sec)
			created := t
			events = append(events, func() { pc.fireTransceiverAdded(created) })
		}
		t.setRemoteAdvertised(sec.direction, sec.streamIDs)
	}
	return events
}

func matchByName(transceivers []*Transceiver, used []bool, sec mediaSection) *Transceiver {
	if sec.mid == "" {
		return nil
	}
	for i, t := range transceivers {
		if !used[i] && t.kind == sec.kind && t.name == sec.mid {
			used[i] = true
			return t
		}
	}
	return nil
}

func matchByOrdinal(transceivers []*Transceiver, used []bool, sec mediaSection) *Transceiver {
	for i, t := range transceivers {
		if !used[i] && t.kind == sec.kind {
			used[i] = true
			return t
		}
	}
	return nil
}

// createFromRemote creates the local transceiver for a media line the remote
// peer introduced unilaterally. The new transceiver starts receive-only
// capable: it wants to receive what the remote offers to send, and nothing
// more, until the application decides otherwise.
func (d *negotiationDriver) createFromRemote(sec mediaSection) *Transceiver {
	name := sec.mid
	if !util.IsValidSDPToken(name) {
		name = util.RandSeq(generatedNameLength)
	}
	desired := DirectionInactive
	if sec.direction.Send() {
		desired = DirectionRecvonly
	}
	t := &Transceiver{
		pc:               d.pc,
		name:             name,
		kind:             sec.kind,
		streamIDs:        sec.streamIDs,
		desiredDirection: desired,
	}
	index := d.pc.registry.add(t)
	if index != sec.index {
		d.log.Warnf("media line index mismatch: remote line %d registered as %d", sec.index, index)
	}
	d.log.Debugf("created %s transceiver %s (#%d) from remote description", t.kind, t.name, index)
	return t
}

// recompute refreshes every transceiver's negotiated direction and remote
// track association after a completed exchange. Only transceivers whose
// negotiated direction actually changed produce a state-updated
// notification.
func (d *negotiationDriver) recompute(reason TransceiverStateUpdatedReason) []func() {
	var events []func()
	for _, t := range d.pc.registry.all() {
		negotiated, changed := t.recomputeNegotiated()
		if changed {
			captured, desired := t, t.DesiredDirection()
			events = append(events, func() {
				captured.fireStateUpdated(reason, negotiated, desired)
			})
			d.log.Debugf("transceiver %s (#%d): negotiated direction -> %s", t.name, t.mlineIndex, negotiated)
		}
		events = append(events, d.syncRemoteTrack(t, negotiated)...)
	}
	return events
}

// syncRemoteTrack creates or removes the connection-owned remote track so it
// mirrors the negotiated receive capability.
func (d *negotiationDriver) syncRemoteTrack(t *Transceiver, negotiated Direction) []func() {
	pc := d.pc
	t.mu.Lock()
	defer t.mu.Unlock()

	if negotiated.Recv() && t.remoteTrack == nil {
		track := pc.adoptRemoteTrack(newRemoteTrack(t.kind, t.streamIDs))
		t.remoteTrack = track
		return []func(){func() { pc.fireRemoteTrackAdded(track, t) }}
	}
	if !negotiated.Recv() && t.remoteTrack != nil {
		track := t.remoteTrack
		t.remoteTrack = nil
		return []func(){func() {
			pc.fireRemoteTrackRemoved(track, t)
			pc.releaseRemoteTrack(track)
		}}
	}
	return nil
}

const generatedNameLength = 16
