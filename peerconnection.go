package rtcpeer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pion/logging"

	"github.com/driftware/rtcpeer/internal/handle"
	"github.com/driftware/rtcpeer/internal/util"
	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

// TransceiverInit carries the optional settings for AddTransceiver.
type TransceiverInit struct {
	// Name becomes the transceiver's name and, when the local peer makes the
	// offer, its mid. Must be a valid SDP token. Generated when empty.
	Name string

	// Direction is the initial desired direction. Defaults to sendrecv.
	Direction Direction

	// StreamIDs are advertised to the remote peer for grouping, most
	// commonly to pair an audio and a video transceiver into one stream.
	StreamIDs []string
}

// PeerConnection sits between the application's signaling layer and the
// wrapped engine. It owns the transceiver set, tracks desired versus
// negotiated directions across offer/answer exchanges and tells the
// application when a new exchange is needed.
//
// All methods are safe for concurrent use. Event handlers are invoked
// without internal locks held; calling back into the connection from a
// handler is allowed.
type PeerConnection struct {
	mu sync.Mutex

	engine        Engine
	configuration Configuration

	registry *transceiverRegistry
	driver   *negotiationDriver
	handles  *handle.Store

	signalingState           SignalingState
	currentLocalDescription  *SessionDescription
	pendingLocalDescription  *SessionDescription
	currentRemoteDescription *SessionDescription
	pendingRemoteDescription *SessionDescription
	isClosed                 bool

	statesMu           sync.Mutex
	iceConnectionState ICEConnectionState
	iceGatheringState  ICEGatheringState

	events   chan interface{}
	closedCh chan struct{}

	log logging.LeveledLogger

	handlersMu                        sync.Mutex
	onSignalingStateChangeHandler     func(SignalingState)
	onICEConnectionStateChangeHandler func(ICEConnectionState)
	onICEGatheringStateChangeHandler  func(ICEGatheringState)
	onICECandidateHandler             func(ICECandidateInit)
	onTransceiverAddedHandler         func(*Transceiver)
	onRenegotiationNeededHandler      func()
	onRemoteTrackAddedHandler         func(*RemoteTrack, *Transceiver)
	onRemoteTrackRemovedHandler       func(*RemoteTrack, *Transceiver)
}

// NewPeerConnection creates a connection wrapping the given engine.
func NewPeerConnection(engine Engine, configuration Configuration) (*PeerConnection, error) {
	if engine == nil {
		return nil, &rtcerr.InvalidParameterError{Err: errNilEngine}
	}

	loggerFactory := configuration.LoggerFactory
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}

	pc := &PeerConnection{
		engine:             engine,
		configuration:      configuration,
		registry:           &transceiverRegistry{},
		handles:            handle.NewStore(),
		signalingState:     SignalingStateStable,
		iceConnectionState: ICEConnectionStateNew,
		iceGatheringState:  ICEGatheringStateNew,
		events:             make(chan interface{}, eventQueueLength),
		closedCh:           make(chan struct{}),
		log:                loggerFactory.NewLogger("rtcpeer"),
	}
	pc.driver = newNegotiationDriver(pc, loggerFactory.NewLogger("negotiation"))

	engine.OnICEConnectionStateChange(func(state ICEConnectionState) {
		pc.pushEvent(iceStateEvent{state: state})
	})
	engine.OnICEGatheringStateChange(func(state ICEGatheringState) {
		pc.pushEvent(iceGatheringEvent{state: state})
	})
	engine.OnICECandidate(func(candidate ICECandidateInit) {
		pc.pushEvent(iceCandidateEvent{candidate: candidate})
	})

	pc.startEventLoop()

	return pc, nil
}

// AddTransceiver creates a transceiver of the given kind and appends it to
// the connection's media lines. init may be nil for all defaults. The
// renegotiation-needed event fires before this returns.
func (pc *PeerConnection) AddTransceiver(kind MediaKind, init *TransceiverInit) (*Transceiver, error) {
	if kind != MediaKindAudio && kind != MediaKindVideo {
		return nil, &rtcerr.InvalidParameterError{Err: fmt.Errorf("unknown media kind %d", kind)}
	}

	name := ""
	direction := DirectionSendrecv
	var streamIDs []string
	if init != nil {
		name = init.Name
		if init.Direction != DirectionUnset {
			direction = init.Direction
		}
		streamIDs = init.StreamIDs
	}
	if name == "" {
		name = util.RandSeq(generatedNameLength)
	}
	// Validated before any state changes so a failed call leaves the
	// media-line layout untouched.
	if !util.IsValidSDPToken(name) {
		return nil, &rtcerr.InvalidParameterError{Err: fmt.Errorf("transceiver name %q is not a valid SDP token", name)}
	}

	pc.mu.Lock()
	if pc.isClosed {
		pc.mu.Unlock()
		return nil, &rtcerr.InvalidOperationError{Err: errConnectionClosed}
	}

	t := &Transceiver{
		pc:               pc,
		name:             name,
		kind:             kind,
		streamIDs:        streamIDs,
		desiredDirection: direction,
	}
	index := pc.registry.add(t)
	pc.mu.Unlock()

	pc.log.Debugf("added %s transceiver %q at media line %d", kind, name, index)

	pc.fireTransceiverAdded(t)
	pc.driver.signalNeeded()

	return t, nil
}

// GetTransceivers returns the transceivers in media-line index order.
func (pc *PeerConnection) GetTransceivers() []*Transceiver {
	return pc.registry.all()
}

// TransceiverByIndex returns the transceiver at the given media-line index.
func (pc *PeerConnection) TransceiverByIndex(i int) (*Transceiver, error) {
	return pc.registry.byIndex(i)
}

// CreateOffer asks the engine to produce an offer describing the current
// transceiver layout. The offer is not applied; pass it to
// SetLocalDescription once it has been handed to the signaling layer.
func (pc *PeerConnection) CreateOffer() (SessionDescription, error) {
	pc.mu.Lock()
	if pc.isClosed {
		pc.mu.Unlock()
		return SessionDescription{}, &rtcerr.InvalidOperationError{Err: errConnectionClosed}
	}
	pc.mu.Unlock()

	offer, err := pc.engine.CreateOffer()
	if err != nil {
		return SessionDescription{}, err
	}
	// The offer captures all pending layout changes, so the coalesced
	// renegotiation signal re-arms here as well as on local application.
	pc.driver.clearNeeded()
	return offer, nil
}

// CreateAnswer asks the engine to produce an answer to the currently pending
// remote offer.
func (pc *PeerConnection) CreateAnswer() (SessionDescription, error) {
	pc.mu.Lock()
	if pc.isClosed {
		pc.mu.Unlock()
		return SessionDescription{}, &rtcerr.InvalidOperationError{Err: errConnectionClosed}
	}
	if pc.signalingState != SignalingStateHaveRemoteOffer {
		state := pc.signalingState
		pc.mu.Unlock()
		return SessionDescription{}, &rtcerr.InvalidOperationError{
			Err: fmt.Errorf("cannot create answer in signaling state %s", state),
		}
	}
	pc.mu.Unlock()

	return pc.engine.CreateAnswer()
}

// SetLocalDescriptionAsync applies a local description. The engine applies
// it first; on success the connection updates its own negotiation state and
// delivers every resulting transceiver and track notification before
// invoking done. A non-nil return means the call was rejected up front and
// done will never be invoked.
func (pc *PeerConnection) SetLocalDescriptionAsync(desc SessionDescription, done func(error)) error {
	if err := pc.checkDescription(&desc); err != nil {
		return err
	}

	pc.engine.SetLocalDescription(desc, func(engineErr error) {
		if engineErr != nil {
			done(engineErr)
			return
		}

		pc.mu.Lock()
		events, err := pc.driver.applyLocal(desc)
		pc.mu.Unlock()

		for _, fire := range events {
			fire()
		}
		done(err)
	})

	return nil
}

// SetLocalDescription is the blocking form of SetLocalDescriptionAsync.
func (pc *PeerConnection) SetLocalDescription(desc SessionDescription) error {
	result := make(chan error, 1)
	if err := pc.SetLocalDescriptionAsync(desc, func(err error) { result <- err }); err != nil {
		return err
	}
	return <-result
}

// SetRemoteDescriptionAsync applies a description received from the remote
// peer. Remote offers are matched against the local transceiver set,
// creating transceivers for unknown media lines; answers additionally
// recompute every negotiated direction. As with the local variant, all
// notifications are delivered before done is invoked.
func (pc *PeerConnection) SetRemoteDescriptionAsync(desc SessionDescription, done func(error)) error {
	if err := pc.checkDescription(&desc); err != nil {
		return err
	}

	pc.engine.SetRemoteDescription(desc, func(engineErr error) {
		if engineErr != nil {
			done(engineErr)
			return
		}

		pc.mu.Lock()
		events, err := pc.driver.applyRemote(desc)
		pc.mu.Unlock()

		for _, fire := range events {
			fire()
		}
		done(err)
	})

	return nil
}

// SetRemoteDescription is the blocking form of SetRemoteDescriptionAsync.
func (pc *PeerConnection) SetRemoteDescription(desc SessionDescription) error {
	result := make(chan error, 1)
	if err := pc.SetRemoteDescriptionAsync(desc, func(err error) { result <- err }); err != nil {
		return err
	}
	return <-result
}

// checkDescription rejects calls that can be refused before touching the
// engine: a closed connection, an unknown SDP type or SDP text the parser
// cannot make sense of.
func (pc *PeerConnection) checkDescription(desc *SessionDescription) error {
	pc.mu.Lock()
	closed := pc.isClosed
	pc.mu.Unlock()
	if closed {
		return &rtcerr.InvalidOperationError{Err: errConnectionClosed}
	}

	if desc.Type != SDPTypeOffer && desc.Type != SDPTypeAnswer {
		return &rtcerr.InvalidParameterError{Err: fmt.Errorf("unknown SDP type %d", desc.Type)}
	}
	if err := desc.parse(); err != nil {
		return &rtcerr.InvalidParameterError{Err: err}
	}
	return nil
}

// AddICECandidate forwards a candidate received from the remote peer to the
// engine.
func (pc *PeerConnection) AddICECandidate(candidate ICECandidateInit) error {
	pc.mu.Lock()
	if pc.isClosed {
		pc.mu.Unlock()
		return &rtcerr.InvalidOperationError{Err: errConnectionClosed}
	}
	pc.mu.Unlock()

	return pc.engine.AddICECandidate(candidate)
}

// Configuration returns the configuration the connection was created with.
// Engine adapters read the ICE servers from here when they gather.
func (pc *PeerConnection) Configuration() Configuration {
	return pc.configuration
}

// SignalingState returns the current signaling state.
func (pc *PeerConnection) SignalingState() SignalingState {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.signalingState
}

// ICEConnectionState returns the last ICE connection state reported by the
// engine.
func (pc *PeerConnection) ICEConnectionState() ICEConnectionState {
	pc.statesMu.Lock()
	defer pc.statesMu.Unlock()
	return pc.iceConnectionState
}

// ICEGatheringState returns the last ICE gathering state reported by the
// engine.
func (pc *PeerConnection) ICEGatheringState() ICEGatheringState {
	pc.statesMu.Lock()
	defer pc.statesMu.Unlock()
	return pc.iceGatheringState
}

// CurrentLocalDescription returns the local description of the last
// completed exchange, or nil before the first one completes.
func (pc *PeerConnection) CurrentLocalDescription() *SessionDescription {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.currentLocalDescription
}

// CurrentRemoteDescription returns the remote description of the last
// completed exchange, or nil before the first one completes.
func (pc *PeerConnection) CurrentRemoteDescription() *SessionDescription {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.currentRemoteDescription
}

// PendingLocalDescription returns the local offer of an exchange still
// waiting for its answer, or nil.
func (pc *PeerConnection) PendingLocalDescription() *SessionDescription {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.pendingLocalDescription
}

// PendingRemoteDescription returns the remote offer not yet answered
// locally, or nil.
func (pc *PeerConnection) PendingRemoteDescription() *SessionDescription {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.pendingRemoteDescription
}

// Close shuts the connection down. Remote tracks owned by the connection
// lose their connection reference; the engine is closed and the event loop
// terminated. Close is idempotent.
func (pc *PeerConnection) Close() error {
	pc.mu.Lock()
	if pc.isClosed {
		pc.mu.Unlock()
		return nil
	}
	pc.isClosed = true
	pc.signalingState = SignalingStateClosed
	pc.mu.Unlock()

	for _, t := range pc.registry.all() {
		t.mu.Lock()
		track := t.remoteTrack
		t.remoteTrack = nil
		t.mu.Unlock()
		if track != nil {
			pc.releaseRemoteTrack(track)
		}
	}

	err := pc.engine.Close()

	// The loop is still draining here, so the termination event is always
	// delivered; only then do later pushes start falling through.
	pc.events <- terminationEvent{}
	close(pc.closedCh)

	return err
}

// OnSignalingStateChange registers a handler for signaling state changes.
func (pc *PeerConnection) OnSignalingStateChange(f func(SignalingState)) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onSignalingStateChangeHandler = f
}

// OnICEConnectionStateChange registers a handler for ICE connection state
// changes reported by the engine.
func (pc *PeerConnection) OnICEConnectionStateChange(f func(ICEConnectionState)) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onICEConnectionStateChangeHandler = f
}

// OnICEGatheringStateChange registers a handler for ICE gathering state
// changes reported by the engine.
func (pc *PeerConnection) OnICEGatheringStateChange(f func(ICEGatheringState)) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onICEGatheringStateChangeHandler = f
}

// OnICECandidate registers a handler for locally gathered candidates, to be
// forwarded to the remote peer through the signaling layer.
func (pc *PeerConnection) OnICECandidate(f func(ICECandidateInit)) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onICECandidateHandler = f
}

// OnTransceiverAdded registers a handler invoked for every transceiver
// created on the connection, whether by AddTransceiver or by a remote offer
// introducing a new media line.
func (pc *PeerConnection) OnTransceiverAdded(f func(*Transceiver)) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onTransceiverAddedHandler = f
}

// OnRenegotiationNeeded registers a handler invoked when a local change
// requires a new offer/answer exchange to take effect. Notifications
// coalesce: no further one fires until the next local offer is applied.
func (pc *PeerConnection) OnRenegotiationNeeded(f func()) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onRenegotiationNeededHandler = f
}

// OnRemoteTrackAdded registers a handler invoked when negotiation turns
// reception on for a transceiver. The handler receives a counted reference
// to the track and must release it when done.
func (pc *PeerConnection) OnRemoteTrackAdded(f func(*RemoteTrack, *Transceiver)) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onRemoteTrackAddedHandler = f
}

// OnRemoteTrackRemoved registers a handler invoked when negotiation turns
// reception off for a transceiver that had a remote track.
func (pc *PeerConnection) OnRemoteTrackRemoved(f func(*RemoteTrack, *Transceiver)) {
	pc.handlersMu.Lock()
	defer pc.handlersMu.Unlock()
	pc.onRemoteTrackRemovedHandler = f
}

// setSignalingState records the new state and queues the change event.
// Callers hold pc.mu.
func (pc *PeerConnection) setSignalingState(state SignalingState) {
	if pc.signalingState == state {
		return
	}
	pc.signalingState = state
	pc.pushEvent(signalingStateEvent{state: state})
}

// pushEvent queues an event for the event loop. Once the connection has been
// closed the loop is gone, so the event is dropped instead of blocking the
// caller, which may be an engine goroutine still reporting ICE activity.
func (pc *PeerConnection) pushEvent(evt interface{}) {
	select {
	case pc.events <- evt:
	case <-pc.closedCh:
		pc.log.Tracef("dropping %T after close", evt)
	}
}

// signalRenegotiationNeeded is the entry point for components that made a
// change requiring a new exchange.
func (pc *PeerConnection) signalRenegotiationNeeded() {
	pc.driver.signalNeeded()
}

func (pc *PeerConnection) fireRenegotiationNeeded() {
	pc.handlersMu.Lock()
	handler := pc.onRenegotiationNeededHandler
	pc.handlersMu.Unlock()

	if handler != nil {
		handler()
	}
}

func (pc *PeerConnection) fireTransceiverAdded(t *Transceiver) {
	pc.handlersMu.Lock()
	handler := pc.onTransceiverAddedHandler
	pc.handlersMu.Unlock()

	if handler != nil {
		handler(t)
	}
}

// fireRemoteTrackAdded hands the application its own counted reference on
// top of the one the connection keeps.
func (pc *PeerConnection) fireRemoteTrackAdded(track *RemoteTrack, t *Transceiver) {
	pc.handlersMu.Lock()
	handler := pc.onRemoteTrackAddedHandler
	pc.handlersMu.Unlock()

	if handler == nil {
		return
	}
	if err := track.AddRef(); err != nil {
		pc.log.Errorf("remote track reference: %v", err)
		return
	}
	handler(track, t)
}

func (pc *PeerConnection) fireRemoteTrackRemoved(track *RemoteTrack, t *Transceiver) {
	pc.handlersMu.Lock()
	handler := pc.onRemoteTrackRemovedHandler
	pc.handlersMu.Unlock()

	if handler != nil {
		handler(track, t)
	}
}

// adoptRemoteTrack gives a freshly created remote track its slot in the
// connection's handle store. The store's initial reference is the
// connection's own.
func (pc *PeerConnection) adoptRemoteTrack(track *RemoteTrack) *RemoteTrack {
	track.store = pc.handles
	track.handle = pc.handles.Alloc(track)
	return track
}

// releaseRemoteTrack drops the connection's reference. The track closes once
// the application releases any references it still holds.
func (pc *PeerConnection) releaseRemoteTrack(track *RemoteTrack) {
	if err := track.Release(); err != nil {
		pc.log.Errorf("remote track release: %v", err)
	}
}

// trackSink resolves where outgoing RTP for a media line should go, if the
// engine accepts media at all.
func (pc *PeerConnection) trackSink(mlineIndex int) TrackSink {
	if provider, ok := pc.engine.(TrackSinkProvider); ok {
		return provider.TrackSink(mlineIndex)
	}
	return nil
}

const eventQueueLength = 32

var (
	errNilEngine        = errors.New("nil engine")
	errConnectionClosed = errors.New("connection is closed")
)
