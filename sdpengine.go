package rtcpeer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/pion/logging"
	"github.com/pion/sdp/v2"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

// SDPEngine is a signaling-only Engine implementation. It produces offers
// and answers straight from the bound connection's transceiver layout and
// accepts descriptions without running any transports, which makes it usable
// for signaling dry runs, in-process loopback setups and as the reference
// for what the connection expects from a real engine.
//
// Placeholder codecs are advertised per media line; an engine that actually
// moves media replaces them with its negotiated ones.
type SDPEngine struct {
	mu sync.Mutex

	pc *PeerConnection

	localDescription  *SessionDescription
	remoteDescription *SessionDescription

	sinks map[int]TrackSink

	onICEConnectionStateChange func(ICEConnectionState)
	onICEGatheringStateChange  func(ICEGatheringState)
	onICECandidate             func(ICECandidateInit)

	log logging.LeveledLogger
}

// NewSDPEngine creates an unbound engine. Bind it to the connection built on
// top of it before the first CreateOffer or CreateAnswer.
func NewSDPEngine(loggerFactory logging.LoggerFactory) *SDPEngine {
	if loggerFactory == nil {
		loggerFactory = logging.NewDefaultLoggerFactory()
	}
	return &SDPEngine{
		sinks: make(map[int]TrackSink),
		log:   loggerFactory.NewLogger("sdpengine"),
	}
}

// Bind attaches the engine to the connection whose transceiver layout drives
// description generation.
func (e *SDPEngine) Bind(pc *PeerConnection) {
	e.mu.Lock()
	e.pc = pc
	e.mu.Unlock()
}

func (e *SDPEngine) boundConnection() (*PeerConnection, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pc == nil {
		return nil, &rtcerr.InvalidOperationError{Err: errUnboundEngine}
	}
	return e.pc, nil
}

// CreateOffer builds an offer with one media line per transceiver, in
// media-line index order, advertising each transceiver's desired direction
// and using its name as the mid.
func (e *SDPEngine) CreateOffer() (SessionDescription, error) {
	pc, err := e.boundConnection()
	if err != nil {
		return SessionDescription{}, err
	}

	d := sdp.NewJSEPSessionDescription(false)
	for _, t := range pc.GetTransceivers() {
		d.WithMedia(e.mediaLine(t.Kind(), t.Name(), t.DesiredDirection(), t.StreamIDs()))
	}

	return marshalDescription(SDPTypeOffer, d)
}

// CreateAnswer builds an answer to the remote offer last given to
// SetRemoteDescription: one media line per offered line, mirroring the
// offered mid and advertising the intersection of the local transceiver's
// desired direction with the offered one. Offered lines of kinds this
// engine does not carry, such as an application line for a datachannel, are
// echoed back rejected with a zero port so the line count stays aligned.
func (e *SDPEngine) CreateAnswer() (SessionDescription, error) {
	pc, err := e.boundConnection()
	if err != nil {
		return SessionDescription{}, err
	}

	e.mu.Lock()
	remote := e.remoteDescription
	e.mu.Unlock()
	if remote == nil || remote.Type != SDPTypeOffer {
		return SessionDescription{}, &rtcerr.InvalidOperationError{Err: errors.New("no remote offer to answer")}
	}
	if remote.parsed == nil {
		if err := remote.parse(); err != nil {
			return SessionDescription{}, &rtcerr.InvalidParameterError{Err: err}
		}
	}

	// Offered lines pair with transceivers the same way the connection
	// matched them when the offer was applied.
	transceivers := pc.GetTransceivers()
	used := make([]bool, len(transceivers))

	d := sdp.NewJSEPSessionDescription(false)
	for i, media := range remote.parsed.MediaDescriptions {
		kind := NewMediaKind(media.MediaName.Media)
		if kind == MediaKind(Unknown) {
			d.WithMedia(rejectedMediaLine(media))
			continue
		}
		sec := mediaSection{
			index:     i,
			kind:      kind,
			mid:       midValue(media),
			direction: mediaDirection(media),
		}
		t := matchByName(transceivers, used, sec)
		if t == nil {
			t = matchByOrdinal(transceivers, used, sec)
		}
		if t == nil {
			return SessionDescription{}, fmt.Errorf("offered media line %d has no transceiver", i)
		}
		direction := intersectDirections(t.DesiredDirection(), sec.direction)
		d.WithMedia(e.mediaLine(sec.kind, sec.mid, direction, t.StreamIDs()))
	}

	return marshalDescription(SDPTypeAnswer, d)
}

// rejectedMediaLine echoes an offered media line back with a zero port,
// which is how an answer declines a line while keeping indices aligned.
func rejectedMediaLine(media *sdp.MediaDescription) *sdp.MediaDescription {
	return &sdp.MediaDescription{
		MediaName: sdp.MediaName{
			Media:   media.MediaName.Media,
			Port:    sdp.RangedPort{Value: 0},
			Protos:  media.MediaName.Protos,
			Formats: media.MediaName.Formats,
		},
	}
}

func (e *SDPEngine) mediaLine(kind MediaKind, mid string, direction Direction, streamIDs []string) *sdp.MediaDescription {
	media := sdp.NewJSEPMediaDescription(kind.String(), []string{}).
		WithValueAttribute(sdp.AttrKeyMID, mid).
		WithPropertyAttribute(sdp.AttrKeyRTCPMux)

	if kind == MediaKindAudio {
		media.WithCodec(0, "PCMU", 8000, 1, "")
	} else {
		media.WithCodec(96, "VP8", 90000, 0, "")
	}

	for _, id := range streamIDs {
		media = media.WithValueAttribute("msid", fmt.Sprintf("%s %s", id, mid))
	}

	return media.WithPropertyAttribute(direction.String())
}

func marshalDescription(sdpType SDPType, d *sdp.SessionDescription) (SessionDescription, error) {
	raw, err := d.Marshal()
	if err != nil {
		return SessionDescription{}, err
	}
	return SessionDescription{Type: sdpType, SDP: string(raw), parsed: d}, nil
}

// SetLocalDescription records the description and completes asynchronously.
func (e *SDPEngine) SetLocalDescription(desc SessionDescription, done func(error)) {
	e.mu.Lock()
	e.localDescription = &desc
	e.mu.Unlock()

	go done(nil)
}

// SetRemoteDescription records the description and completes asynchronously.
func (e *SDPEngine) SetRemoteDescription(desc SessionDescription, done func(error)) {
	err := desc.parse()

	e.mu.Lock()
	if err == nil {
		e.remoteDescription = &desc
	}
	e.mu.Unlock()

	go done(err)
}

// AddICECandidate accepts and discards the candidate; there is no transport
// to feed it to.
func (e *SDPEngine) AddICECandidate(candidate ICECandidateInit) error {
	e.log.Tracef("discarding remote candidate for mline %d", candidate.SDPMLineIndex)
	return nil
}

// OnICEConnectionStateChange registers the engine-event handler.
func (e *SDPEngine) OnICEConnectionStateChange(f func(ICEConnectionState)) {
	e.mu.Lock()
	e.onICEConnectionStateChange = f
	e.mu.Unlock()
}

// OnICEGatheringStateChange registers the engine-event handler.
func (e *SDPEngine) OnICEGatheringStateChange(f func(ICEGatheringState)) {
	e.mu.Lock()
	e.onICEGatheringStateChange = f
	e.mu.Unlock()
}

// OnICECandidate registers the engine-event handler.
func (e *SDPEngine) OnICECandidate(f func(ICECandidateInit)) {
	e.mu.Lock()
	e.onICECandidate = f
	e.mu.Unlock()
}

// SignalICEConnectionState reports a connection state transition upward, as
// a transport-running engine would.
func (e *SDPEngine) SignalICEConnectionState(state ICEConnectionState) {
	e.mu.Lock()
	handler := e.onICEConnectionStateChange
	e.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

// SignalICEGatheringState reports a gathering state transition upward.
func (e *SDPEngine) SignalICEGatheringState(state ICEGatheringState) {
	e.mu.Lock()
	handler := e.onICEGatheringStateChange
	e.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

// SignalICECandidate reports a locally gathered candidate upward.
func (e *SDPEngine) SignalICECandidate(candidate ICECandidateInit) {
	e.mu.Lock()
	handler := e.onICECandidate
	e.mu.Unlock()
	if handler != nil {
		handler(candidate)
	}
}

// SetTrackSink installs the destination for outgoing RTP on a media line.
func (e *SDPEngine) SetTrackSink(mlineIndex int, sink TrackSink) {
	e.mu.Lock()
	e.sinks[mlineIndex] = sink
	e.mu.Unlock()
}

// TrackSink implements TrackSinkProvider.
func (e *SDPEngine) TrackSink(mlineIndex int) TrackSink {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sinks[mlineIndex]
}

// Close implements Engine.
func (e *SDPEngine) Close() error {
	return nil
}

var errUnboundEngine = errors.New("engine is not bound to a connection")
