package rtcpeer

// Engine is the wrapped WebRTC engine: the component that generates and
// consumes SDP text, gathers ICE candidates and runs the actual transports.
// It is consumed as a black box; this package never inspects anything beyond
// the media sections of the descriptions it produces.
//
// SetLocalDescription and SetRemoteDescription are asynchronous: the engine
// invokes done from its own signaling context once the description has been
// applied internally. There is no cancellation of an in-flight application;
// once initiated it runs to completion or failure.
type Engine interface {
	CreateOffer() (SessionDescription, error)
	CreateAnswer() (SessionDescription, error)
	SetLocalDescription(desc SessionDescription, done func(error))
	SetRemoteDescription(desc SessionDescription, done func(error))
	AddICECandidate(candidate ICECandidateInit) error

	// Engine-side events. Each Engine implementation must support one
	// handler per event; the connection registers its own on construction.
	OnICEConnectionStateChange(func(ICEConnectionState))
	OnICEGatheringStateChange(func(ICEGatheringState))
	OnICECandidate(func(ICECandidateInit))

	Close() error
}

// TrackSinkProvider is implemented by engines that can accept outgoing RTP
// per media line. Engines that only handle signaling may omit it; local
// tracks attached to such an engine simply have nowhere to forward to.
type TrackSinkProvider interface {
	TrackSink(mlineIndex int) TrackSink
}
