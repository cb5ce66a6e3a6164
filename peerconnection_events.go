package rtcpeer

type iceStateEvent struct {
	state ICEConnectionState
}

type iceGatheringEvent struct {
	state ICEGatheringState
}

type iceCandidateEvent struct {
	candidate ICECandidateInit
}

type signalingStateEvent struct {
	state SignalingState
}

type terminationEvent struct {
}

func (pc *PeerConnection) handleICEStateTransition(state ICEConnectionState) {
	pc.statesMu.Lock()
	pc.iceConnectionState = state
	pc.statesMu.Unlock()

	pc.handlersMu.Lock()
	handler := pc.onICEConnectionStateChangeHandler
	pc.handlersMu.Unlock()

	if handler != nil {
		handler(state)
	}
}

func (pc *PeerConnection) handleICEGatheringTransition(state ICEGatheringState) {
	pc.statesMu.Lock()
	if state == pc.iceGatheringState {
		pc.statesMu.Unlock()
		return
	}
	pc.iceGatheringState = state
	pc.statesMu.Unlock()

	pc.handlersMu.Lock()
	handler := pc.onICEGatheringStateChangeHandler
	pc.handlersMu.Unlock()

	if handler != nil {
		handler(state)
	}
}

func (pc *PeerConnection) handleSignalingState(state SignalingState) {
	pc.handlersMu.Lock()
	handler := pc.onSignalingStateChangeHandler
	pc.handlersMu.Unlock()

	if handler != nil {
		handler(state)
	}
}

func (pc *PeerConnection) handleICECandidate(candidate ICECandidateInit) {
	pc.handlersMu.Lock()
	handler := pc.onICECandidateHandler
	pc.handlersMu.Unlock()

	if handler != nil {
		handler(candidate)
	}
}

// startEventLoop starts the goroutine that serializes engine-side state
// events. It exits when the connection closes.
func (pc *PeerConnection) startEventLoop() {
	go func() {
		pc.log.Debug("event loop started")

		for {
			untypedEvt := <-pc.events

			switch event := untypedEvt.(type) {
			case iceStateEvent:
				pc.log.Tracef("ICE connection state: %s", event.state)

				pc.handleICEStateTransition(event.state)
			case iceGatheringEvent:
				pc.log.Tracef("ICE gathering state: %s", event.state)

				pc.handleICEGatheringTransition(event.state)
			case iceCandidateEvent:
				pc.log.Tracef("new local ICE candidate for mline %d", event.candidate.SDPMLineIndex)

				pc.handleICECandidate(event.candidate)
			case signalingStateEvent:
				pc.log.Tracef("signaling state changed: %s", event.state)

				pc.handleSignalingState(event.state)
			case terminationEvent:
				pc.log.Debug("event loop terminating")

				return
			default:
				pc.log.Warnf("unknown event type: %v", event)
			}
		}
	}()
}
