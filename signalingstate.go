package rtcpeer

// SignalingState indicates where the connection is in the offer/answer
// exchange, as seen from the local side.
type SignalingState int

const (
	// SignalingStateStable indicates no offer/answer exchange is in
	// progress. This is also the initial state.
	SignalingStateStable SignalingState = iota + 1

	// SignalingStateHaveLocalOffer indicates a local offer has been applied
	// and the connection is waiting for the remote answer.
	SignalingStateHaveLocalOffer

	// SignalingStateHaveRemoteOffer indicates a remote offer has been
	// applied and the connection should produce an answer.
	SignalingStateHaveRemoteOffer

	// SignalingStateClosed indicates the connection has been closed.
	SignalingStateClosed
)

func (s SignalingState) String() string {
	switch s {
	case SignalingStateStable:
		return "stable"
	case SignalingStateHaveLocalOffer:
		return "have-local-offer"
	case SignalingStateHaveRemoteOffer:
		return "have-remote-offer"
	case SignalingStateClosed:
		return "closed"
	default:
		return unknownStr
	}
}
