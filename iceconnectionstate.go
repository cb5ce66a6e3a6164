package rtcpeer

import (
	"github.com/pion/ice"
)

// ICEConnectionState indicates the state of the engine's ICE connection, as
// reported through the Engine interface. The connectivity work itself
// happens inside the engine; this type only mirrors its progress.
type ICEConnectionState int

const (
	// ICEConnectionStateNew indicates no connectivity checks have run yet.
	ICEConnectionStateNew ICEConnectionState = iota + 1

	// ICEConnectionStateChecking indicates candidate pairs are being tested.
	ICEConnectionStateChecking

	// ICEConnectionStateConnected indicates a usable candidate pair exists.
	ICEConnectionStateConnected

	// ICEConnectionStateCompleted indicates checking finished on all pairs.
	ICEConnectionStateCompleted

	// ICEConnectionStateDisconnected indicates connectivity was lost on at
	// least one transport.
	ICEConnectionStateDisconnected

	// ICEConnectionStateFailed indicates a transport failed permanently.
	ICEConnectionStateFailed

	// ICEConnectionStateClosed indicates the ICE agent has shut down.
	ICEConnectionStateClosed
)

// NewICEConnectionStateFromICE converts a pion/ice agent connection state.
// Engine adapters built on the pion stack report through this.
func NewICEConnectionStateFromICE(state ice.ConnectionState) ICEConnectionState {
	switch state {
	case ice.ConnectionStateNew:
		return ICEConnectionStateNew
	case ice.ConnectionStateChecking:
		return ICEConnectionStateChecking
	case ice.ConnectionStateConnected:
		return ICEConnectionStateConnected
	case ice.ConnectionStateCompleted:
		return ICEConnectionStateCompleted
	case ice.ConnectionStateDisconnected:
		return ICEConnectionStateDisconnected
	case ice.ConnectionStateFailed:
		return ICEConnectionStateFailed
	case ice.ConnectionStateClosed:
		return ICEConnectionStateClosed
	default:
		return ICEConnectionState(Unknown)
	}
}

func (s ICEConnectionState) String() string {
	switch s {
	case ICEConnectionStateNew:
		return "new"
	case ICEConnectionStateChecking:
		return "checking"
	case ICEConnectionStateConnected:
		return "connected"
	case ICEConnectionStateCompleted:
		return "completed"
	case ICEConnectionStateDisconnected:
		return "disconnected"
	case ICEConnectionStateFailed:
		return "failed"
	case ICEConnectionStateClosed:
		return "closed"
	default:
		return unknownStr
	}
}
