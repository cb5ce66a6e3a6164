package rtcpeer

// Direction indicates the direction of media flow on a transceiver. The zero
// value DirectionUnset is only ever observed as a negotiated direction, on a
// transceiver that has not completed an offer/answer exchange yet; a desired
// direction is always one of the four concrete values.
type Direction int

const (
	// DirectionUnset indicates the direction has not been negotiated yet.
	DirectionUnset Direction = iota

	// DirectionSendrecv indicates media flows in both directions.
	DirectionSendrecv

	// DirectionSendonly indicates outgoing media only.
	DirectionSendonly

	// DirectionRecvonly indicates incoming media only.
	DirectionRecvonly

	// DirectionInactive indicates no media flows in either direction.
	DirectionInactive
)

// NewDirection defines a procedure for creating a new Direction from a raw
// string naming the direction, as it appears in an SDP attribute.
func NewDirection(raw string) Direction {
	switch raw {
	case "sendrecv":
		return DirectionSendrecv
	case "sendonly":
		return DirectionSendonly
	case "recvonly":
		return DirectionRecvonly
	case "inactive":
		return DirectionInactive
	default:
		return DirectionUnset
	}
}

func (d Direction) String() string {
	switch d {
	case DirectionUnset:
		return "unset"
	case DirectionSendrecv:
		return "sendrecv"
	case DirectionSendonly:
		return "sendonly"
	case DirectionRecvonly:
		return "recvonly"
	case DirectionInactive:
		return "inactive"
	default:
		return unknownStr
	}
}

// Send reports whether the direction allows sending media.
func (d Direction) Send() bool {
	return d == DirectionSendrecv || d == DirectionSendonly
}

// Recv reports whether the direction allows receiving media.
func (d Direction) Recv() bool {
	return d == DirectionSendrecv || d == DirectionRecvonly
}

// directionFromSendRecv builds the four-way direction value from its two
// capability booleans.
func directionFromSendRecv(send, recv bool) Direction {
	switch {
	case send && recv:
		return DirectionSendrecv
	case send:
		return DirectionSendonly
	case recv:
		return DirectionRecvonly
	default:
		return DirectionInactive
	}
}

// intersectDirections computes the negotiated direction of a transceiver
// from the direction the local side desires and the direction the remote
// side advertised in its description. A side can only receive what the other
// sends and vice versa, so the result is never broader than either input:
// negotiated send requires the local side willing to send and the remote
// side willing to receive, and symmetrically for negotiated receive.
func intersectDirections(localDesired, remoteAdvertised Direction) Direction {
	send := localDesired.Send() && remoteAdvertised.Recv()
	recv := localDesired.Recv() && remoteAdvertised.Send()
	return directionFromSendRecv(send, recv)
}
