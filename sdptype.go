package rtcpeer

// SDPType describes the type of a SessionDescription.
type SDPType int

const (
	// SDPTypeOffer indicates an offer description, proposing a set of media
	// lines and directions to the remote peer.
	SDPTypeOffer SDPType = iota + 1

	// SDPTypeAnswer indicates an answer description, the final response that
	// completes an offer/answer exchange.
	SDPTypeAnswer
)

// NewSDPType defines a procedure for creating a new SDPType from a raw
// string naming the session description type.
func NewSDPType(raw string) SDPType {
	switch raw {
	case "offer":
		return SDPTypeOffer
	case "answer":
		return SDPTypeAnswer
	default:
		return SDPType(Unknown)
	}
}

func (t SDPType) String() string {
	switch t {
	case SDPTypeOffer:
		return "offer"
	case SDPTypeAnswer:
		return "answer"
	default:
		return unknownStr
	}
}
