package rtcpeer

// MediaKind determines the type of media a Transceiver carries. It is fixed
// for the lifetime of the transceiver.
type MediaKind int

const (
	// MediaKindAudio indicates an audio transceiver or track.
	MediaKindAudio MediaKind = iota + 1

	// MediaKindVideo indicates a video transceiver or track.
	MediaKindVideo
)

// NewMediaKind defines a procedure for creating a new MediaKind from a raw
// string naming the media kind, as it appears in an SDP media line.
func NewMediaKind(raw string) MediaKind {
	switch raw {
	case "audio":
		return MediaKindAudio
	case "video":
		return MediaKindVideo
	default:
		return MediaKind(Unknown)
	}
}

func (k MediaKind) String() string {
	switch k {
	case MediaKindAudio:
		return "audio"
	case MediaKindVideo:
		return "video"
	default:
		return unknownStr
	}
}
