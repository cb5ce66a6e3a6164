package rtcpeer

import (
	"strings"

	"github.com/pion/sdp/v2"
)

// SessionDescription is used to expose local and remote session descriptions.
// The SDP text itself is produced and consumed by the wrapped engine; this
// package only inspects the media sections to track transceiver state.
type SessionDescription struct {
	Type SDPType `json:"type"`
	SDP  string  `json:"sdp"`

	// This will never be initialized by callers, internal use only
	parsed *sdp.SessionDescription
}

func (d *SessionDescription) parse() error {
	parsed := &sdp.SessionDescription{}
	if err := parsed.Unmarshal([]byte(d.SDP)); err != nil {
		return err
	}
	d.parsed = parsed
	return nil
}

// mediaSection is the per-m-line summary the negotiation driver works with:
// the stable line index, the media kind, the mid conveyed by the peer, the
// advertised direction and any associated stream IDs.
type mediaSection struct {
	index     int
	kind      MediaKind
	mid       string
	direction Direction
	streamIDs []string
}

// mediaSections extracts the summary of every audio and video media line, in
// the order they appear in the description. Application (data) lines and
// unknown kinds are skipped but still consume a line index, so indices stay
// aligned with the description.
func (d *SessionDescription) mediaSections() []mediaSection {
	if d.parsed == nil {
		return nil
	}
	var sections []mediaSection
	for i, media := range d.parsed.MediaDescriptions {
		kind := NewMediaKind(media.MediaName.Media)
		if kind == MediaKind(Unknown) {
			continue
		}
		sections = append(sections, mediaSection{
			index:     i,
			kind:      kind,
			mid:       midValue(media),
			direction: mediaDirection(media),
			streamIDs: mediaStreamIDs(media),
		})
	}
	return sections
}

func midValue(media *sdp.MediaDescription) string {
	mid, ok := media.Attribute("mid")
	if !ok {
		return ""
	}
	return mid
}

// mediaDirection returns the direction advertised on a media line. A line
// carrying no direction attribute defaults to sendrecv, per RFC 4566.
func mediaDirection(media *sdp.MediaDescription) Direction {
	for _, attr := range media.Attributes {
		if d := NewDirection(attr.Key); d != DirectionUnset {
			return d
		}
	}
	return DirectionSendrecv
}

// mediaStreamIDs collects the stream IDs from the msid attributes of a media
// line. The msid value is "<stream id> <track id>"; only the stream ID part
// is of interest here.
func mediaStreamIDs(media *sdp.MediaDescription) []string {
	var ids []string
	for _, attr := range media.Attributes {
		if attr.Key != "msid" {
			continue
		}
		fields := strings.Fields(attr.Value)
		if len(fields) > 0 {
			ids = append(ids, fields[0])
		}
	}
	return ids
}
