package rtcpeer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSDP = "v=0\r\n" +
	"o=- 5228595038118931041 2 IN IP4 127.0.0.1\r\n" +
	"s=-\r\n" +
	"t=0 0\r\n" +
	"m=audio 9 UDP/TLS/RTP/SAVPF 0\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=mid:a1\r\n" +
	"a=msid:stream1 a1\r\n" +
	"a=sendonly\r\n" +
	"m=application 9 DTLS/SCTP 5000\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=mid:d1\r\n" +
	"m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
	"c=IN IP4 0.0.0.0\r\n" +
	"a=rtpmap:96 VP8/90000\r\n" +
	"a=mid:v1\r\n"

func TestSessionDescriptionParse(t *testing.T) {
	desc := SessionDescription{Type: SDPTypeOffer, SDP: minimalSDP}
	require.NoError(t, desc.parse())
	require.NotNil(t, desc.parsed)
}

func TestSessionDescriptionParseMalformed(t *testing.T) {
	desc := SessionDescription{Type: SDPTypeOffer, SDP: "not sdp at all"}
	assert.Error(t, desc.parse())
}

func TestMediaSections(t *testing.T) {
	desc := SessionDescription{Type: SDPTypeOffer, SDP: minimalSDP}
	require.NoError(t, desc.parse())

	sections := desc.mediaSections()
	require.Len(t, sections, 2)

	assert.Equal(t, 0, sections[0].index)
	assert.Equal(t, MediaKindAudio, sections[0].kind)
	assert.Equal(t, "a1", sections[0].mid)
	assert.Equal(t, DirectionSendonly, sections[0].direction)
	assert.Equal(t, []string{"stream1"}, sections[0].streamIDs)

	// The application line consumes index 1 but produces no section.
	assert.Equal(t, 2, sections[1].index)
	assert.Equal(t, MediaKindVideo, sections[1].kind)
	assert.Equal(t, "v1", sections[1].mid)
	assert.Equal(t, DirectionSendrecv, sections[1].direction, "no direction attribute defaults to sendrecv")
	assert.Empty(t, sections[1].streamIDs)
}

func TestMediaSectionsUnparsed(t *testing.T) {
	desc := SessionDescription{Type: SDPTypeOffer, SDP: minimalSDP}
	assert.Nil(t, desc.mediaSections())
}
