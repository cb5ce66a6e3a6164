package rtcpeer

import (
	"testing"

	"github.com/pion/rtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

type capturingSink struct {
	packets []*rtp.Packet
}

func (s *capturingSink) WriteRTP(p *rtp.Packet) error {
	s.packets = append(s.packets, p)
	return nil
}

func TestNewLocalTrackValidation(t *testing.T) {
	_, err := NewLocalTrack(MediaKind(Unknown), "x")
	require.Error(t, err)
	assert.IsType(t, &rtcerr.InvalidParameterError{}, err)

	track, err := NewLocalTrack(MediaKindAudio, "mic")
	require.NoError(t, err)
	assert.Equal(t, MediaKindAudio, track.Kind())
	assert.Equal(t, "mic", track.Name())
	assert.Len(t, track.ID(), trackIDLength)
	assert.True(t, track.Enabled())
}

func TestLocalTrackWriteGating(t *testing.T) {
	track, err := NewLocalTrack(MediaKindAudio, "mic")
	require.NoError(t, err)

	sink := &capturingSink{}
	packet := &rtp.Packet{Header: rtp.Header{SequenceNumber: 1}}

	// No sink: dropped, not an error.
	require.NoError(t, track.WriteRTP(packet))

	track.setSink(sink)

	// Sending not negotiated yet: still dropped.
	require.NoError(t, track.WriteRTP(packet))
	assert.Empty(t, sink.packets)

	track.setNegotiatedSend(true)
	require.NoError(t, track.WriteRTP(packet))
	assert.Len(t, sink.packets, 1)

	// Muted: dropped without touching the negotiated state.
	track.SetEnabled(false)
	require.NoError(t, track.WriteRTP(packet))
	assert.Len(t, sink.packets, 1)

	track.SetEnabled(true)
	require.NoError(t, track.WriteRTP(packet))
	assert.Len(t, sink.packets, 2)
}

func TestRemoteTrackDeliverAndRead(t *testing.T) {
	track := newRemoteTrack(MediaKindVideo, []string{"cam"})

	sent := &rtp.Packet{
		Header:  rtp.Header{Version: 2, SequenceNumber: 7, Timestamp: 90000, SSRC: 42, PayloadType: 96},
		Payload: []byte{0xde, 0xad},
	}
	raw, err := sent.Marshal()
	require.NoError(t, err)
	require.NoError(t, track.DeliverRTP(raw))

	got, err := track.ReadRTP()
	require.NoError(t, err)
	assert.Equal(t, uint16(7), got.SequenceNumber)
	assert.Equal(t, []byte{0xde, 0xad}, got.Payload)
}

func TestRemoteTrackDisabledDropsPackets(t *testing.T) {
	track := newRemoteTrack(MediaKindAudio, nil)
	track.SetEnabled(false)

	require.NoError(t, track.DeliverRTP([]byte{0x80, 0x00}))
	track.SetEnabled(true)

	sent := &rtp.Packet{Header: rtp.Header{Version: 2, SequenceNumber: 9}}
	raw, err := sent.Marshal()
	require.NoError(t, err)
	require.NoError(t, track.DeliverRTP(raw))

	got, err := track.ReadRTP()
	require.NoError(t, err)
	assert.Equal(t, uint16(9), got.SequenceNumber, "the packet delivered while disabled was dropped")
}

func TestRemoteTrackRefCountingWithoutStore(t *testing.T) {
	track := newRemoteTrack(MediaKindAudio, nil)

	assert.IsType(t, &rtcerr.InvalidHandleError{}, track.AddRef())
	assert.IsType(t, &rtcerr.InvalidHandleError{}, track.Release())
}
