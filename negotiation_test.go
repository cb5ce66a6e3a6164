package rtcpeer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func remoteOffer(mlines ...string) SessionDescription {
	sdp := "v=0\r\n" +
		"o=- 1 2 IN IP4 127.0.0.1\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n"
	for _, m := range mlines {
		sdp += m
	}
	return SessionDescription{Type: SDPTypeOffer, SDP: sdp}
}

func audioLine(mid, direction string) string {
	return "m=audio 9 UDP/TLS/RTP/SAVPF 0\r\n" +
		"c=IN IP4 0.0.0.0\r\n" +
		"a=mid:" + mid + "\r\n" +
		"a=" + direction + "\r\n"
}

func videoLine(mid, direction string) string {
	return "m=video 9 UDP/TLS/RTP/SAVPF 96\r\n" +
		"c=IN IP4 0.0.0.0\r\n" +
		"a=rtpmap:96 VP8/90000\r\n" +
		"a=mid:" + mid + "\r\n" +
		"a=" + direction + "\r\n"
}

func TestRemoteOfferMatchesByName(t *testing.T) {
	pc, _ := newTestPeer(t)
	defer func() { _ = pc.Close() }()

	tr, err := pc.AddTransceiver(MediaKindAudio, &TransceiverInit{Name: "mic"})
	require.NoError(t, err)

	created := 0
	pc.OnTransceiverAdded(func(*Transceiver) { created++ })

	require.NoError(t, pc.SetRemoteDescription(remoteOffer(audioLine("mic", "sendrecv"))))

	assert.Equal(t, 0, created, "the offered line matched the existing transceiver")
	assert.Equal(t, 1, len(pc.GetTransceivers()))
	assert.Same(t, tr, pc.GetTransceivers()[0])
}

func TestRemoteOfferMatchesByOrdinal(t *testing.T) {
	pc, _ := newTestPeer(t)
	defer func() { _ = pc.Close() }()

	audio, err := pc.AddTransceiver(MediaKindAudio, &TransceiverInit{Name: "mic"})
	require.NoError(t, err)
	video, err := pc.AddTransceiver(MediaKindVideo, &TransceiverInit{Name: "cam"})
	require.NoError(t, err)

	created := 0
	pc.OnTransceiverAdded(func(*Transceiver) { created++ })

	// Remote mids don't match any local names, so lines pair up with the
	// unmatched transceivers of the same kind, in order.
	offer := remoteOffer(audioLine("0", "sendonly"), videoLine("1", "recvonly"))
	require.NoError(t, pc.SetRemoteDescription(offer))
	assert.Equal(t, 0, created)

	answer, err := pc.CreateAnswer()
	require.NoError(t, err)
	require.NoError(t, pc.SetLocalDescription(answer))

	assert.Equal(t, DirectionRecvonly, audio.NegotiatedDirection())
	assert.Equal(t, DirectionSendonly, video.NegotiatedDirection())
}

func TestRemoteOfferCreatesMissingTransceivers(t *testing.T) {
	pc, _ := newTestPeer(t)
	defer func() { _ = pc.Close() }()

	renegotiation := 0
	pc.OnRenegotiationNeeded(func() { renegotiation++ })

	var created []*Transceiver
	pc.OnTransceiverAdded(func(tr *Transceiver) { created = append(created, tr) })

	offer := remoteOffer(audioLine("a1", "sendonly"), videoLine("v1", "inactive"))
	require.NoError(t, pc.SetRemoteDescription(offer))

	require.Len(t, created, 2)

	assert.Equal(t, "a1", created[0].Name())
	assert.Equal(t, MediaKindAudio, created[0].Kind())
	assert.Equal(t, 0, created[0].MlineIndex())
	assert.Equal(t, DirectionRecvonly, created[0].DesiredDirection(), "remote sends, so we want to receive")

	assert.Equal(t, "v1", created[1].Name())
	assert.Equal(t, MediaKindVideo, created[1].Kind())
	assert.Equal(t, 1, created[1].MlineIndex())
	assert.Equal(t, DirectionInactive, created[1].DesiredDirection(), "remote sends nothing, so nothing to receive")

	assert.Equal(t, 0, renegotiation, "remote-driven creation needs no renegotiation")
}

func TestRemoteOfferInvalidMidGetsGeneratedName(t *testing.T) {
	pc, _ := newTestPeer(t)
	defer func() { _ = pc.Close() }()

	var created *Transceiver
	pc.OnTransceiverAdded(func(tr *Transceiver) { created = tr })

	// "mid:0 1" is not a legal token; pion's parser keeps the full value.
	require.NoError(t, pc.SetRemoteDescription(remoteOffer(audioLine("0 1", "sendrecv"))))

	require.NotNil(t, created)
	assert.NotEqual(t, "0 1", created.Name())
	assert.Len(t, created.Name(), generatedNameLength)
}

func TestRemoteAnswerRecomputesAllTransceivers(t *testing.T) {
	pc, _ := newTestPeer(t)
	defer func() { _ = pc.Close() }()

	audio, err := pc.AddTransceiver(MediaKindAudio, &TransceiverInit{Name: "a1"})
	require.NoError(t, err)
	video, err := pc.AddTransceiver(MediaKindVideo, &TransceiverInit{Name: "v1", Direction: DirectionSendonly})
	require.NoError(t, err)

	offer, err := pc.CreateOffer()
	require.NoError(t, err)
	require.NoError(t, pc.SetLocalDescription(offer))

	answer := SessionDescription{
		Type: SDPTypeAnswer,
		SDP: remoteOffer(
			audioLine("a1", "sendonly"),
			videoLine("v1", "recvonly"),
		).SDP,
	}
	require.NoError(t, pc.SetRemoteDescription(answer))

	assert.Equal(t, SignalingStateStable, pc.SignalingState())
	assert.Equal(t, DirectionRecvonly, audio.NegotiatedDirection())
	assert.Equal(t, DirectionSendonly, video.NegotiatedDirection())
}

func TestRemoteAnswerDoesNotCreateTransceivers(t *testing.T) {
	pc, _ := newTestPeer(t)
	defer func() { _ = pc.Close() }()

	audio, err := pc.AddTransceiver(MediaKindAudio, &TransceiverInit{Name: "a1"})
	require.NoError(t, err)

	offer, err := pc.CreateOffer()
	require.NoError(t, err)
	require.NoError(t, pc.SetLocalDescription(offer))

	created := 0
	pc.OnTransceiverAdded(func(*Transceiver) { created++ })

	// An answer can only reference lines our offer carried; the extra video
	// line is a remote fault and must not grow the transceiver set.
	answer := SessionDescription{
		Type: SDPTypeAnswer,
		SDP:  remoteOffer(audioLine("a1", "sendonly"), videoLine("v1", "sendrecv")).SDP,
	}
	require.NoError(t, pc.SetRemoteDescription(answer))

	assert.Equal(t, 0, created)
	assert.Equal(t, 1, len(pc.GetTransceivers()))
	assert.Equal(t, SignalingStateStable, pc.SignalingState())
	assert.Equal(t, DirectionRecvonly, audio.NegotiatedDirection())
}

func TestRemoteOfferStreamIDsAdoptedOnMatch(t *testing.T) {
	pc, _ := newTestPeer(t)
	defer func() { _ = pc.Close() }()

	tr, err := pc.AddTransceiver(MediaKindAudio, &TransceiverInit{Name: "a1"})
	require.NoError(t, err)

	line := "m=audio 9 UDP/TLS/RTP/SAVPF 0\r\n" +
		"c=IN IP4 0.0.0.0\r\n" +
		"a=mid:a1\r\n" +
		"a=msid:speaker a1\r\n" +
		"a=sendonly\r\n"
	require.NoError(t, pc.SetRemoteDescription(remoteOffer(line)))

	assert.Equal(t, []string{"speaker"}, tr.StreamIDs())
}
