package rtcpeer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDirection(t *testing.T) {
	testCases := []struct {
		raw      string
		expected Direction
	}{
		{"sendrecv", DirectionSendrecv},
		{"sendonly", DirectionSendonly},
		{"recvonly", DirectionRecvonly},
		{"inactive", DirectionInactive},
		{"bogus", DirectionUnset},
		{"", DirectionUnset},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, NewDirection(tc.raw), "raw %q", tc.raw)
	}
}

func TestDirectionString(t *testing.T) {
	assert.Equal(t, "sendrecv", DirectionSendrecv.String())
	assert.Equal(t, "sendonly", DirectionSendonly.String())
	assert.Equal(t, "recvonly", DirectionRecvonly.String())
	assert.Equal(t, "inactive", DirectionInactive.String())
	assert.Equal(t, "unset", DirectionUnset.String())
	assert.Equal(t, unknownStr, Direction(42).String())
}

func TestDirectionCapabilities(t *testing.T) {
	assert.True(t, DirectionSendrecv.Send())
	assert.True(t, DirectionSendrecv.Recv())
	assert.True(t, DirectionSendonly.Send())
	assert.False(t, DirectionSendonly.Recv())
	assert.False(t, DirectionRecvonly.Send())
	assert.True(t, DirectionRecvonly.Recv())
	assert.False(t, DirectionInactive.Send())
	assert.False(t, DirectionInactive.Recv())
}

func TestIntersectDirections(t *testing.T) {
	testCases := []struct {
		desired    Direction
		advertised Direction
		expected   Direction
	}{
		{DirectionSendrecv, DirectionSendrecv, DirectionSendrecv},
		{DirectionSendrecv, DirectionSendonly, DirectionRecvonly},
		{DirectionSendrecv, DirectionRecvonly, DirectionSendonly},
		{DirectionSendrecv, DirectionInactive, DirectionInactive},
		{DirectionSendonly, DirectionSendrecv, DirectionSendonly},
		{DirectionSendonly, DirectionSendonly, DirectionInactive},
		{DirectionRecvonly, DirectionSendrecv, DirectionRecvonly},
		{DirectionRecvonly, DirectionRecvonly, DirectionInactive},
		{DirectionInactive, DirectionSendrecv, DirectionInactive},
		{DirectionInactive, DirectionInactive, DirectionInactive},
	}

	for _, tc := range testCases {
		got := intersectDirections(tc.desired, tc.advertised)
		assert.Equal(t, tc.expected, got, "desired %s advertised %s", tc.desired, tc.advertised)
	}
}

func TestNewMediaKind(t *testing.T) {
	assert.Equal(t, MediaKindAudio, NewMediaKind("audio"))
	assert.Equal(t, MediaKindVideo, NewMediaKind("video"))
	assert.Equal(t, MediaKind(Unknown), NewMediaKind("application"))
}
