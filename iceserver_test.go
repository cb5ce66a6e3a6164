package rtcpeer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

func TestUnmarshalICEServers(t *testing.T) {
	encoded := "url:stun:stun.l.google.com:19302\n" +
		"\n" +
		"url:turn:turn.example.com:3478\n" +
		"username:alice\n" +
		"password:secret\n"

	servers, err := UnmarshalICEServers(encoded)
	require.NoError(t, err)
	require.Len(t, servers, 2)

	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, servers[0].URLs)
	assert.Empty(t, servers[0].Username)

	assert.Equal(t, []string{"turn:turn.example.com:3478"}, servers[1].URLs)
	assert.Equal(t, "alice", servers[1].Username)
	assert.Equal(t, "secret", servers[1].Credential)
}

func TestUnmarshalICEServersBareURL(t *testing.T) {
	servers, err := UnmarshalICEServers("stun:stun.example.com:3478\n")
	require.NoError(t, err)
	require.Len(t, servers, 1)
	assert.Equal(t, []string{"stun:stun.example.com:3478"}, servers[0].URLs)
}

func TestUnmarshalICEServersUnknownKey(t *testing.T) {
	_, err := UnmarshalICEServers("url:stun:host\nrealm:example\n")
	require.Error(t, err)
	assert.IsType(t, &rtcerr.InvalidParameterError{}, err)
}

func TestMarshalICEServersRoundTrip(t *testing.T) {
	servers := []ICEServer{
		{URLs: []string{"stun:stun.example.com"}},
		{URLs: []string{"turn:turn.example.com:3478", "turns:turn.example.com:5349"}, Username: "bob", Credential: "pw"},
	}

	decoded, err := UnmarshalICEServers(MarshalICEServers(servers))
	require.NoError(t, err)
	assert.Equal(t, servers, decoded)
}

func TestICECandidateInitRoundTrip(t *testing.T) {
	candidate := ICECandidateInit{
		Candidate:     "candidate:842163049 1 udp 1677729535 1.2.3.4 46154 typ srflx",
		SDPMid:        "a1",
		SDPMLineIndex: 1,
	}

	decoded, err := UnmarshalICECandidateInit(candidate.Marshal())
	require.NoError(t, err)
	assert.Equal(t, candidate, decoded)
}

func TestUnmarshalICECandidateInitMissingCandidate(t *testing.T) {
	_, err := UnmarshalICECandidateInit("sdpMid:0\nsdpMLineIndex:0\n")
	require.Error(t, err)
	assert.IsType(t, &rtcerr.InvalidParameterError{}, err)
}
