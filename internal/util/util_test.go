package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRandSeq(t *testing.T) {
	first := RandSeq(16)
	second := RandSeq(16)
	assert.Len(t, first, 16)
	assert.Len(t, second, 16)
	assert.NotEqual(t, first, second)
	assert.True(t, IsValidSDPToken(first))
}

func TestIsValidSDPToken(t *testing.T) {
	testCases := []struct {
		token string
		valid bool
	}{
		{"a1", true},
		{"audio_track", true},
		{"mic-1.left", true},
		{"A!#$%&'*+^`{|}~", true},
		{"", false},
		{"has space", false},
		{" leading", false},
		{"trailing ", false},
		{"tabbed\ttoken", false},
		{"semi;colon", false},
		{"sla/sh", false},
		{"col:on", false},
		{"non-ascii-é", false},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.valid, IsValidSDPToken(tc.token), "token %q", tc.token)
	}
}

func TestStreamIDCodec(t *testing.T) {
	ids := []string{"local_av", "screen"}
	assert.Equal(t, "local_av;screen", JoinStreamIDs(ids))
	assert.Equal(t, ids, SplitStreamIDs("local_av;screen"))

	assert.Equal(t, []string{"one"}, SplitStreamIDs("one"))
	assert.Nil(t, SplitStreamIDs(""))
	assert.Equal(t, "", JoinStreamIDs(nil))
}
