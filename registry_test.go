package rtcpeer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

func TestRegistryAssignsDenseIndices(t *testing.T) {
	r := &transceiverRegistry{}

	first := &Transceiver{name: "a1", kind: MediaKindAudio}
	second := &Transceiver{name: "v1", kind: MediaKindVideo}

	assert.Equal(t, 0, r.add(first))
	assert.Equal(t, 1, r.add(second))
	assert.Equal(t, 0, first.mlineIndex)
	assert.Equal(t, 1, second.mlineIndex)
	assert.Equal(t, 2, r.len())
}

func TestRegistryByIndex(t *testing.T) {
	r := &transceiverRegistry{}
	tr := &Transceiver{name: "a1", kind: MediaKindAudio}
	r.add(tr)

	got, err := r.byIndex(0)
	require.NoError(t, err)
	assert.Same(t, tr, got)

	_, err = r.byIndex(1)
	require.Error(t, err)
	assert.IsType(t, &rtcerr.OutOfRangeError{}, err)

	_, err = r.byIndex(-1)
	require.Error(t, err)
	assert.IsType(t, &rtcerr.OutOfRangeError{}, err)
}

func TestRegistryAllPreservesOrder(t *testing.T) {
	r := &transceiverRegistry{}
	first := &Transceiver{name: "a1", kind: MediaKindAudio}
	second := &Transceiver{name: "a2", kind: MediaKindAudio}
	r.add(first)
	r.add(second)

	all := r.all()
	require.Len(t, all, 2)
	assert.Same(t, first, all[0])
	assert.Same(t, second, all[1])

	// The snapshot is detached from the registry.
	all[0] = nil
	got, err := r.byIndex(0)
	require.NoError(t, err)
	assert.Same(t, first, got)
}
