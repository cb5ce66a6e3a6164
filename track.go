package rtcpeer

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/pion/rtcp"
	"github.com/pion/rtp"
	"github.com/pion/transport/packetio"

	"github.com/driftware/rtcpeer/internal/handle"
	"github.com/driftware/rtcpeer/internal/util"
	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

const (
	rtcpMTU = 1500

	trackIDLength = 16
)

// TrackSink receives the RTP packets a local track produces. The engine (or
// an adapter around it) provides one when a transceiver starts sending.
type TrackSink interface {
	WriteRTP(p *rtp.Packet) error
}

// LocalTrack is an application-owned media source attached to a transceiver.
// The transceiver holds a non-owning association; detaching the track never
// destroys it. A track binds to a single connection the first time it is
// attached and stays bound for its lifetime, but may move freely between
// same-kind transceivers of that connection.
type LocalTrack struct {
	mu sync.RWMutex

	id      string
	name    string
	kind    MediaKind
	enabled bool

	conn *PeerConnection
	sink TrackSink

	// negotiatedSend mirrors the owning transceiver's negotiated direction;
	// packets are dropped rather than forwarded when the last negotiation
	// did not allow sending.
	negotiatedSend bool

	rtcpBuf *packetio.Buffer
}

// NewLocalTrack creates a local track of the given kind. The name is
// optional, human readable and carries no protocol meaning.
func NewLocalTrack(kind MediaKind, name string) (*LocalTrack, error) {
	if kind != MediaKindAudio && kind != MediaKindVideo {
		return nil, &rtcerr.InvalidParameterError{Err: fmt.Errorf("unknown media kind %d", kind)}
	}
	return &LocalTrack{
		id:      util.RandSeq(trackIDLength),
		name:    name,
		kind:    kind,
		enabled: true,
		rtcpBuf: packetio.NewBuffer(),
	}, nil
}

// ID returns the track's generated identifier.
func (t *LocalTrack) ID() string { return t.id }

// Name returns the optional human-readable name.
func (t *LocalTrack) Name() string { return t.name }

// Kind returns the track's media kind.
func (t *LocalTrack) Kind() MediaKind { return t.kind }

// Enabled reports whether the track is currently producing media.
func (t *LocalTrack) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled mutes or unmutes the track. This is a local switch and does not
// require renegotiation.
func (t *LocalTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

// WriteRTP forwards one packet towards the engine. The packet is silently
// dropped when the track is muted, not attached to a sending transceiver, or
// sending was not negotiated; producing media while not sending is not an
// error, it is just not on the wire.
func (t *LocalTrack) WriteRTP(p *rtp.Packet) error {
	t.mu.RLock()
	sink, enabled, send := t.sink, t.enabled, t.negotiatedSend
	t.mu.RUnlock()
	if sink == nil || !enabled || !send {
		return nil
	}
	return sink.WriteRTP(p)
}

// ReadRTCP reads a batch of RTCP packets the engine delivered for this
// sender, blocking until feedback arrives.
func (t *LocalTrack) ReadRTCP() ([]rtcp.Packet, error) {
	buf := make([]byte, rtcpMTU)
	n, err := t.rtcpBuf.Read(buf)
	if err != nil {
		return nil, err
	}
	return rtcp.Unmarshal(buf[:n])
}

// DeliverRTCP hands sender feedback from the engine to the track. It is
// called by engine adapters, not by applications.
func (t *LocalTrack) DeliverRTCP(raw []byte) error {
	_, err := t.rtcpBuf.Write(raw)
	return err
}

// bindConnection associates the track with its first (and only) connection.
func (t *LocalTrack) bindConnection(pc *PeerConnection) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.conn != nil && t.conn != pc {
		return &rtcerr.InvalidOperationError{Err: errors.New("track already associated with another connection")}
	}
	t.conn = pc
	return nil
}

func (t *LocalTrack) setSink(sink TrackSink) {
	t.mu.Lock()
	t.sink = sink
	t.mu.Unlock()
}

func (t *LocalTrack) setNegotiatedSend(send bool) {
	t.mu.Lock()
	t.negotiatedSend = send
	t.mu.Unlock()
}

// RemoteTrack is a media track created and owned by the connection when a
// negotiation starts delivering media on a transceiver. Applications receive
// a counted reference through the remote-track-added event and must release
// it when done; the connection frees the track when a renegotiation removes
// it and the last reference is gone.
type RemoteTrack struct {
	mu sync.RWMutex

	id        string
	kind      MediaKind
	streamIDs []string
	enabled   bool
	closed    bool

	buffer *packetio.Buffer

	// Reference counting. The connection holds the initial reference; the
	// application receives counted references through events and releases
	// them when done. The slot store detects use of a released handle.
	store  *handle.Store
	handle handle.Handle
}

func newRemoteTrack(kind MediaKind, streamIDs []string) *RemoteTrack {
	return &RemoteTrack{
		id:        util.RandSeq(trackIDLength),
		kind:      kind,
		streamIDs: streamIDs,
		enabled:   true,
		buffer:    packetio.NewBuffer(),
	}
}

// ID returns the track's generated identifier.
func (t *RemoteTrack) ID() string { return t.id }

// Kind returns the track's media kind.
func (t *RemoteTrack) Kind() MediaKind { return t.kind }

// StreamIDs returns the stream IDs the remote peer associated with the
// track's media line.
func (t *RemoteTrack) StreamIDs() []string { return t.streamIDs }

// Enabled reports whether the application wants the incoming media surfaced.
func (t *RemoteTrack) Enabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// SetEnabled toggles output of the incoming media. Like the local mute
// switch this is purely local and requires no renegotiation.
func (t *RemoteTrack) SetEnabled(enabled bool) {
	t.mu.Lock()
	t.enabled = enabled
	t.mu.Unlock()
}

// Read reads raw RTP payloads delivered by the engine.
func (t *RemoteTrack) Read(b []byte) (int, error) {
	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return 0, io.EOF
	}
	return t.buffer.Read(b)
}

// ReadRTP reads the next RTP packet delivered by the engine.
func (t *RemoteTrack) ReadRTP() (*rtp.Packet, error) {
	b := make([]byte, rtcpMTU)
	n, err := t.Read(b)
	if err != nil {
		return nil, err
	}
	p := &rtp.Packet{}
	if err := p.Unmarshal(b[:n]); err != nil {
		return nil, err
	}
	return p, nil
}

// DeliverRTP hands one incoming packet from the engine to the track. It is
// called by engine adapters, not by applications. Packets arriving while the
// track is disabled are dropped.
func (t *RemoteTrack) DeliverRTP(raw []byte) error {
	t.mu.RLock()
	enabled, closed := t.enabled, t.closed
	t.mu.RUnlock()
	if closed {
		return io.ErrClosedPipe
	}
	if !enabled {
		return nil
	}
	_, err := t.buffer.Write(raw)
	return err
}

// AddRef takes an additional reference on the track. The application must
// pair every AddRef, and every counted reference received through an event,
// with a Release.
func (t *RemoteTrack) AddRef() error {
	if t == nil || t.store == nil {
		return &rtcerr.InvalidHandleError{Err: handle.ErrNil}
	}
	if err := t.store.AddRef(t.handle); err != nil {
		return &rtcerr.InvalidHandleError{Err: err}
	}
	return nil
}

// Release drops one reference. The track is destroyed when the last
// reference is gone; the connection may drop its own on renegotiated
// removal, so the application must never assume it controls the track's
// lifetime.
func (t *RemoteTrack) Release() error {
	if t == nil || t.store == nil {
		return &rtcerr.InvalidHandleError{Err: handle.ErrNil}
	}
	last, err := t.store.Release(t.handle)
	if err != nil {
		return &rtcerr.InvalidHandleError{Err: err}
	}
	if last != nil {
		t.close()
	}
	return nil
}

// close shuts the track down once the connection removes it and the last
// application reference is released.
func (t *RemoteTrack) close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()
	_ = t.buffer.Close()
}
