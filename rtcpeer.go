// Package rtcpeer exposes peer-connection, media-track and signaling
// primitives on top of a wrapped WebRTC engine. The engine performs the
// actual ICE/DTLS/SRTP work and is consumed as a black box through the
// Engine interface; this package owns the transceiver set, the desired vs.
// negotiated direction state machine, and the renegotiation triggers that
// sit between the application and the engine.
package rtcpeer

// Unknown defines default public constant to use for "enum" like struct
// comparisons when no value was defined.
const Unknown = iota

const unknownStr = "unknown"
