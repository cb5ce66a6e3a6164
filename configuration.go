package rtcpeer

import (
	"github.com/pion/logging"
)

// Configuration defines how a PeerConnection is set up.
type Configuration struct {
	// ICEServers holds the STUN/TURN servers forwarded to the engine for
	// candidate gathering.
	ICEServers []ICEServer

	// LoggerFactory customizes logging. Defaults to pion's default factory.
	LoggerFactory logging.LoggerFactory
}
