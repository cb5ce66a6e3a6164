package rtcpeer

import (
	"strings"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

// ICEServer describes one STUN or TURN server the engine may use for
// candidate gathering. Username and Credential are only meaningful for TURN.
type ICEServer struct {
	URLs       []string
	Username   string
	Credential string
}

// MarshalICEServers encodes a list of ICE servers in the line-oriented signaling
// convention: blank-line-separated blocks of key:value lines, one block per
// server, with one "url" line per URL plus optional "username" and
// "password" lines.
func MarshalICEServers(servers []ICEServer) string {
	var blocks []string
	for _, s := range servers {
		var b strings.Builder
		for _, u := range s.URLs {
			b.WriteString("url:" + u + "\n")
		}
		if s.Username != "" {
			b.WriteString("username:" + s.Username + "\n")
		}
		if s.Credential != "" {
			b.WriteString("password:" + s.Credential + "\n")
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}

// UnmarshalICEServers decodes a string produced by MarshalICEServers. Lines
// with no key prefix are treated as bare URLs, matching what hand-written
// signaling configs tend to contain.
func UnmarshalICEServers(encoded string) ([]ICEServer, error) {
	var servers []ICEServer
	current := ICEServer{}
	flush := func() {
		if len(current.URLs) > 0 {
			servers = append(servers, current)
		}
		current = ICEServer{}
	}
	for _, line := range strings.Split(encoded, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			flush()
			continue
		}
		key, value, err := splitKeyValue(line)
		if err != nil {
			// Bare URL line.
			current.URLs = append(current.URLs, line)
			continue
		}
		switch key {
		case "url":
			current.URLs = append(current.URLs, value)
		case "username":
			current.Username = value
		case "password":
			current.Credential = value
		case "stun", "stuns", "turn", "turns":
			// A raw "turn:host:port" style URL; the scheme is the key.
			current.URLs = append(current.URLs, line)
		default:
			return nil, &rtcerr.InvalidParameterError{Err: errUnknownServerKey(key)}
		}
	}
	flush()
	return servers, nil
}

type errUnknownServerKey string

func (e errUnknownServerKey) Error() string {
	return "unknown ICE server key " + strings.TrimSpace(string(e))
}
