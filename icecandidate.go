package rtcpeer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/driftware/rtcpeer/pkg/rtcerr"
)

// ICECandidateInit carries one ICE candidate from the signaling layer to the
// engine: the candidate line itself, the mid of the media section it belongs
// to, and the index of that section.
type ICECandidateInit struct {
	Candidate     string `json:"candidate"`
	SDPMid        string `json:"sdpMid"`
	SDPMLineIndex int    `json:"sdpMLineIndex"`
}

// Marshal encodes the candidate in the line-oriented signaling convention:
// one key:value pair per line.
func (c ICECandidateInit) Marshal() string {
	var b strings.Builder
	b.WriteString("candidate:" + c.Candidate + "\n")
	b.WriteString("sdpMid:" + c.SDPMid + "\n")
	b.WriteString("sdpMLineIndex:" + strconv.Itoa(c.SDPMLineIndex) + "\n")
	return b.String()
}

// UnmarshalICECandidateInit decodes a candidate block produced by Marshal.
func UnmarshalICECandidateInit(encoded string) (ICECandidateInit, error) {
	var c ICECandidateInit
	seen := false
	for _, line := range strings.Split(encoded, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, err := splitKeyValue(line)
		if err != nil {
			return ICECandidateInit{}, &rtcerr.InvalidParameterError{Err: err}
		}
		switch key {
		case "candidate":
			c.Candidate = value
			seen = true
		case "sdpMid":
			c.SDPMid = value
		case "sdpMLineIndex":
			idx, err := strconv.Atoi(value)
			if err != nil {
				return ICECandidateInit{}, &rtcerr.InvalidParameterError{Err: fmt.Errorf("bad sdpMLineIndex %q", value)}
			}
			c.SDPMLineIndex = idx
		}
	}
	if !seen {
		return ICECandidateInit{}, &rtcerr.InvalidParameterError{Err: errors.New("missing candidate line")}
	}
	return c, nil
}

func splitKeyValue(line string) (key, value string, err error) {
	idx := strings.Index(line, ":")
	if idx < 1 {
		return "", "", fmt.Errorf("malformed line %q", line)
	}
	return line[:idx], line[idx+1:], nil
}
