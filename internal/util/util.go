// Package util provides small helpers shared by the rtcpeer package.
package util

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

const runesAlpha = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

var (
	seqMu  sync.Mutex
	seqSrc = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandSeq generates a random alphabetical sequence of the requested length.
// Sequential calls never reuse a seed, so generated names stay distinct.
func RandSeq(n int) string {
	seqMu.Lock()
	defer seqMu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = runesAlpha[seqSrc.Intn(len(runesAlpha))]
	}
	return string(b)
}

// IsValidSDPToken reports whether s is a syntactically legal SDP token as
// defined by RFC 4566 section 9: one or more token-char, where token-char is
// an ASCII letter, digit or one of !#$%&'*+-.^_`{|}~. In particular the empty
// string and any string containing whitespace are rejected.
func IsValidSDPToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z',
		c >= 'A' && c <= 'Z',
		c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '{', '|', '}', '~':
		return true
	}
	return false
}

// JoinStreamIDs encodes a list of stream IDs into a single semicolon
// separated string.
func JoinStreamIDs(ids []string) string {
	return strings.Join(ids, ";")
}

// SplitStreamIDs decodes a semicolon separated string into individual stream
// IDs. An empty input yields a nil slice.
func SplitStreamIDs(encoded string) []string {
	if encoded == "" {
		return nil
	}
	return strings.Split(encoded, ";")
}
