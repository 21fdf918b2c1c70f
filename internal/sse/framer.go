// Package sse splits an upstream text/event-stream body into classified
// protocol lines. The upstream protocol is one event per line: a "data:"
// prefix, a literal "[DONE]" sentinel for normal end of stream, and
// "heartbeat"-prefixed keep-alive payloads that carry no business data.
package sse

import (
	"bufio"
	"io"
	"strings"
)

// Kind classifies one raw line from the upstream stream.
type Kind int

const (
	// KindIgnore marks lines without a data: prefix; they are dropped.
	KindIgnore Kind = iota
	// KindHeartbeat marks keep-alive payloads; no JSON parse is attempted.
	KindHeartbeat
	// KindDone marks the [DONE] sentinel ending the stream.
	KindDone
	// KindData marks a JSON event payload.
	KindData
)

const (
	dataPrefix      = "data:"
	doneSentinel    = "[DONE]"
	heartbeatPrefix = "heartbeat"
)

// Classify maps one raw line to its protocol meaning and returns the
// payload with the data: prefix (and one optional space) stripped.
func Classify(line string) (Kind, string) {
	if !strings.HasPrefix(line, dataPrefix) {
		return KindIgnore, ""
	}
	payload := strings.TrimPrefix(line, dataPrefix)
	payload = strings.TrimPrefix(payload, " ")
	switch {
	case payload == doneSentinel:
		return KindDone, ""
	case strings.HasPrefix(payload, heartbeatPrefix):
		return KindHeartbeat, payload
	default:
		return KindData, payload
	}
}

// Framer yields classified lines from an upstream stream body. It is a
// forward-only reader; restarting means re-issuing the upstream call.
type Framer struct {
	s       *bufio.Scanner
	kind    Kind
	payload string
}

// NewFramer wraps the body of an upstream streaming response.
func NewFramer(r io.Reader) *Framer {
	s := bufio.NewScanner(r)
	// Single events can carry whole documents; allow lines up to 1 MiB.
	buf := make([]byte, 0, 64*1024)
	s.Buffer(buf, 1024*1024)
	return &Framer{s: s}
}

// Next advances to the next non-ignored line. It returns false when the
// stream is exhausted, the [DONE] sentinel was seen, or a read error
// occurred; Err distinguishes the failure case. The sentinel itself is
// reported once with KindDone before Next starts returning false.
func (f *Framer) Next() bool {
	if f.kind == KindDone {
		return false
	}
	for f.s.Scan() {
		kind, payload := Classify(f.s.Text())
		if kind == KindIgnore {
			continue
		}
		f.kind, f.payload = kind, payload
		return true
	}
	return false
}

// Line returns the classification and payload of the current line.
func (f *Framer) Line() (Kind, string) {
	return f.kind, f.payload
}

// Err reports the first read error encountered, if any.
func (f *Framer) Err() error {
	return f.s.Err()
}
