package sse

import (
	"strings"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line    string
		kind    Kind
		payload string
	}{
		{"data:{\"msg\":\"hi\"}", KindData, "{\"msg\":\"hi\"}"},
		{"data: {\"msg\":\"hi\"}", KindData, "{\"msg\":\"hi\"}"},
		{"data:[DONE]", KindDone, ""},
		{"data: [DONE]", KindDone, ""},
		{"data:heartbeat-17", KindHeartbeat, "heartbeat-17"},
		{"data:heartbeat", KindHeartbeat, "heartbeat"},
		{"", KindIgnore, ""},
		{"event: message", KindIgnore, ""},
		{": comment", KindIgnore, ""},
	}
	for _, tt := range tests {
		kind, payload := Classify(tt.line)
		if kind != tt.kind {
			t.Errorf("Classify(%q) kind = %d; want %d", tt.line, kind, tt.kind)
		}
		if payload != tt.payload {
			t.Errorf("Classify(%q) payload = %q; want %q", tt.line, payload, tt.payload)
		}
	}
}

func TestFramerSequence(t *testing.T) {
	body := strings.Join([]string{
		"data:heartbeat-1",
		"",
		"data:{\"messageType\":\"plan\"}",
		"ignored noise",
		"data:[DONE]",
		"data:{\"messageType\":\"after-done\"}",
	}, "\n")

	f := NewFramer(strings.NewReader(body))

	var kinds []Kind
	for f.Next() {
		k, _ := f.Line()
		kinds = append(kinds, k)
	}
	if f.Err() != nil {
		t.Fatalf("unexpected error: %v", f.Err())
	}

	want := []Kind{KindHeartbeat, KindData, KindDone}
	if len(kinds) != len(want) {
		t.Fatalf("got %d lines, want %d (%v)", len(kinds), len(want), kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("line %d kind = %d; want %d", i, kinds[i], want[i])
		}
	}
}

func TestFramerStopsAfterDone(t *testing.T) {
	f := NewFramer(strings.NewReader("data:[DONE]\n"))
	if !f.Next() {
		t.Fatal("expected the Done line")
	}
	if k, _ := f.Line(); k != KindDone {
		t.Fatalf("kind = %d; want KindDone", k)
	}
	if f.Next() {
		t.Fatal("Next after Done should be false")
	}
}

func TestFramerLargeLine(t *testing.T) {
	payload := strings.Repeat("x", 200*1024)
	f := NewFramer(strings.NewReader("data:" + payload + "\n"))
	if !f.Next() {
		t.Fatalf("expected one line, err=%v", f.Err())
	}
	if _, got := f.Line(); len(got) != len(payload) {
		t.Fatalf("payload length = %d; want %d", len(got), len(payload))
	}
}
