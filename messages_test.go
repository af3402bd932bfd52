package ircmux

import (
	"testing"
)

func TestMarshalMessage(t *testing.T) {
	tests := []struct {
		message  Message
		expected string
	}{
		{
			JoinMessage{ConnectionID: 2},
			`{"type":"join","connectionId":2}`,
		},
		{
			NamesMessage{ConnectionID: 0, Channel: "#go", Nicks: []Member{{Nick: "bob", Mode: "@"}}},
			`{"type":"names","connectionId":0,"channel":"#go","nicks":[{"nick":"bob","mode":"@"}]}`,
		},
		{
			ModeMessage{ConnectionID: 1, Added: true, Channel: "#go", By: "bob", Mode: "v", Argument: "carol"},
			`{"type":"modeAdded","connectionId":1,"channel":"#go","by":"bob","mode":"v","argument":"carol"}`,
		},
		{
			ModeMessage{ConnectionID: 1, Channel: "#go", By: "bob", Mode: "m"},
			`{"type":"modeRemoved","connectionId":1,"channel":"#go","by":"bob","mode":"m","argument":""}`,
		},
		{
			KeyMessage{Key: "ArrowUp", CtrlKey: true},
			`{"type":"key","key":"ArrowUp","altKey":false,"ctrlKey":true,"metaKey":false}`,
		},
		{
			ChatMessage{ConnectionID: 0, Nick: "bob", To: "#go", Text: "\"hi\""},
			`{"type":"message","connectionId":0,"nick":"bob","to":"#go","text":"\"hi\""}`,
		},
	}

	for _, test := range tests {
		data, err := MarshalMessage(test.message)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", test.message.Kind(), err)
			continue
		}
		if string(data) != test.expected {
			t.Errorf("expected %s, got %s", test.expected, data)
		}
	}
}

func TestMessageConnection(t *testing.T) {
	if id, ok := MessageConnection(WhoisMessage{ConnectionID: 4}); !ok || id != 4 {
		t.Errorf("expected (4, true), got (%d, %t)", id, ok)
	}
	if _, ok := MessageConnection(KeyMessage{Key: "a"}); ok {
		t.Errorf("expected key messages to belong to no connection")
	}
}
