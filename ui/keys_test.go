package ui

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

type fakeElement struct {
	handler func(ev *tcell.EventKey) bool
}

func (el *fakeElement) SetKeyHandler(fn func(ev *tcell.EventKey) bool) {
	el.handler = fn
}

type captureTest struct {
	elements map[string]Element
	lookups  int
	keys     []KeyEvent
	capture  *KeyCapture
}

func newCaptureTest() *captureTest {
	ct := &captureTest{elements: map[string]Element{}}
	ct.capture = NewKeyCapture(func(id string) (Element, bool) {
		ct.lookups++
		el, ok := ct.elements[id]
		return el, ok
	}, func(ev KeyEvent) {
		ct.keys = append(ct.keys, ev)
	})
	return ct
}

func key(k tcell.Key, mods tcell.ModMask) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, mods)
}

func TestKeyCapturePolling(t *testing.T) {
	ct := newCaptureTest()

	if ct.capture.State() != CapturePolling {
		t.Fatalf("expected polling state")
	}
	if ct.capture.Tick() {
		t.Errorf("expected no binding without a chat input")
	}

	if !ct.capture.HandleGlobal(key(tcell.KeyTab, tcell.ModAlt)) {
		t.Errorf("expected Tab to be consumed")
	}
	if !ct.capture.HandleGlobal(key(tcell.KeyEnter, tcell.ModNone)) {
		t.Errorf("expected Enter to be consumed")
	}
	if ct.capture.HandleGlobal(tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone)) {
		t.Errorf("expected other keys to go through")
	}

	expected := []KeyEvent{
		{Key: "Tab", AltKey: true},
		{Key: "Enter"},
	}
	if len(ct.keys) != len(expected) {
		t.Fatalf("expected %d key events, got %d", len(expected), len(ct.keys))
	}
	for i := range expected {
		if ct.keys[i] != expected[i] {
			t.Errorf("key #%d: expected %+v, got %+v", i, expected[i], ct.keys[i])
		}
	}
}

func TestKeyCaptureBinding(t *testing.T) {
	ct := newCaptureTest()
	ct.capture.Tick()

	input := &fakeElement{}
	ct.elements[ChatInput] = input
	if !ct.capture.Tick() {
		t.Fatalf("expected binding once the chat input exists")
	}
	if ct.capture.State() != CaptureBound {
		t.Errorf("expected bound state")
	}
	if input.handler == nil {
		t.Fatalf("expected a handler on the chat input")
	}

	lookups := ct.lookups
	ct.capture.Tick()
	if ct.lookups != lookups {
		t.Errorf("expected polling to stop once bound")
	}

	if ct.capture.HandleGlobal(key(tcell.KeyTab, tcell.ModNone)) {
		t.Errorf("expected the global listener to be inactive once bound")
	}
	if !input.handler(key(tcell.KeyTab, tcell.ModCtrl)) {
		t.Errorf("expected the chat input handler to consume Tab")
	}
	if input.handler(key(tcell.KeyBackspace2, tcell.ModNone)) {
		t.Errorf("expected the chat input handler to let Backspace through")
	}
	if len(ct.keys) != 1 || ct.keys[0] != (KeyEvent{Key: "Tab", CtrlKey: true}) {
		t.Errorf("expected one Tab event, got %+v", ct.keys)
	}
}

func TestUICapture(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	var keys []KeyEvent
	ui, err := NewWithScreen(screen, Config{
		PollInterval: time.Hour,
		Keys: func(ev KeyEvent) {
			keys = append(keys, ev)
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer ui.Close()

	ui.TickCapture()
	if ui.Capture() != CapturePolling {
		t.Errorf("expected polling before the chat input is drawn")
	}
	if !ui.HandleKey(key(tcell.KeyEnter, tcell.ModNone)) {
		t.Errorf("expected Enter to be captured while polling")
	}

	ui.Draw()
	ui.TickCapture()
	if ui.Capture() != CaptureBound {
		t.Errorf("expected binding once the chat input is drawn")
	}
	if !ui.HandleKey(key(tcell.KeyTab, tcell.ModNone)) {
		t.Errorf("expected Tab to be captured once bound")
	}
	if ui.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)) {
		t.Errorf("expected runes to reach the editor")
	}

	if len(keys) != 2 || keys[0].Key != "Enter" || keys[1].Key != "Tab" {
		t.Errorf("expected Enter then Tab, got %+v", keys)
	}
}
