package ui

import (
	"github.com/gdamore/tcell/v2"
)

// ChatInput is the name of the element KeyCapture binds to.
const ChatInput = "chatinput"

// Element is a widget that receives key events.
type Element interface {
	// SetKeyHandler installs fn in front of the element's own key
	// handling. Events for which fn returns true go no further.
	SetKeyHandler(fn func(ev *tcell.EventKey) bool)
}

// KeyEvent is a key press taken away from the chat input.
type KeyEvent struct {
	Key     string
	AltKey  bool
	CtrlKey bool
	MetaKey bool
}

type CaptureState int

const (
	// CapturePolling means the chat input has not been found yet. Keys
	// are captured by a global listener in the meantime.
	CapturePolling CaptureState = iota
	// CaptureBound means keys are captured by the chat input's handler.
	CaptureBound
)

var capturedKeys = map[tcell.Key]string{
	tcell.KeyTab:   "Tab",
	tcell.KeyEnter: "Enter",
}

// KeyCapture takes Tab and Enter presses away from the chat input and
// forwards them. Tab would otherwise move the focus; Enter would submit.
type KeyCapture struct {
	lookup  func(id string) (Element, bool)
	forward func(KeyEvent)
	state   CaptureState
}

func NewKeyCapture(lookup func(id string) (Element, bool), forward func(KeyEvent)) *KeyCapture {
	return &KeyCapture{
		lookup:  lookup,
		forward: forward,
	}
}

func (kc *KeyCapture) State() CaptureState {
	return kc.state
}

// HandleGlobal is the listener used while polling. It does nothing once
// the capture is bound.
func (kc *KeyCapture) HandleGlobal(ev *tcell.EventKey) bool {
	if kc.state != CapturePolling {
		return false
	}
	return kc.capture(ev)
}

// Tick looks the chat input up once and binds to it when found. It
// returns whether the capture is bound.
func (kc *KeyCapture) Tick() bool {
	if kc.state == CaptureBound {
		return true
	}
	el, ok := kc.lookup(ChatInput)
	if !ok {
		return false
	}
	el.SetKeyHandler(kc.capture)
	kc.state = CaptureBound
	return true
}

func (kc *KeyCapture) capture(ev *tcell.EventKey) bool {
	name, ok := capturedKeys[ev.Key()]
	if !ok {
		return false
	}
	mods := ev.Modifiers()
	kc.forward(KeyEvent{
		Key:     name,
		AltKey:  mods&tcell.ModAlt != 0,
		CtrlKey: mods&tcell.ModCtrl != 0,
		MetaKey: mods&tcell.ModMeta != 0,
	})
	return true
}
