package ircmux

import (
	"reflect"
	"testing"

	"git.sr.ht/~taiite/ircmux/irc"
	"github.com/rs/zerolog"
)

type fakeCall struct {
	Method string
	Args   []string
}

// fakeHandle records the calls made on it. Teardowns complete when
// complete is called, or through post when it is set.
type fakeHandle struct {
	post     func(func())
	server   string
	nick     string
	handlers map[irc.EventKind][]func(irc.Event)
	calls    []fakeCall
	dones    []func()
	err      error
	panics   bool
}

func newFakeHandle(server, nick string) *fakeHandle {
	return &fakeHandle{
		server:   server,
		nick:     nick,
		handlers: map[irc.EventKind][]func(irc.Event){},
	}
}

func (h *fakeHandle) record(method string, args ...string) error {
	h.calls = append(h.calls, fakeCall{Method: method, Args: args})
	if h.panics {
		panic("handle exploded")
	}
	return h.err
}

func (h *fakeHandle) fire(ev irc.Event) {
	for _, fn := range h.handlers[ev.Kind()] {
		fn(ev)
	}
}

func (h *fakeHandle) complete() {
	dones := h.dones
	h.dones = nil
	for _, done := range dones {
		done()
	}
}

func (h *fakeHandle) On(kind irc.EventKind, fn func(irc.Event)) {
	h.handlers[kind] = append(h.handlers[kind], fn)
}

func (h *fakeHandle) Connect() {
	_ = h.record("Connect")
}

func (h *fakeHandle) Join(channel string) error {
	return h.record("Join", channel)
}

func (h *fakeHandle) Part(channel string, reason ...string) error {
	return h.record("Part", append([]string{channel}, reason...)...)
}

func (h *fakeHandle) Say(target, text string) error {
	if err := h.record("Say", target, text); err != nil {
		return err
	}
	h.fire(irc.SelfMessageEvent{Target: target, Text: text})
	return nil
}

func (h *fakeHandle) Whois(nick string) error {
	return h.record("Whois", nick)
}

func (h *fakeHandle) List() error {
	return h.record("List")
}

func (h *fakeHandle) Disconnect(done func(), reason ...string) {
	_ = h.record("Disconnect", reason...)
	if h.post != nil {
		go h.post(done)
		return
	}
	h.dones = append(h.dones, done)
}

// fakeNet builds fake handles and keeps track of them by identifier.
type fakeNet struct {
	handles map[ConnID]*fakeHandle
	post    func(func())
}

func newFakeNet() *fakeNet {
	return &fakeNet{handles: map[ConnID]*fakeHandle{}}
}

func (n *fakeNet) dial(id ConnID, server, nick string) Handle {
	h := newFakeHandle(server, nick)
	h.post = n.post
	n.handles[id] = h
	return h
}

type testDispatcher struct {
	*Dispatcher
	net      *fakeNet
	registry *Registry
	messages []Message
}

func newTestDispatcher() *testDispatcher {
	td := &testDispatcher{net: newFakeNet()}
	td.registry = NewRegistry(td.net.dial)
	td.Dispatcher = NewDispatcher(td.registry, func(m Message) {
		td.messages = append(td.messages, m)
	}, zerolog.Nop())
	return td
}

func (td *testDispatcher) takeMessages() []Message {
	messages := td.messages
	td.messages = nil
	return messages
}

func assertCalls(t *testing.T, h *fakeHandle, expected ...fakeCall) {
	t.Helper()
	if len(h.calls) != len(expected) {
		t.Fatalf("expected %d calls, got %d: %+v", len(expected), len(h.calls), h.calls)
	}
	for i := range expected {
		a, e := h.calls[i], expected[i]
		if a.Method != e.Method || len(a.Args) != len(e.Args) || (len(a.Args) != 0 && !reflect.DeepEqual(a.Args, e.Args)) {
			t.Errorf("call #%d: expected %+v, got %+v", i, e, a)
		}
	}
}

func assertMessages(t *testing.T, actual []Message, expected ...Message) {
	t.Helper()
	if len(actual) != len(expected) {
		t.Fatalf("expected %d messages, got %d: %#v", len(expected), len(actual), actual)
	}
	for i := range expected {
		if !reflect.DeepEqual(actual[i], expected[i]) {
			t.Errorf("message #%d: expected %#v, got %#v", i, expected[i], actual[i])
		}
	}
}
