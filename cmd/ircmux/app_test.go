package main

import (
	"reflect"
	"testing"

	"git.sr.ht/~taiite/ircmux"
	"git.sr.ht/~taiite/ircmux/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

type testApp struct {
	*App
	submitted []ircmux.Command
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{}
	cfg := ircmux.DefaultConfig()
	cfg.Nick = "alice"
	cfg.PollInterval = 0
	ta.App = newApp(func(cmd ircmux.Command) {
		ta.submitted = append(ta.submitted, cmd)
	}, nil, cfg, zerolog.Nop(), "")

	win, err := ui.NewWithScreen(tcell.NewSimulationScreen("UTF-8"), ta.uiConfig(func(ircmux.KeyMessage) {}))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(win.Close)
	ta.win = win
	return ta
}

// connected makes the app aware of connection 0 on irc.example.org, in
// #go with bob and carol.
func (ta *testApp) connected() {
	ta.handleMessage(ircmux.ConnectingMessage{ConnectionID: 0, Server: "irc.example.org", Nick: "alice"})
	ta.handleMessage(ircmux.RegisteredMessage{ConnectionID: 0, Nick: "alice", Server: "irc.example.org"})
	ta.handleMessage(ircmux.NamesMessage{ConnectionID: 0, Channel: "#go", Nicks: []ircmux.Member{
		{Nick: "carol"},
		{Nick: "alice"},
		{Nick: "bob", Mode: "@"},
	}})
}

func (ta *testApp) assertSubmitted(t *testing.T, expected ...ircmux.Command) {
	t.Helper()
	if len(ta.submitted) == 0 && len(expected) == 0 {
		return
	}
	if !reflect.DeepEqual(ta.submitted, expected) {
		t.Errorf("expected commands %+v, got %+v", expected, ta.submitted)
	}
	ta.submitted = nil
}

func TestFieldsN(t *testing.T) {
	tests := []struct {
		s        string
		n        int
		expected []string
	}{
		{"", 2, nil},
		{"a", 0, nil},
		{"  a b c ", 1, []string{"a b c"}},
		{"a b c", 2, []string{"a", "b c"}},
		{"a   b  c", 2, []string{"a", "b  c"}},
		{"a b", 3, []string{"a", "b"}},
		{"#go bye  now", 2, []string{"#go", "bye  now"}},
	}
	for _, test := range tests {
		if actual := fieldsN(test.s, test.n); !reflect.DeepEqual(actual, test.expected) {
			t.Errorf("fieldsN(%q, %d): expected %q, got %q", test.s, test.n, test.expected, actual)
		}
	}
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		s         string
		command   string
		args      string
		isCommand bool
	}{
		{"hello", "", "hello", false},
		{"//slash", "", "/slash", false},
		{"/join #go", "JOIN", "#go", true},
		{"/quit", "QUIT", "", true},
		{"/", "", "", true},
	}
	for _, test := range tests {
		command, args, isCommand := parseCommand(test.s)
		if command != test.command || args != test.args || isCommand != test.isCommand {
			t.Errorf("parseCommand(%q): expected (%q, %q, %t), got (%q, %q, %t)",
				test.s, test.command, test.args, test.isCommand, command, args, isCommand)
		}
	}
}

func TestHandleInputCommands(t *testing.T) {
	ta := newTestApp(t)

	if err := ta.handleInput(Home, "/join #go"); err == nil {
		t.Errorf("expected an error before any connection")
	}
	if err := ta.handleInput(Home, "/co irc.example.org"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ta.assertSubmitted(t, ircmux.Connect{Server: "irc.example.org", Nick: "alice"})

	ta.connected()
	server := bufferName(0, "irc.example.org")
	channel := bufferName(0, "#go")

	inputs := []struct {
		buffer   string
		input    string
		expected ircmux.Command
	}{
		{Home, "/join #irc", ircmux.Join{Connection: 0, Channel: "#irc"}},
		{server, "/msg bob hi there", ircmux.Say{Connection: 0, Target: "bob", Message: "hi there"}},
		{channel, "hello", ircmux.Say{Connection: 0, Target: "#go", Message: "hello"}},
		{channel, "//help", ircmux.Say{Connection: 0, Target: "#go", Message: "/help"}},
		{channel, "/me waves", ircmux.Say{Connection: 0, Target: "#go", Message: "\x01ACTION waves\x01"}},
		{channel, "/part", ircmux.Part{Connection: 0, Channel: "#go"}},
		{channel, "/part see you", ircmux.Part{Connection: 0, Channel: "#go", Message: "see you"}},
		{server, "/part #go bye", ircmux.Part{Connection: 0, Channel: "#go", Message: "bye"}},
		{server, "/whois bob", ircmux.Whois{Connection: 0, Nick: "bob"}},
		{server, "/list", ircmux.List{Connection: 0}},
		{server, "/disconnect later", ircmux.Disconnect{Connection: 0, Message: "later"}},
	}
	for _, in := range inputs {
		if err := ta.handleInput(in.buffer, in.input); err != nil {
			t.Errorf("%q in %q: unexpected error: %v", in.input, in.buffer, err)
			continue
		}
		if len(ta.submitted) != 1 || !reflect.DeepEqual(ta.submitted[0], in.expected) {
			t.Errorf("%q in %q: expected %+v, got %+v", in.input, in.buffer, in.expected, ta.submitted)
		}
		ta.submitted = nil
	}
}

func TestHandleInputErrors(t *testing.T) {
	ta := newTestApp(t)
	ta.connected()

	inputs := []struct {
		buffer string
		input  string
	}{
		{Home, "hello"},
		{bufferName(0, "irc.example.org"), "hello"},
		{Home, "/m bob hi"},
		{Home, "/nope"},
		{Home, "/msg bob"},
		{Home, "/names"},
		{bufferName(0, "irc.example.org"), "/part"},
		{Home, "/connect irc.example.com b@d"},
	}
	for _, in := range inputs {
		if err := ta.handleInput(in.buffer, in.input); err == nil {
			t.Errorf("%q in %q: expected an error", in.input, in.buffer)
		}
	}
	ta.assertSubmitted(t)
}

func TestHandleMessageChannels(t *testing.T) {
	ta := newTestApp(t)
	ta.connected()

	c := ta.conns[0]
	ch, ok := c.channels["#go"]
	if !ok {
		t.Fatalf("expected #go to be known")
	}
	var nicks []string
	for _, m := range ch.members {
		nicks = append(nicks, m.Nick)
	}
	if !reflect.DeepEqual(nicks, []string{"alice", "bob", "carol"}) {
		t.Errorf("expected sorted members, got %q", nicks)
	}

	ta.handleMessage(ircmux.PartMessage{ConnectionID: 0, Channel: "#go", Nick: "bob"})
	if len(ch.members) != 2 {
		t.Errorf("expected bob to be removed, got %+v", ch.members)
	}
	ta.handleMessage(ircmux.NickMessage{ConnectionID: 0, OldNick: "alice", NewNick: "alicia", Channels: []string{"#go"}})
	if c.nick != "alicia" || ch.members[0].Nick != "alicia" {
		t.Errorf("expected own nick change to be tracked, got %q and %+v", c.nick, ch.members)
	}
	ta.handleMessage(ircmux.TopicMessage{ConnectionID: 0, Channel: "#go", Topic: "gophers"})
	if ch.topic != "gophers" {
		t.Errorf("expected %q, got %q", "gophers", ch.topic)
	}

	ta.handleMessage(ircmux.KickMessage{ConnectionID: 0, Channel: "#GO", Nick: "alicia", By: "bob"})
	if _, ok := c.channels["#go"]; ok {
		t.Errorf("expected #go to be forgotten after being kicked")
	}
	if ta.win.JumpBuffer(bufferName(0, "#go")) {
		t.Errorf("expected the #go buffer to be closed")
	}
}

func TestHandleMessageQueries(t *testing.T) {
	ta := newTestApp(t)
	ta.connected()

	ta.handleMessage(ircmux.ChatMessage{ConnectionID: 0, Nick: "bob", To: "alice", Text: "psst"})
	if ta.lastQuery != bufferName(0, "bob") {
		t.Errorf("expected %q, got %q", bufferName(0, "bob"), ta.lastQuery)
	}
	if err := ta.handleInput(Home, "/reply hey"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ta.assertSubmitted(t, ircmux.Say{Connection: 0, Target: "bob", Message: "hey"})

	ta.handleMessage(ircmux.DisconnectedMessage{ConnectionID: 0})
	if _, ok := ta.conns[0]; ok {
		t.Errorf("expected connection to be forgotten")
	}
	if ta.lastConn != -1 {
		t.Errorf("expected no last connection, got %d", ta.lastConn)
	}
}

func TestHandleMessageUnknownConnection(t *testing.T) {
	ta := newTestApp(t)
	ta.handleMessage(ircmux.ChatMessage{ConnectionID: 3, Nick: "bob", To: "#go", Text: "hi"})
	if len(ta.conns) != 0 {
		t.Errorf("expected no connection, got %d", len(ta.conns))
	}
}

func TestHighlight(t *testing.T) {
	ta := newTestApp(t)
	ta.connected()
	c := ta.conns[0]

	if !ta.isHighlight(c, "hey ALICE") {
		t.Errorf("expected own nick to highlight")
	}
	ta.highlights = []string{"gopher"}
	if ta.isHighlight(c, "hey alice") {
		t.Errorf("expected configured words to replace the nick")
	}
	if !ta.isHighlight(c, "Gophers unite") {
		t.Errorf("expected configured word to highlight")
	}
}

func TestParseBufferName(t *testing.T) {
	id, target, ok := parseBufferName(bufferName(12, "#a:b"))
	if !ok || id != 12 || target != "#a:b" {
		t.Errorf("expected (12, %q, true), got (%d, %q, %t)", "#a:b", id, target, ok)
	}
	if _, _, ok := parseBufferName(Home); ok {
		t.Errorf("expected %q not to belong to a connection", Home)
	}
}
