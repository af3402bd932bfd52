package irc

import (
	"crypto/tls"
	"errors"
	"log"
	"net"
	"sync"

	"github.com/ergochat/irc-go/ircevent"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/rs/zerolog"
)

// ErrClosed is returned by the methods of a Client that has been torn down.
var ErrClosed = errors.New("connection closed")

var errConnectionLost = errors.New("connection lost")

// subscribed lists the commands a Client forwards to its Session, in
// addition to every error numeric.
var subscribed = []string{
	rplWelcome, rplIsupport,
	rplMotdstart, rplMotd, rplEndofmotd,
	rplNamreply, rplEndofnames,
	rplTopic, rplTopicwhotime,
	rplWhoisuser, rplWhoisserver, rplWhoisoperator, rplWhoisidle,
	rplWhoischannels, rplWhoisaccount, rplEndofwhois,
	"JOIN", "PART", "KICK", "KILL", "QUIT", "NICK", "TOPIC",
	"PRIVMSG", "NOTICE", "INVITE", "MODE", "ERROR",
}

type clientState int

const (
	stateIdle clientState = iota
	stateConnecting
	stateActive
	stateClosed
)

// ClientParams defines how to connect to an IRC server.
type ClientParams struct {
	Server   string // host or host:port.
	Nickname string
	Username string
	RealName string
	TLS      bool
	Debug    bool

	// Post runs task on the goroutine that owns the client. Events are
	// handled and teardown callbacks are invoked only through it.
	Post func(task func())

	Logger zerolog.Logger
}

// Client is one IRC connection. Network I/O runs on its own goroutines;
// session state and event handlers are only touched from Post tasks.
type Client struct {
	conn     *ircevent.Connection
	session  *Session
	post     func(func())
	log      zerolog.Logger
	handlers map[EventKind][]func(Event)

	mu       sync.Mutex
	state    clientState
	quitting bool
	dones    []func()
}

// NewClient creates a client. It does not connect.
func NewClient(params ClientParams) *Client {
	user := params.Username
	if user == "" {
		user = params.Nickname
	}
	realName := params.RealName
	if realName == "" {
		realName = params.Nickname
	}

	addr, host := serverAddr(params.Server, params.TLS)
	logger := params.Logger.With().Str("server", params.Server).Logger()
	c := &Client{
		conn: &ircevent.Connection{
			Server:   addr,
			Nick:     params.Nickname,
			User:     user,
			RealName: realName,
			UseTLS:   params.TLS,
			Debug:    params.Debug,
			Log:      log.New(logger.With().Str("component", "ircevent").Logger(), "", 0),
		},
		session: NewSession(SessionParams{
			Server:   params.Server,
			Nickname: params.Nickname,
			Username: user,
		}),
		post:     params.Post,
		log:      logger,
		handlers: map[EventKind][]func(Event){},
	}
	if params.TLS {
		c.conn.TLSConfig = &tls.Config{ServerName: host}
	}

	for _, code := range subscribed {
		c.conn.AddCallback(code, c.receive)
	}
	for _, code := range errorReplies() {
		c.conn.AddCallback(code, c.receive)
	}
	c.conn.AddDisconnectCallback(c.disconnected)

	return c
}

func serverAddr(server string, useTLS bool) (addr, host string) {
	if h, _, err := net.SplitHostPort(server); err == nil {
		return server, h
	}
	port := "6667"
	if useTLS {
		port = "6697"
	}
	return net.JoinHostPort(server, port), server
}

// Session returns the protocol state of the client. It must only be used
// from Post tasks.
func (c *Client) Session() *Session {
	return c.session
}

// On registers fn to be called with every event of the given kind.
func (c *Client) On(kind EventKind, fn func(Event)) {
	c.handlers[kind] = append(c.handlers[kind], fn)
}

// Connect dials the server in the background. Failures are reported as an
// ErrorEvent with Command "netError".
func (c *Client) Connect() {
	c.mu.Lock()
	if c.state != stateIdle {
		c.mu.Unlock()
		return
	}
	c.state = stateConnecting
	c.mu.Unlock()

	go c.run()
}

func (c *Client) run() {
	c.log.Debug().Msg("connecting")
	err := c.conn.Connect()

	c.mu.Lock()
	if err != nil {
		c.mu.Unlock()
		c.log.Warn().Err(err).Msg("connection failed")
		c.post(func() { c.emit(netError(err)) })
		c.finish()
		return
	}
	c.state = stateActive
	quitting := c.quitting
	c.mu.Unlock()

	if quitting {
		c.conn.Quit()
	}
	// Loop reconnects on its own and only returns once Quit is called.
	c.conn.Loop()
	c.finish()
}

// disconnected is called by ircevent whenever a registered connection ends.
// Unless the client is quitting, the loss is reported and the session
// starts over, since ircevent reconnects with fresh state.
func (c *Client) disconnected(ircmsg.Message) {
	c.mu.Lock()
	quitting := c.quitting
	c.mu.Unlock()
	if quitting {
		return
	}

	c.log.Warn().Msg("connection lost, reconnecting")
	c.post(func() {
		c.session.Reset()
		c.emit(netError(errConnectionLost))
	})
}

// finish marks the client as closed and runs the pending teardown
// callbacks.
func (c *Client) finish() {
	c.mu.Lock()
	c.state = stateClosed
	dones := c.dones
	c.dones = nil
	c.mu.Unlock()

	for _, done := range dones {
		c.post(done)
	}
}

func netError(err error) ErrorEvent {
	return ErrorEvent{
		Command:     "netError",
		RawCommand:  "netError",
		CommandType: ReplyError,
		Args:        []string{err.Error()},
	}
}

func (c *Client) receive(msg ircmsg.Message) {
	c.post(func() { c.handle(msg) })
}

func (c *Client) handle(msg ircmsg.Message) {
	c.log.Debug().Str("command", msg.Command).Strs("params", msg.Params).Msg("received")
	for _, ev := range c.session.HandleMessage(msg) {
		c.emit(ev)
	}
}

func (c *Client) emit(ev Event) {
	for _, fn := range c.handlers[ev.Kind()] {
		fn(ev)
	}
}

func (c *Client) closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateClosed
}

func (c *Client) Join(channel string) error {
	if c.closed() {
		return ErrClosed
	}
	return c.conn.Join(channel)
}

// Part leaves channel. The reason is sent only when given.
func (c *Client) Part(channel string, reason ...string) error {
	if c.closed() {
		return ErrClosed
	}
	if len(reason) != 0 {
		return c.conn.Send("PART", channel, reason[0])
	}
	return c.conn.Part(channel)
}

// Say sends text to target, one PRIVMSG per line, splitting lines that do
// not fit. A SelfMessageEvent is emitted for each line sent.
func (c *Client) Say(target, text string) error {
	if c.closed() {
		return ErrClosed
	}
	for _, line := range SplitMessage(text, c.session.MessageBudget(target)) {
		if err := c.conn.Privmsg(target, line); err != nil {
			return err
		}
		c.emit(SelfMessageEvent{Target: target, Text: line})
	}
	return nil
}

func (c *Client) Whois(nick string) error {
	if c.closed() {
		return ErrClosed
	}
	c.session.ExpectWhois(nick)
	return c.conn.Send("WHOIS", nick)
}

func (c *Client) List() error {
	if c.closed() {
		return ErrClosed
	}
	return c.conn.Send("LIST")
}

// Disconnect quits the server and calls done, through Post, once the
// connection is closed. The quit message is sent only when given. done is
// always called asynchronously, exactly once.
func (c *Client) Disconnect(done func(), reason ...string) {
	c.mu.Lock()
	c.quitting = true
	if len(reason) != 0 {
		c.conn.QuitMessage = reason[0]
	}

	switch c.state {
	case stateIdle, stateClosed:
		c.state = stateClosed
		c.mu.Unlock()
		go c.post(done)
	case stateConnecting:
		c.dones = append(c.dones, done)
		c.mu.Unlock()
	default:
		c.dones = append(c.dones, done)
		c.mu.Unlock()
		c.conn.Quit()
	}
}
