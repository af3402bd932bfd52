package ircmux

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Dispatcher runs front-end commands against the registry. Its methods
// must be called from the event loop that owns the registry.
type Dispatcher struct {
	registry *Registry
	emit     func(Message)
	log      zerolog.Logger

	// lookups throttles the log lines of commands aimed at unknown
	// connections.
	lookups *rate.Limiter
}

func NewDispatcher(registry *Registry, emit func(Message), logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		emit:     emit,
		log:      logger,
		lookups:  rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

// Dispatch runs cmd once. Failures are logged and never propagated.
func (d *Dispatcher) Dispatch(cmd Command) {
	log := d.log.With().
		Str("trace", uuid.NewString()).
		Str("cmd", cmd.Kind()).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("command aborted")
		}
	}()

	var err error
	switch cmd := cmd.(type) {
	case Connect:
		id := d.Connect(cmd.Server, cmd.Nick)
		log.Info().Int64("conn", int64(id)).Str("server", cmd.Server).Msg("connection created")
	case Join:
		err = d.Join(cmd.Connection, cmd.Channel)
	case Part:
		err = d.Part(cmd.Connection, cmd.Channel, cmd.Message)
	case Say:
		err = d.Say(cmd.Connection, cmd.Target, cmd.Message)
	case Whois:
		err = d.Whois(cmd.Connection, cmd.Nick)
	case List:
		err = d.List(cmd.Connection)
	case Disconnect:
		err = d.Disconnect(cmd.Connection, cmd.Message)
	default:
		err = fmt.Errorf("unsupported command %T", cmd)
	}
	if err != nil {
		d.report(log, err)
	}
}

func (d *Dispatcher) report(log zerolog.Logger, err error) {
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		if d.lookups.Allow() {
			log.Warn().Int64("conn", int64(notFound.ID)).Msg("no such connection")
		}
		return
	}
	log.Error().Err(err).Msg("command failed")
}

// Connect creates a connection and starts dialing. Network failures are
// reported later as error messages.
func (d *Dispatcher) Connect(server, nick string) ConnID {
	id := d.registry.Create(server, nick)
	conn, _ := d.registry.FindByID(id)
	BindAdapter(id, conn.Handle, d.emit)
	d.emit(ConnectingMessage{ConnectionID: id, Server: server, Nick: nick})
	conn.Handle.Connect()
	return id
}

func (d *Dispatcher) Join(id ConnID, channel string) error {
	conn, err := d.registry.FindByID(id)
	if err != nil {
		return err
	}
	if err := conn.Handle.Join(channel); err != nil {
		return fmt.Errorf("failed to join %q: %w", channel, err)
	}
	return nil
}

// Part leaves channel. The reason is passed on only when not empty.
func (d *Dispatcher) Part(id ConnID, channel, reason string) error {
	conn, err := d.registry.FindByID(id)
	if err != nil {
		return err
	}
	if reason == "" {
		err = conn.Handle.Part(channel)
	} else {
		err = conn.Handle.Part(channel, reason)
	}
	if err != nil {
		return fmt.Errorf("failed to part %q: %w", channel, err)
	}
	return nil
}

func (d *Dispatcher) Say(id ConnID, target, text string) error {
	conn, err := d.registry.FindByID(id)
	if err != nil {
		return err
	}
	if err := conn.Handle.Say(target, text); err != nil {
		return fmt.Errorf("failed to send to %q: %w", target, err)
	}
	return nil
}

func (d *Dispatcher) Whois(id ConnID, nick string) error {
	conn, err := d.registry.FindByID(id)
	if err != nil {
		return err
	}
	if err := conn.Handle.Whois(nick); err != nil {
		return fmt.Errorf("failed to query %q: %w", nick, err)
	}
	return nil
}

func (d *Dispatcher) List(id ConnID) error {
	conn, err := d.registry.FindByID(id)
	if err != nil {
		return err
	}
	if err := conn.Handle.List(); err != nil {
		return fmt.Errorf("failed to list channels: %w", err)
	}
	return nil
}

// Disconnect tears the connection down. The entry stays in the registry
// until the teardown completes; a DisconnectedMessage is emitted then.
func (d *Dispatcher) Disconnect(id ConnID, message string) error {
	conn, err := d.registry.FindByID(id)
	if err != nil {
		return err
	}
	done := func() {
		d.registry.Remove(id)
		d.log.Info().Int64("conn", int64(id)).Msg("connection closed")
		d.emit(DisconnectedMessage{ConnectionID: id})
	}
	if message == "" {
		conn.Handle.Disconnect(done)
	} else {
		conn.Handle.Disconnect(done, message)
	}
	return nil
}
