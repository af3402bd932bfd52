package ircmux

import (
	"fmt"
	"sort"

	"git.sr.ht/~taiite/ircmux/irc"
)

// EventSource delivers the protocol events of one connection.
type EventSource interface {
	On(kind irc.EventKind, fn func(irc.Event))
}

// Handle is the protocol connection behind a registry entry. It is
// implemented by *irc.Client.
type Handle interface {
	EventSource

	// Connect starts network activity and returns immediately.
	Connect()

	Join(channel string) error
	Part(channel string, reason ...string) error
	Say(target, text string) error
	Whois(nick string) error
	List() error

	// Disconnect starts the teardown. done is called on the event loop,
	// asynchronously and exactly once, when the teardown completes.
	Disconnect(done func(), reason ...string)
}

// Dialer builds the handle of a new connection. It must not connect.
type Dialer func(id ConnID, server, nick string) Handle

// Connection is a registry entry.
type Connection struct {
	ID     ConnID
	Server string
	Nick   string // nick given at connect time.
	Handle Handle
}

// NotFoundError is returned when a command refers to an unknown connection.
type NotFoundError struct {
	ID ConnID
}

func (err *NotFoundError) Error() string {
	return fmt.Sprintf("no connection with id %d", err.ID)
}

// Registry owns the connections. It is not safe for concurrent use; the
// App only touches it from its event loop.
type Registry struct {
	dial  Dialer
	next  ConnID
	conns map[ConnID]*Connection
}

func NewRegistry(dial Dialer) *Registry {
	return &Registry{
		dial:  dial,
		conns: map[ConnID]*Connection{},
	}
}

// Create registers a new connection and returns its identifier.
// Identifiers are never reused.
func (r *Registry) Create(server, nick string) ConnID {
	id := r.next
	r.next++
	r.conns[id] = &Connection{
		ID:     id,
		Server: server,
		Nick:   nick,
		Handle: r.dial(id, server, nick),
	}
	return id
}

func (r *Registry) FindByID(id ConnID) (*Connection, error) {
	conn, ok := r.conns[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return conn, nil
}

// Remove deletes the entry of id, if any.
func (r *Registry) Remove(id ConnID) {
	delete(r.conns, id)
}

// IDs returns the identifiers of the registered connections, in ascending
// order.
func (r *Registry) IDs() []ConnID {
	ids := make([]ConnID, 0, len(r.conns))
	for id := range r.conns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (r *Registry) Len() int {
	return len(r.conns)
}
