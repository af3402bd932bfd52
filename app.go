package ircmux

import (
	"context"
	"errors"
	"time"

	"git.sr.ht/~taiite/ircmux/irc"
	"github.com/rs/zerolog"
)

// ErrStopped is returned by Shutdown when the event loop is not running.
var ErrStopped = errors.New("event loop stopped")

const (
	taskQueueSize    = 1024
	messageQueueSize = 1024
)

// AppParams configures an App.
type AppParams struct {
	Config Config
	Logger zerolog.Logger

	// Dialer builds connection handles. It defaults to irc.Client.
	Dialer Dialer
}

// App is the session manager. All of its state is owned by the goroutine
// running Run; other goroutines interact with it through Post and Submit.
type App struct {
	cfg      Config
	log      zerolog.Logger
	registry *Registry
	dispatch *Dispatcher

	tasks    chan func()
	messages chan Message
	done     chan struct{}

	// autojoin holds the channels to join once a startup connection is
	// registered.
	autojoin map[ConnID][]string
}

func NewApp(params AppParams) *App {
	app := &App{
		cfg:      params.Config,
		log:      params.Logger,
		tasks:    make(chan func(), taskQueueSize),
		messages: make(chan Message, messageQueueSize),
		done:     make(chan struct{}),
		autojoin: map[ConnID][]string{},
	}

	dial := params.Dialer
	if dial == nil {
		dial = app.dialIRC
	}
	app.registry = NewRegistry(dial)
	app.dispatch = NewDispatcher(app.registry, app.emit, app.log)

	return app
}

func (app *App) dialIRC(id ConnID, server, nick string) Handle {
	tls := app.cfg.TLS
	for _, srv := range app.cfg.Servers {
		if srv.Server == server {
			tls = srv.TLS
			break
		}
	}
	return irc.NewClient(irc.ClientParams{
		Server:   server,
		Nickname: nick,
		Username: app.cfg.User,
		RealName: app.cfg.Real,
		TLS:      tls,
		Debug:    app.cfg.Debug,
		Post:     app.Post,
		Logger:   app.log.With().Int64("conn", int64(id)).Logger(),
	})
}

// Messages returns the stream of outward messages.
func (app *App) Messages() <-chan Message {
	return app.messages
}

// Post queues task to run on the event loop. It drops task once Run has
// returned.
func (app *App) Post(task func()) {
	select {
	case app.tasks <- task:
	case <-app.done:
	}
}

// Submit queues cmd for dispatch. Commands are dispatched in the order they
// are submitted.
func (app *App) Submit(cmd Command) {
	app.Post(func() {
		app.dispatch.Dispatch(cmd)
	})
}

// SubmitKey forwards a captured key press to the message stream.
func (app *App) SubmitKey(key KeyMessage) {
	app.Post(func() {
		app.emit(key)
	})
}

func (app *App) emit(m Message) {
	if reg, ok := m.(RegisteredMessage); ok {
		if channels, ok := app.autojoin[reg.ConnectionID]; ok {
			delete(app.autojoin, reg.ConnectionID)
			defer app.joinAll(reg.ConnectionID, channels)
		}
	}
	select {
	case app.messages <- m:
	case <-app.done:
	}
}

func (app *App) joinAll(id ConnID, channels []string) {
	for _, channel := range channels {
		app.dispatch.Dispatch(Join{Connection: id, Channel: channel})
	}
}

// Run opens the configured connections and runs the event loop until ctx
// is cancelled.
func (app *App) Run(ctx context.Context) {
	defer close(app.done)

	for _, srv := range app.cfg.Servers {
		id := app.dispatch.Connect(srv.Server, srv.Nick)
		if len(srv.Channels) != 0 {
			app.autojoin[id] = srv.Channels
		}
	}

	for {
		select {
		case <-ctx.Done():
			app.log.Debug().Msg("event loop stopped")
			return
		case task := <-app.tasks:
			task()
		}
	}
}

// Shutdown disconnects every connection with the given quit message and
// waits until their teardown completes or ctx is done. It returns
// ErrStopped if Run has returned, since nothing could be sent anymore.
func (app *App) Shutdown(ctx context.Context, message string) error {
	select {
	case <-app.done:
		return ErrStopped
	default:
	}

	app.Post(func() {
		for _, id := range app.registry.IDs() {
			app.dispatch.Dispatch(Disconnect{Connection: id, Message: message})
		}
	})

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		left := make(chan int, 1)
		app.Post(func() {
			left <- app.registry.Len()
		})
		select {
		case n := <-left:
			if n == 0 {
				return nil
			}
		case <-app.done:
			return ErrStopped
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
