package main

import (
	"fmt"
	"strings"
	"time"

	"git.sr.ht/~taiite/ircmux"
	"git.sr.ht/~taiite/ircmux/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

const Home = ui.Overlay

const messageBatchSize = 64

// channelView is what the front-end knows of a joined channel.
type channelView struct {
	name    string
	topic   string
	members []ircmux.Member
}

// connView is what the front-end knows of a connection.
type connView struct {
	id       ircmux.ConnID
	server   string
	nick     string
	channels map[string]*channelView // keyed by lower-case name.
}

func (c *connView) buffer() string {
	return bufferName(c.id, c.server)
}

type App struct {
	win      *ui.UI
	cfg      ircmux.Config
	log      zerolog.Logger
	submit   func(ircmux.Command)
	messages <-chan ircmux.Message

	conns      map[ircmux.ConnID]*connView
	lastConn   ircmux.ConnID
	highlights []string
	lastQuery  string
	lastBuffer string

	// quitMessage is sent to every server on exit.
	quitMessage string
}

func NewApp(core *ircmux.App, cfg ircmux.Config, logger zerolog.Logger, lastBuffer string) (*App, error) {
	app := newApp(core.Submit, core.Messages(), cfg, logger, lastBuffer)
	win, err := ui.New(app.uiConfig(core.SubmitKey))
	if err != nil {
		return nil, err
	}
	app.win = win
	app.welcome()
	return app, nil
}

func newApp(submit func(ircmux.Command), messages <-chan ircmux.Message, cfg ircmux.Config, logger zerolog.Logger, lastBuffer string) *App {
	app := &App{
		cfg:         cfg,
		log:         logger,
		submit:      submit,
		messages:    messages,
		conns:       map[ircmux.ConnID]*connView{},
		lastConn:    -1,
		lastBuffer:  lastBuffer,
		quitMessage: cfg.QuitMessage,
	}
	for _, h := range cfg.Highlights {
		app.highlights = append(app.highlights, strings.ToLower(h))
	}
	return app
}

func (app *App) uiConfig(submitKey func(ircmux.KeyMessage)) ui.Config {
	return ui.Config{
		PollInterval: app.cfg.PollInterval,
		AutoComplete: app.completions,
		Keys: func(ev ui.KeyEvent) {
			submitKey(ircmux.KeyMessage{
				Key:     ev.Key,
				AltKey:  ev.AltKey,
				CtrlKey: ev.CtrlKey,
				MetaKey: ev.MetaKey,
			})
		},
	}
}

func (app *App) welcome() {
	app.addLineNow(Home, ui.Line{
		Head: "--",
		Body: ui.IRCString("Welcome to \x02ircmux\x02. Type /help for the list of commands."),
	})
}

func (app *App) Close() {
	app.win.Close()
}

func (app *App) CurrentBuffer() string {
	return app.win.CurrentBuffer()
}

func (app *App) QuitMessage() string {
	return app.quitMessage
}

// Run handles terminal events and core messages until the user quits.
func (app *App) Run() {
	app.win.Draw()
	for !app.win.ShouldExit() {
		select {
		case ev := <-app.win.Events:
			app.handleUIEvent(ev)
		case m := <-app.messages:
			app.handleMessage(m)
		}
	Batch:
		for i := 0; i < messageBatchSize; i++ {
			select {
			case m := <-app.messages:
				app.handleMessage(m)
			default:
				break Batch
			}
		}
		app.win.Draw()
	}
}

func (app *App) handleUIEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		app.win.Resize()
	case *tcell.EventKey:
		if app.win.HandleKey(ev) {
			return
		}
		app.handleKeyEvent(ev)
	case *ui.CaptureTick:
		app.win.TickCapture()
		if app.win.Capture() == ui.CaptureBound {
			app.log.Debug().Msg("key capture bound to the chat input")
		}
	}
}

func (app *App) handleKeyEvent(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		app.win.Exit()
	case tcell.KeyCtrlL:
		app.win.Resize()
	case tcell.KeyCtrlU, tcell.KeyPgUp:
		app.win.ScrollUp()
	case tcell.KeyCtrlD, tcell.KeyPgDn:
		app.win.ScrollDown()
	case tcell.KeyCtrlN:
		app.win.NextBuffer()
	case tcell.KeyCtrlP:
		app.win.PreviousBuffer()
	case tcell.KeyRight:
		if ev.Modifiers() == tcell.ModAlt {
			app.win.NextBuffer()
		} else {
			app.win.InputRight()
		}
	case tcell.KeyLeft:
		if ev.Modifiers() == tcell.ModAlt {
			app.win.PreviousBuffer()
		} else {
			app.win.InputLeft()
		}
	case tcell.KeyUp:
		if ev.Modifiers() == tcell.ModAlt {
			app.win.PreviousBuffer()
		} else {
			app.win.InputUp()
		}
	case tcell.KeyDown:
		if ev.Modifiers() == tcell.ModAlt {
			app.win.NextBuffer()
		} else {
			app.win.InputDown()
		}
	case tcell.KeyHome:
		app.win.InputHome()
	case tcell.KeyEnd:
		app.win.InputEnd()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		app.win.InputBackspace()
	case tcell.KeyDelete:
		app.win.InputDelete()
	case tcell.KeyRune:
		app.win.InputRune(ev.Rune())
	}
}

// handleKey reacts to the keys taken away from the chat input, once the
// core has echoed them back.
func (app *App) handleKey(m ircmux.KeyMessage) {
	switch m.Key {
	case "Tab":
		app.win.InputAutoComplete()
	case "Enter":
		buffer := app.win.CurrentBuffer()
		input := app.win.InputEnter()
		if err := app.handleInput(buffer, input); err != nil {
			app.addLineNow(buffer, ui.Line{
				Head: "!!",
				Body: ui.PlainString(fmt.Sprintf("%q: %s", input, err)),
			})
		}
	}
}

func (app *App) addLineNow(buffer string, line ui.Line) {
	if line.At.IsZero() {
		line.At = time.Now()
	}
	app.win.AddLine(buffer, line)
	if buffer == app.lastBuffer {
		app.win.JumpBuffer(buffer)
		app.lastBuffer = ""
	}
}

func (app *App) isHighlight(c *connView, text string) bool {
	text = strings.ToLower(text)
	if len(app.highlights) == 0 {
		return strings.Contains(text, strings.ToLower(c.nick))
	}
	for _, h := range app.highlights {
		if strings.Contains(text, h) {
			return true
		}
	}
	return false
}

// bufferName returns the title of the buffer of target on connection id.
func bufferName(id ircmux.ConnID, target string) string {
	return fmt.Sprintf("%d:%s", id, target)
}

// parseBufferName is the reverse of bufferName.
func parseBufferName(buffer string) (id ircmux.ConnID, target string, ok bool) {
	i := strings.IndexByte(buffer, ':')
	if i <= 0 {
		return 0, "", false
	}
	var n int64
	if _, err := fmt.Sscan(buffer[:i], &n); err != nil {
		return 0, "", false
	}
	return ircmux.ConnID(n), buffer[i+1:], true
}

// currentConn returns the connection of buffer, or the last connection
// opened when buffer belongs to none.
func (app *App) currentConn(buffer string) (*connView, error) {
	id, _, ok := parseBufferName(buffer)
	if !ok {
		id = app.lastConn
	}
	c, ok := app.conns[id]
	if !ok {
		return nil, fmt.Errorf("not connected; use /connect first")
	}
	return c, nil
}

// bufferTarget returns the channel or nick buffer is about. It is empty for
// home and server buffers.
func (app *App) bufferTarget(buffer string) string {
	id, target, ok := parseBufferName(buffer)
	if !ok {
		return ""
	}
	if c, ok := app.conns[id]; ok && c.server == target {
		return ""
	}
	return target
}
