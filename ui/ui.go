package ui

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
)

type Config struct {
	// PollInterval is how often the key capture looks for the chat input.
	PollInterval time.Duration

	AutoComplete func(cursorIdx int, text []rune) []Completion

	// Keys receives the Tab and Enter presses of the chat input.
	Keys func(KeyEvent)
}

// CaptureTick is posted to Events while the key capture is polling.
type CaptureTick struct {
	tcell.EventTime
}

type UI struct {
	screen tcell.Screen
	Events chan tcell.Event
	exit   atomic.Value // bool
	config Config

	bs       BufferList
	e        editor
	status   string
	capture  *KeyCapture
	elements map[string]Element
	stopPoll chan struct{}
	stopOnce sync.Once
}

func New(config Config) (*UI, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, config)
}

// NewWithScreen builds a UI on an already allocated screen.
func NewWithScreen(screen tcell.Screen, config Config) (*UI, error) {
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnablePaste()

	w, h := screen.Size()
	ui := &UI{
		screen:   screen,
		Events:   make(chan tcell.Event, 128),
		config:   config,
		bs:       NewBufferList(w, h-2),
		e:        newEditor(w, config.AutoComplete),
		elements: map[string]Element{},
		stopPoll: make(chan struct{}),
	}
	ui.exit.Store(false)
	ui.capture = NewKeyCapture(ui.Lookup, config.Keys)

	go func() {
		for !ui.ShouldExit() {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			ui.Events <- ev
		}
	}()
	if 0 < config.PollInterval {
		go ui.poll(config.PollInterval)
	}

	ui.Resize()
	return ui, nil
}

func (ui *UI) poll(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			tick := &CaptureTick{}
			tick.SetEventNow()
			select {
			case ui.Events <- tick:
			case <-ui.stopPoll:
				return
			}
		case <-ui.stopPoll:
			return
		}
	}
}

func (ui *UI) ShouldExit() bool {
	return ui.exit.Load().(bool)
}

func (ui *UI) Exit() {
	ui.exit.Store(true)
}

func (ui *UI) Close() {
	ui.Exit()
	ui.stopPolling()
	ui.screen.Fini()
}

// Lookup returns the element registered under id. Elements are registered
// once they have been drawn.
func (ui *UI) Lookup(id string) (Element, bool) {
	el, ok := ui.elements[id]
	return el, ok
}

// Capture returns the state of the key capture.
func (ui *UI) Capture() CaptureState {
	return ui.capture.State()
}

// TickCapture is called for every CaptureTick. Polling stops once the chat
// input is bound.
func (ui *UI) TickCapture() {
	if ui.capture.State() == CaptureBound {
		return
	}
	if ui.capture.Tick() {
		ui.stopPolling()
	}
}

func (ui *UI) stopPolling() {
	ui.stopOnce.Do(func() {
		close(ui.stopPoll)
	})
}

// HandleKey offers ev to the key capture, then to the chat input's
// handler. It returns whether ev was consumed.
func (ui *UI) HandleKey(ev *tcell.EventKey) bool {
	if ui.capture.HandleGlobal(ev) {
		return true
	}
	if ui.e.keyHandler != nil && ui.e.keyHandler(ev) {
		return true
	}
	return false
}

func (ui *UI) CurrentBuffer() string {
	return ui.bs.Current()
}

func (ui *UI) NextBuffer() {
	ui.bs.Next()
}

func (ui *UI) PreviousBuffer() {
	ui.bs.Previous()
}

func (ui *UI) JumpBuffer(sub string) bool {
	return ui.bs.Jump(sub)
}

func (ui *UI) AddBuffer(title string) {
	ui.bs.Add(title)
}

func (ui *UI) RemoveBuffer(title string) {
	ui.bs.Remove(title)
}

func (ui *UI) AddLine(buffer string, line Line) {
	ui.bs.AddLine(buffer, line)
}

func (ui *UI) ScrollUp() {
	ui.bs.ScrollUp(ui.bs.tlHeight / 2)
}

func (ui *UI) ScrollDown() {
	ui.bs.ScrollDown(ui.bs.tlHeight / 2)
}

func (ui *UI) SetStatus(status string) {
	ui.status = status
}

func (ui *UI) InputIsCommand() bool {
	return ui.e.IsCommand()
}

func (ui *UI) InputLen() int {
	return ui.e.TextLen()
}

func (ui *UI) InputRune(r rune) {
	ui.e.PutRune(r)
}

func (ui *UI) InputRight() {
	ui.e.Right()
}

func (ui *UI) InputLeft() {
	ui.e.Left()
}

func (ui *UI) InputHome() {
	ui.e.Home()
}

func (ui *UI) InputEnd() {
	ui.e.End()
}

func (ui *UI) InputUp() {
	ui.e.Up()
}

func (ui *UI) InputDown() {
	ui.e.Down()
}

func (ui *UI) InputBackspace() bool {
	return ui.e.RemRune()
}

func (ui *UI) InputDelete() bool {
	return ui.e.RemRuneForward()
}

func (ui *UI) InputAutoComplete() bool {
	return ui.e.AutoComplete()
}

func (ui *UI) InputEnter() string {
	return ui.e.Flush()
}

func (ui *UI) Resize() {
	w, h := ui.screen.Size()
	ui.e.Resize(w)
	ui.bs.Resize(w, h-2)
	for i := range ui.bs.list {
		for j := range ui.bs.list[i].lines {
			ui.bs.list[i].lines[j].invalidate()
		}
	}
}

func (ui *UI) Size() (int, int) {
	return ui.screen.Size()
}

func (ui *UI) Draw() {
	w, h := ui.screen.Size()

	ui.bs.DrawTimeline(ui.screen)
	if ui.status == "" {
		ui.bs.DrawStatus(ui.screen, h-2)
	} else {
		r := newRow(ui.screen, h-2, 0, w)
		r.blank()
		r.put(Styled(ui.status, tcell.StyleDefault.Dim(true)))
	}
	ui.e.Draw(ui.screen, h-1)
	ui.elements[ChatInput] = &ui.e

	ui.screen.Show()
}
