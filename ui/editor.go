package ui

import (
	"github.com/gdamore/tcell/v2"
)

type Completion struct {
	Text      []rune
	CursorIdx int
}

// editor is the chat input, where the user writes messages and commands.
// Sent lines are kept as history, browsed with Up and Down.
type editor struct {
	// history holds the sent lines, followed by the line being written.
	history [][]rune
	lineIdx int

	// textWidth[i] is the width of the first i runes of the current line.
	// textWidth[0] is always 0.
	textWidth []int

	// cursorIdx is the index of the rune under the cursor, or the length
	// of the line when the cursor is at the end.
	cursorIdx int

	// offsetIdx is the number of runes scrolled out on the left.
	offsetIdx int

	width int

	autoComplete func(cursorIdx int, text []rune) []Completion
	autoCache    []Completion
	autoCacheIdx int

	// keyHandler sees key events before the editor does.
	keyHandler func(ev *tcell.EventKey) bool
}

func newEditor(width int, autoComplete func(cursorIdx int, text []rune) []Completion) editor {
	return editor{
		history:      [][]rune{{}},
		textWidth:    []int{0},
		width:        width,
		autoComplete: autoComplete,
	}
}

// SetKeyHandler implements Element.
func (e *editor) SetKeyHandler(fn func(ev *tcell.EventKey) bool) {
	e.keyHandler = fn
}

func (e *editor) text() []rune {
	return e.history[e.lineIdx]
}

func (e *editor) Resize(width int) {
	if width < e.width {
		e.cursorIdx = 0
		e.offsetIdx = 0
		e.autoCache = nil
	}
	e.width = width
}

func (e *editor) IsCommand() bool {
	text := e.text()
	return len(text) != 0 && text[0] == '/'
}

func (e *editor) TextLen() int {
	return len(e.text())
}

func (e *editor) PutRune(r rune) {
	text := append(e.text(), ' ')
	copy(text[e.cursorIdx+1:], text[e.cursorIdx:])
	text[e.cursorIdx] = r
	e.history[e.lineIdx] = text

	e.textWidth = append(e.textWidth, 0)
	for i := e.cursorIdx + 1; i < len(e.textWidth); i++ {
		e.textWidth[i] = e.textWidth[i-1] + runeWidth(text[i-1])
	}

	e.right()
	e.autoCache = nil
}

// RemRune removes the rune before the cursor.
func (e *editor) RemRune() bool {
	if e.cursorIdx == 0 {
		return false
	}
	e.remRuneAt(e.cursorIdx - 1)
	e.left()
	e.autoCache = nil
	return true
}

// RemRuneForward removes the rune under the cursor.
func (e *editor) RemRuneForward() bool {
	if len(e.text()) <= e.cursorIdx {
		return false
	}
	e.remRuneAt(e.cursorIdx)
	e.autoCache = nil
	return true
}

func (e *editor) remRuneAt(idx int) {
	text := e.text()
	copy(text[idx:], text[idx+1:])
	e.history[e.lineIdx] = text[:len(text)-1]
	e.computeTextWidth()
}

// Flush empties the current line and returns its content.
func (e *editor) Flush() string {
	content := string(e.text())
	last := len(e.history) - 1
	if len(e.history[last]) == 0 {
		e.lineIdx = last
	} else {
		e.history = append(e.history, []rune{})
		e.lineIdx = last + 1
	}
	e.textWidth = e.textWidth[:1]
	e.cursorIdx = 0
	e.offsetIdx = 0
	e.autoCache = nil
	return content
}

func (e *editor) Right() {
	e.right()
	e.autoCache = nil
}

func (e *editor) right() {
	if e.cursorIdx == len(e.text()) {
		return
	}
	e.cursorIdx++
	if e.width <= e.textWidth[e.cursorIdx]-e.textWidth[e.offsetIdx] {
		e.offsetIdx += 16
		if last := len(e.text()) - 1; last < e.offsetIdx {
			e.offsetIdx = last
		}
	}
}

func (e *editor) Left() {
	e.left()
	e.autoCache = nil
}

func (e *editor) left() {
	if e.cursorIdx == 0 {
		return
	}
	e.cursorIdx--
	if e.cursorIdx <= e.offsetIdx {
		e.offsetIdx -= 16
		if e.offsetIdx < 0 {
			e.offsetIdx = 0
		}
	}
}

func (e *editor) Home() {
	e.cursorIdx = 0
	e.offsetIdx = 0
	e.autoCache = nil
}

func (e *editor) End() {
	e.cursorIdx = len(e.text())
	for e.width < e.textWidth[e.cursorIdx]-e.textWidth[e.offsetIdx]+16 && e.offsetIdx < e.cursorIdx {
		e.offsetIdx++
	}
	e.autoCache = nil
}

// Up shows the previous line of the history.
func (e *editor) Up() {
	if e.lineIdx == 0 {
		return
	}
	e.lineIdx--
	e.computeTextWidth()
	e.offsetIdx = 0
	e.End()
}

// Down shows the next line of the history.
func (e *editor) Down() {
	if e.lineIdx == len(e.history)-1 {
		if len(e.text()) != 0 {
			e.Flush()
		}
		return
	}
	e.lineIdx++
	e.computeTextWidth()
	e.offsetIdx = 0
	e.End()
}

// AutoComplete cycles through the completions of the text under the
// cursor.
func (e *editor) AutoComplete() bool {
	if e.autoCache == nil {
		if e.autoComplete == nil {
			return false
		}
		e.autoCache = e.autoComplete(e.cursorIdx, e.text())
		if len(e.autoCache) == 0 {
			e.autoCache = nil
			return false
		}
		e.autoCacheIdx = 0
	}

	completion := e.autoCache[e.autoCacheIdx]
	e.history[e.lineIdx] = append([]rune(nil), completion.Text...)
	e.cursorIdx = completion.CursorIdx
	e.computeTextWidth()
	e.autoCacheIdx = (e.autoCacheIdx + 1) % len(e.autoCache)
	return true
}

func (e *editor) computeTextWidth() {
	e.textWidth = e.textWidth[:1]
	w := 0
	for _, r := range e.text() {
		w += runeWidth(r)
		e.textWidth = append(e.textWidth, w)
	}
	if len(e.text()) < e.cursorIdx {
		e.cursorIdx = len(e.text())
	}
}

func (e *editor) Draw(screen tcell.Screen, y int) {
	text := e.text()
	x := 0
	for i := e.offsetIdx; i < len(text) && x < e.width; i++ {
		screen.SetContent(x, y, text[i], nil, tcell.StyleDefault)
		x += runeWidth(text[i])
	}
	newRow(screen, y, x, e.width).blank()

	screen.ShowCursor(e.textWidth[e.cursorIdx]-e.textWidth[e.offsetIdx], y)
}
