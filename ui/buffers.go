package ui

import (
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
)

const Overlay = "home"

func IsSplitRune(r rune) bool {
	return r == ' ' || r == '\t'
}

type Line struct {
	At        time.Time
	Head      string
	Body      StyledString
	Highlight bool

	// Mergeable lines are appended to the previous line when it is
	// mergeable too, such as consecutive joins.
	Mergeable bool

	width    int
	newLines []int
}

// NewLines returns the byte indexes of Body at which a new row starts when
// Body is drawn in the given width. Words are not broken unless they are
// wider than width.
func (l *Line) NewLines(width int) []int {
	if l.width == width {
		return l.newLines
	}
	l.width = width
	l.newLines = l.newLines[:0]
	if width <= 0 {
		return l.newLines
	}

	x := 0
	wordStart := -1 // byte index of the word being laid out.
	wordX := 0      // x at which that word starts.
	for i, r := range l.Body.string {
		rw := runeWidth(r)
		if IsSplitRune(r) {
			wordStart = -1
			if width < x+rw {
				l.newLines = append(l.newLines, i+len(string(r)))
				x = 0
				continue
			}
			x += rw
			continue
		}
		if wordStart < 0 {
			wordStart = i
			wordX = x
		}
		if x+rw <= width {
			x += rw
			continue
		}
		if 0 < wordX && (len(l.newLines) == 0 || l.newLines[len(l.newLines)-1] < wordStart) {
			l.newLines = append(l.newLines, wordStart)
			x = x - wordX + rw
			wordX = 0
		} else {
			l.newLines = append(l.newLines, i)
			x = rw
			wordStart = i
			wordX = 0
		}
	}
	return l.newLines
}

func (l *Line) Height(width int) int {
	return len(l.NewLines(width)) + 1
}

func (l *Line) invalidate() {
	l.width = -1
}

type buffer struct {
	title      string
	highlights int
	unread     bool

	lines []Line

	// scrollAmt is the number of rows hidden below the screen.
	scrollAmt int
	isAtTop   bool
}

type BufferList struct {
	list    []buffer
	current int

	tlWidth  int
	tlHeight int
}

func NewBufferList(tlWidth, tlHeight int) BufferList {
	return BufferList{
		list:     []buffer{{title: Overlay}},
		tlWidth:  tlWidth,
		tlHeight: tlHeight,
	}
}

func (bs *BufferList) Resize(tlWidth, tlHeight int) {
	bs.tlWidth = tlWidth
	bs.tlHeight = tlHeight
}

func (bs *BufferList) Current() string {
	return bs.list[bs.current].title
}

func (bs *BufferList) Next() {
	bs.current = (bs.current + 1) % len(bs.list)
	bs.list[bs.current].highlights = 0
	bs.list[bs.current].unread = false
}

func (bs *BufferList) Previous() {
	bs.current = (bs.current - 1 + len(bs.list)) % len(bs.list)
	bs.list[bs.current].highlights = 0
	bs.list[bs.current].unread = false
}

// Jump selects the first buffer whose title contains sub, case-insensitively.
func (bs *BufferList) Jump(sub string) bool {
	sub = strings.ToLower(sub)
	for i, b := range bs.list {
		if strings.Contains(strings.ToLower(b.title), sub) {
			bs.current = i
			bs.list[i].highlights = 0
			bs.list[i].unread = false
			return true
		}
	}
	return false
}

// Add creates the buffer title unless it exists. It returns the index of
// the buffer and whether it was created.
func (bs *BufferList) Add(title string) (int, bool) {
	if i := bs.idx(title); 0 <= i {
		return i, false
	}
	bs.list = append(bs.list, buffer{title: title})
	return len(bs.list) - 1, true
}

// Remove deletes the buffer title. The overlay buffer cannot be removed.
func (bs *BufferList) Remove(title string) bool {
	i := bs.idx(title)
	if i <= 0 {
		return false
	}
	bs.list = append(bs.list[:i], bs.list[i+1:]...)
	if len(bs.list) <= bs.current {
		bs.current = len(bs.list) - 1
	}
	return true
}

// AddLine appends line to the buffer title, creating it if needed.
func (bs *BufferList) AddLine(title string, line Line) {
	i, _ := bs.Add(title)
	b := &bs.list[i]
	n := len(b.lines)

	line.Body.string = strings.TrimRight(line.Body.string, "\t ")
	line.invalidate()

	if line.Mergeable && n != 0 && b.lines[n-1].Mergeable {
		last := &b.lines[n-1]
		last.Body = last.Body.Concat(PlainString("  ")).Concat(line.Body)
		last.At = line.At
		last.invalidate()
	} else {
		b.lines = append(b.lines, line)
		if i == bs.current && 0 < b.scrollAmt {
			b.scrollAmt += line.Height(bs.textWidth())
		}
	}

	if i != bs.current {
		b.unread = true
		if line.Highlight {
			b.highlights++
		}
	}
}

func (bs *BufferList) ScrollUp(n int) {
	b := &bs.list[bs.current]
	if b.isAtTop {
		return
	}
	b.scrollAmt += n
}

func (bs *BufferList) ScrollDown(n int) {
	b := &bs.list[bs.current]
	b.scrollAmt -= n
	if b.scrollAmt < 0 {
		b.scrollAmt = 0
	}
}

func (bs *BufferList) idx(title string) int {
	for i, b := range bs.list {
		if b.title == title {
			return i
		}
	}
	return -1
}

func (bs *BufferList) textWidth() int {
	return bs.tlWidth - 7 - nickColWidth
}

const nickColWidth = 12

// DrawTimeline draws the lines of the current buffer, newest at the
// bottom, in the rows [0, tlHeight).
func (bs *BufferList) DrawTimeline(screen tcell.Screen) {
	for y := 0; y < bs.tlHeight; y++ {
		newRow(screen, y, 0, bs.tlWidth).blank()
	}

	b := &bs.list[bs.current]
	textX := 7 + nickColWidth
	width := bs.textWidth()
	if width <= 0 {
		return
	}

	y0 := bs.tlHeight + b.scrollAmt
	for i := len(b.lines) - 1; 0 <= i; i-- {
		if y0 < 0 {
			break
		}
		line := &b.lines[i]
		newLines := line.NewLines(width)
		y0 -= len(newLines) + 1
		if bs.tlHeight <= y0 {
			continue
		}

		if 0 <= y0 {
			r := newRow(screen, y0, 0, textX-1)
			r.put(Styled(line.At.Format(timeFormat), tcell.StyleDefault.Bold(true)))
			r.skip(1)
			head := Styled(line.Head, tcell.StyleDefault.Foreground(IdentColor(line.Head)))
			if line.Highlight {
				head = Styled(line.Head, tcell.StyleDefault.Reverse(true))
			}
			r.putRight(head, nickColWidth)
		}
		drawGutter(screen, textX-1, max(y0, 0), min(len(newLines)+1, bs.tlHeight-max(y0, 0)))

		x, y := textX, y0
		style := tcell.StyleDefault
		nextStyles := line.Body.styles
		for j, r := range line.Body.string {
			if 0 < len(newLines) && newLines[0] == j {
				newLines = newLines[1:]
				x = textX
				y++
			}
			for 0 < len(nextStyles) && nextStyles[0].Start <= j {
				style = nextStyles[0].Style
				nextStyles = nextStyles[1:]
			}
			if x == textX && IsSplitRune(r) {
				continue
			}
			if 0 <= y && y < bs.tlHeight {
				screen.SetContent(x, y, r, nil, style)
			}
			x += runeWidth(r)
		}
	}

	b.isAtTop = 0 <= y0
}

// DrawStatus draws the list of buffers on row y.
func (bs *BufferList) DrawStatus(screen tcell.Screen, y int) {
	r := newRow(screen, y, 0, bs.tlWidth)
	r.blank()

	start := 0
	width := 0
	for i := bs.current; 0 <= i; i-- {
		width += stringWidth(bs.list[i].title) + 4
		if bs.tlWidth < width {
			start = i + 1
			break
		}
	}

	for i := start; i < len(bs.list); i++ {
		b := &bs.list[i]
		st := tcell.StyleDefault
		if b.unread {
			st = st.Bold(true)
		}
		if i == bs.current {
			st = st.Underline(true)
		}
		r.put(Styled(b.title, st))
		if 0 < b.highlights {
			r.skip(1)
			r.put(Styled(strconv.Itoa(b.highlights), tcell.StyleDefault.Reverse(true)))
		}
		r.skip(1)
		if r.full() {
			break
		}
	}
}
