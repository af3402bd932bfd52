package ui

import (
	"github.com/gdamore/tcell/v2"
)

const timeFormat = "15:04"

// row paints a single screen line from left to right, between its starting
// column and end (excluded).
type row struct {
	screen tcell.Screen
	x, y   int
	end    int
}

func newRow(screen tcell.Screen, y, x, end int) *row {
	return &row{screen: screen, x: x, y: y, end: end}
}

// full reports whether nothing more fits on the row.
func (r *row) full() bool {
	return r.end <= r.x
}

// blank erases the row from the current column on. The column is unchanged.
func (r *row) blank() {
	for x := r.x; x < r.end; x++ {
		r.screen.SetContent(x, r.y, ' ', nil, tcell.StyleDefault)
	}
}

func (r *row) skip(n int) {
	r.x += n
}

// put draws s and moves past it. A rune that does not fit entirely stops
// the drawing, and put returns false.
func (r *row) put(s StyledString) bool {
	style := tcell.StyleDefault
	nextStyles := s.styles
	for i, c := range s.string {
		for 0 < len(nextStyles) && nextStyles[0].Start <= i {
			style = nextStyles[0].Style
			nextStyles = nextStyles[1:]
		}
		w := runeWidth(c)
		if r.end < r.x+w {
			return false
		}
		r.screen.SetContent(r.x, r.y, c, nil, style)
		r.x += w
	}
	return true
}

// putRight draws s flush right in a column of the given width, which is
// always consumed. s is truncated if needed.
func (r *row) putRight(s StyledString, width int) {
	start := r.x
	s.string = truncate(s.string, width, "…")
	r.x += width - stringWidth(s.string)
	r.put(s)
	r.x = start + width
}

// drawGutter draws the line separating the nicknames from the messages.
func drawGutter(screen tcell.Screen, x, y0, height int) {
	for y := y0; y < y0+height; y++ {
		screen.SetContent(x, y, '│', nil, tcell.StyleDefault)
	}
}
