package ui

import (
	"hash/fnv"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"mvdan.cc/xurls/v2"
)

var condition = runewidth.Condition{}

func runeWidth(r rune) int {
	return condition.RuneWidth(r)
}

func stringWidth(s string) int {
	return condition.StringWidth(s)
}

func truncate(s string, w int, tail string) string {
	return condition.Truncate(s, w, tail)
}

// StringWidth returns the width of s on screen, IRC formatting excluded.
func StringWidth(s string) int {
	return stringWidth(IRCString(s).string)
}

type rangedStyle struct {
	Start int // byte index at which Style starts applying.
	Style tcell.Style
}

// StyledString is a string with formatting. It does not contain control
// characters.
type StyledString struct {
	string string
	styles []rangedStyle // sorted by Start.
}

func PlainString(s string) StyledString {
	return StyledString{string: s}
}

func Styled(s string, style tcell.Style) StyledString {
	if style == tcell.StyleDefault || s == "" {
		return PlainString(s)
	}
	return StyledString{
		string: s,
		styles: []rangedStyle{{Start: 0, Style: style}},
	}
}

func (s StyledString) String() string {
	return s.string
}

// styleAt returns the style of the byte at index i.
func (s StyledString) styleAt(i int) tcell.Style {
	st := tcell.StyleDefault
	for _, rs := range s.styles {
		if i < rs.Start {
			break
		}
		st = rs.Style
	}
	return st
}

// Concat appends other to s.
func (s StyledString) Concat(other StyledString) StyledString {
	var sb StyledStringBuilder
	sb.WriteStyledString(s)
	sb.WriteStyledString(other)
	return sb.StyledString()
}

type StyledStringBuilder struct {
	strings.Builder
	styles []rangedStyle
}

// SetStyle sets the style of the text written next.
func (sb *StyledStringBuilder) SetStyle(style tcell.Style) {
	last := tcell.StyleDefault
	if n := len(sb.styles); n != 0 {
		last = sb.styles[n-1].Style
		if sb.styles[n-1].Start == sb.Len() {
			sb.styles = sb.styles[:n-1]
			if n--; n != 0 {
				last = sb.styles[n-1].Style
			} else {
				last = tcell.StyleDefault
			}
		}
	}
	if style == last {
		return
	}
	sb.styles = append(sb.styles, rangedStyle{Start: sb.Len(), Style: style})
}

func (sb *StyledStringBuilder) WriteStyledString(s StyledString) {
	sb.SetStyle(tcell.StyleDefault)
	written := 0
	for _, rs := range s.styles {
		sb.WriteString(s.string[written:rs.Start])
		written = rs.Start
		sb.SetStyle(rs.Style)
	}
	sb.WriteString(s.string[written:])
}

func (sb *StyledStringBuilder) StyledString() StyledString {
	styles := sb.styles
	if n := len(styles); n != 0 && styles[n-1].Start == sb.Len() {
		styles = styles[:n-1]
	}
	return StyledString{
		string: sb.String(),
		styles: styles,
	}
}

var urlRegexp = xurls.Strict()

// IRCString parses the IRC formatting of raw. Links are underlined.
func IRCString(raw string) StyledString {
	var sb StyledStringBuilder
	buf := newStyleBuffer()
	for _, r := range raw {
		st, ok := buf.WriteRune(r)
		if ok == 0 {
			continue
		}
		sb.SetStyle(st)
		if 1 < ok {
			sb.WriteRune(',')
		}
		sb.WriteRune(r)
	}
	return underlineLinks(sb.StyledString())
}

func underlineLinks(s StyledString) StyledString {
	links := urlRegexp.FindAllStringIndex(s.string, -1)
	if len(links) == 0 {
		return s
	}

	bounds := make([]int, 0, len(s.styles)+2*len(links))
	for _, rs := range s.styles {
		bounds = append(bounds, rs.Start)
	}
	for _, link := range links {
		bounds = append(bounds, link[0], link[1])
	}
	sort.Ints(bounds)

	inLink := func(i int) bool {
		for _, link := range links {
			if link[0] <= i && i < link[1] {
				return true
			}
		}
		return false
	}

	var sb StyledStringBuilder
	for i, start := range bounds {
		end := len(s.string)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		if i == 0 && start != 0 {
			sb.WriteString(s.string[:start])
		}
		if start == end {
			continue
		}
		st := s.styleAt(start)
		if inLink(start) {
			st = st.Underline(true)
		}
		sb.SetStyle(st)
		sb.WriteString(s.string[start:end])
	}
	return sb.StyledString()
}

// styleBuffer interprets IRC formatting characters one rune at a time.
type styleBuffer struct {
	st            tcell.Style
	color         colorBuffer
	bold          bool
	reverse       bool
	italic        bool
	strikethrough bool
	underline     bool
}

func newStyleBuffer() styleBuffer {
	var sb styleBuffer
	sb.Reset()
	return sb
}

func (sb *styleBuffer) Reset() {
	sb.color.Reset()
	sb.st = tcell.StyleDefault
	sb.bold = false
	sb.reverse = false
	sb.italic = false
	sb.strikethrough = false
	sb.underline = false
}

// WriteRune returns the style of r and how many runes must be printed: 0
// for formatting characters, 2 when a comma swallowed by a color code must
// be printed before r.
func (sb *styleBuffer) WriteRune(r rune) (st tcell.Style, ok int) {
	switch r {
	case 0x0F:
		sb.Reset()
		return sb.st, 0
	case 0x02:
		sb.bold = !sb.bold
		sb.st = sb.st.Bold(sb.bold)
		return sb.st, 0
	case 0x16:
		sb.reverse = !sb.reverse
		sb.st = sb.st.Reverse(sb.reverse)
		return sb.st, 0
	case 0x1D:
		sb.italic = !sb.italic
		sb.st = sb.st.Italic(sb.italic)
		return sb.st, 0
	case 0x1E:
		sb.strikethrough = !sb.strikethrough
		sb.st = sb.st.StrikeThrough(sb.strikethrough)
		return sb.st, 0
	case 0x1F:
		sb.underline = !sb.underline
		sb.st = sb.st.Underline(sb.underline)
		return sb.st, 0
	}

	if ok = sb.color.WriteRune(r); ok != 0 && sb.color.pending {
		sb.st = sb.color.Style(sb.st)
		sb.color.pending = false
	}
	return sb.st, ok
}

type colorBuffer struct {
	state  int
	fg, bg int

	// pending is set while a color code has not been applied yet.
	pending bool
}

func (cb *colorBuffer) Reset() {
	cb.state = 0
	cb.pending = false
	cb.fg = -1
	cb.bg = -1
}

func (cb *colorBuffer) Style(st tcell.Style) tcell.Style {
	return st.Foreground(colorFromCode(cb.fg)).Background(colorFromCode(cb.bg))
}

// WriteRune follows the "\x03[fg[,bg]]" syntax.
func (cb *colorBuffer) WriteRune(r rune) (ok int) {
	switch cb.state {
	case 1:
		if '0' <= r && r <= '9' {
			cb.fg = int(r - '0')
			cb.state = 2
			return
		}
	case 2:
		if '0' <= r && r <= '9' {
			cb.fg = 10*cb.fg + int(r-'0')
			cb.state = 3
			return
		}
		if r == ',' {
			cb.state = 4
			return
		}
	case 3:
		if r == ',' {
			cb.state = 4
			return
		}
	case 4:
		if '0' <= r && r <= '9' {
			cb.bg = int(r - '0')
			cb.state = 5
			return
		}
		ok++
	case 5:
		cb.state = 0
		if '0' <= r && r <= '9' {
			cb.bg = 10*cb.bg + int(r-'0')
			return
		}
	}

	if r == 0x03 {
		cb.state = 1
		cb.pending = true
		cb.fg = -1
		cb.bg = -1
		return
	}

	cb.state = 0
	ok++
	return
}

// See <https://modern.ircdocs.horse/formatting.html>.
var baseCodes = []tcell.Color{
	tcell.ColorWhite, tcell.ColorBlack, tcell.ColorBlue, tcell.ColorGreen,
	tcell.ColorRed, tcell.ColorBrown, tcell.ColorPurple, tcell.ColorOrange,
	tcell.ColorYellow, tcell.ColorLightGreen, tcell.ColorTeal, tcell.ColorLightCyan,
	tcell.ColorLightBlue, tcell.ColorPink, tcell.ColorGrey, tcell.ColorLightGrey,
}

var hexCodes = []int32{
	0x470000, 0x472100, 0x474700, 0x324700, 0x004700, 0x00472c, 0x004747, 0x002747, 0x000047, 0x2e0047, 0x470047, 0x47002a,
	0x740000, 0x743a00, 0x747400, 0x517400, 0x007400, 0x007449, 0x007474, 0x004074, 0x000074, 0x4b0074, 0x740074, 0x740045,
	0xb50000, 0xb56300, 0xb5b500, 0x7db500, 0x00b500, 0x00b571, 0x00b5b5, 0x0063b5, 0x0000b5, 0x7500b5, 0xb500b5, 0xb5006b,
	0xff0000, 0xff8c00, 0xffff00, 0xb2ff00, 0x00ff00, 0x00ffa0, 0x00ffff, 0x008cff, 0x0000ff, 0xa500ff, 0xff00ff, 0xff0098,
	0xff5959, 0xffb459, 0xffff71, 0xcfff60, 0x6fff6f, 0x65ffc9, 0x6dffff, 0x59b4ff, 0x5959ff, 0xc459ff, 0xff66ff, 0xff59bc,
	0xff9c9c, 0xffd39c, 0xffff9c, 0xe2ff9c, 0x9cff9c, 0x9cffdb, 0x9cffff, 0x9cd3ff, 0x9c9cff, 0xdc9cff, 0xff9cff, 0xff94d3,
	0x000000, 0x131313, 0x282828, 0x363636, 0x4d4d4d, 0x656565, 0x818181, 0x9f9f9f, 0xbcbcbc, 0xe2e2e2, 0xffffff,
}

func colorFromCode(code int) tcell.Color {
	switch {
	case code < 0 || 99 <= code:
		return tcell.ColorDefault
	case code < 16:
		return baseCodes[code]
	default:
		return tcell.NewHexColor(hexCodes[code-16])
	}
}

// Codes unreadable on common terminal backgrounds.
var identColorBlacklist = []int{1, 8, 16, 27, 28, 88, 89, 90, 91}

// IdentColor returns the color of a nickname or channel name. The same
// name always gets the same color.
func IdentColor(s string) tcell.Color {
	h := fnv.New32()
	_, _ = h.Write([]byte(s))

	code := int(h.Sum32() % uint32(99-len(identColorBlacklist)))
	for _, c := range identColorBlacklist {
		if c <= code {
			code++
		}
	}
	return colorFromCode(code)
}
