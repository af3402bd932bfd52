package ui

import (
	"reflect"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
)

func assertNewLines(t *testing.T, body string, width int, expected []int) {
	t.Helper()
	l := Line{Body: PlainString(body)}
	l.invalidate()

	actual := l.NewLines(width)
	if len(actual) == 0 && len(expected) == 0 {
		return
	}
	if !reflect.DeepEqual(actual, expected) {
		t.Errorf("%q (width=%d): expected new lines at %v, got %v", body, width, expected, actual)
	}
}

func TestLineNewLines(t *testing.T) {
	assertNewLines(t, "hello world", 100, nil)
	assertNewLines(t, "hello world", 10, []int{6})
	assertNewLines(t, "have a good day!", 100, nil)
	assertNewLines(t, "have a good day!", 10, []int{7})
	assertNewLines(t, "have a good day!", 6, []int{7, 12})
	assertNewLines(t, "have a good day!", 4, []int{5, 7, 12})
	assertNewLines(t, "aaaaaaaaaaaa", 5, []int{5, 10})
	assertNewLines(t, "ab cdefghijkl", 5, []int{3, 7})
}

func assertHeight(t *testing.T, body string, width, expected int) {
	t.Helper()
	l := Line{Body: PlainString(body)}
	l.invalidate()
	if actual := l.Height(width); actual != expected {
		t.Errorf("%q (width=%d) expected to take %d rows, takes %d", body, width, expected, actual)
	}
}

func TestLineHeight(t *testing.T) {
	assertHeight(t, "hello world", 100, 1)
	assertHeight(t, "hello world", 10, 2)
	assertHeight(t, "have a good day!", 6, 3)
	assertHeight(t, "have a good day!", 4, 4)
}

func TestBufferListAdd(t *testing.T) {
	bs := NewBufferList(80, 24)

	if i, ok := bs.Add("0/#go"); i != 1 || !ok {
		t.Errorf("expected (1, true), got (%d, %t)", i, ok)
	}
	if i, ok := bs.Add("0/#go"); i != 1 || ok {
		t.Errorf("expected (1, false), got (%d, %t)", i, ok)
	}
	if bs.Remove(Overlay) {
		t.Errorf("expected the overlay buffer to stay")
	}

	bs.Next()
	if bs.Current() != "0/#go" {
		t.Errorf("expected %q, got %q", "0/#go", bs.Current())
	}
	if !bs.Remove("0/#go") {
		t.Errorf("expected buffer to be removed")
	}
	if bs.Current() != Overlay {
		t.Errorf("expected %q, got %q", Overlay, bs.Current())
	}
}

func TestBufferListUnread(t *testing.T) {
	bs := NewBufferList(80, 24)
	now := time.Now()

	bs.AddLine("0/#go", Line{At: now, Head: "bob", Body: PlainString("hi")})
	bs.AddLine("0/#go", Line{At: now, Head: "bob", Body: PlainString("alice: ping"), Highlight: true})
	bs.AddLine(Overlay, Line{At: now, Head: "--", Body: PlainString("welcome")})

	b := bs.list[1]
	if !b.unread || b.highlights != 1 {
		t.Errorf("expected unread buffer with 1 highlight, got %t and %d", b.unread, b.highlights)
	}
	if bs.list[0].unread {
		t.Errorf("expected the current buffer to stay read")
	}

	if !bs.Jump("#GO") {
		t.Fatalf("expected jump to succeed")
	}
	if b := bs.list[1]; b.unread || b.highlights != 0 {
		t.Errorf("expected buffer to be read after jumping to it")
	}
}

func TestBufferListMerge(t *testing.T) {
	bs := NewBufferList(80, 24)
	now := time.Now()

	bs.AddLine(Overlay, Line{At: now, Head: "--", Body: PlainString("+bob"), Mergeable: true})
	bs.AddLine(Overlay, Line{At: now, Head: "--", Body: PlainString("+carol  "), Mergeable: true})
	bs.AddLine(Overlay, Line{At: now, Head: "bob", Body: PlainString("hi")})

	lines := bs.list[0].lines
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Body.String() != "+bob  +carol" {
		t.Errorf("expected %q, got %q", "+bob  +carol", lines[0].Body.String())
	}
}

func TestBufferListDraw(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	defer screen.Fini()
	screen.SetSize(40, 5)

	bs := NewBufferList(40, 4)
	bs.AddLine(Overlay, Line{At: time.Now(), Head: "bob", Body: PlainString("hello")})
	bs.DrawTimeline(screen)
	bs.DrawStatus(screen, 4)
	screen.Show()

	cells, width, _ := screen.GetContents()
	row := func(y int) []rune {
		var s []rune
		for x := 0; x < width; x++ {
			s = append(s, cells[y*width+x].Runes...)
		}
		return s
	}

	headX := 6 + nickColWidth - len("bob")
	if got := string(row(3)[headX : 7+nickColWidth+len("hello")]); got != "bob│hello" {
		t.Errorf("expected %q, got %q", "bob│hello", got)
	}
	if got := string(row(4)[:len(Overlay)]); got != Overlay {
		t.Errorf("expected %q, got %q", Overlay, got)
	}
}
