package ui

import (
	"reflect"
	"testing"
)

var hell = editor{
	history:   [][]rune{{'h', 'e', 'l', 'l'}},
	textWidth: []int{0, 1, 2, 3, 4},
	cursorIdx: 4,
	offsetIdx: 0,
	width:     5,
}

func assertEditorEq(t *testing.T, actual, expected editor) {
	t.Helper()
	if a, e := string(actual.text()), string(expected.text()); a != e {
		t.Errorf("expected text to be %q, got %q", e, a)
	}
	if !reflect.DeepEqual(actual.textWidth, expected.textWidth) {
		t.Errorf("expected textWidth to be %v, got %v", expected.textWidth, actual.textWidth)
	}
	if actual.cursorIdx != expected.cursorIdx {
		t.Errorf("expected cursorIdx to be %d, got %d", expected.cursorIdx, actual.cursorIdx)
	}
	if actual.offsetIdx != expected.offsetIdx {
		t.Errorf("expected offsetIdx to be %d, got %d", expected.offsetIdx, actual.offsetIdx)
	}
	if actual.width != expected.width {
		t.Errorf("expected width to be %d, got %d", expected.width, actual.width)
	}
}

func TestOneLetter(t *testing.T) {
	e := newEditor(5, nil)
	e.PutRune('h')
	assertEditorEq(t, e, editor{
		history:   [][]rune{{'h'}},
		textWidth: []int{0, 1},
		cursorIdx: 1,
		offsetIdx: 0,
		width:     5,
	})
}

func TestFourLetters(t *testing.T) {
	e := newEditor(5, nil)
	e.PutRune('h')
	e.PutRune('e')
	e.PutRune('l')
	e.PutRune('l')
	assertEditorEq(t, e, hell)
}

func TestOneLeft(t *testing.T) {
	e := newEditor(5, nil)
	e.PutRune('h')
	e.PutRune('l')
	e.Left()
	e.PutRune('e')
	e.PutRune('l')
	e.Right()
	assertEditorEq(t, e, hell)
}

func TestOneRem(t *testing.T) {
	e := newEditor(5, nil)
	e.PutRune('h')
	e.PutRune('l')
	e.RemRune()
	e.PutRune('e')
	e.PutRune('l')
	e.PutRune('l')
	assertEditorEq(t, e, hell)
}

func TestLeftAndRem(t *testing.T) {
	e := newEditor(5, nil)
	e.PutRune('h')
	e.PutRune('l')
	e.PutRune('e')
	e.Left()
	e.RemRune()
	e.Right()
	e.PutRune('l')
	e.PutRune('l')
	assertEditorEq(t, e, hell)
}

func TestRemForward(t *testing.T) {
	e := newEditor(5, nil)
	e.PutRune('h')
	e.PutRune('x')
	if e.RemRuneForward() {
		t.Errorf("expected nothing to remove at the end of the line")
	}
	e.Left()
	if !e.RemRuneForward() {
		t.Errorf("expected the rune under the cursor to be removed")
	}
	if string(e.text()) != "h" {
		t.Errorf("expected %q, got %q", "h", string(e.text()))
	}
}

func TestWideRunes(t *testing.T) {
	e := newEditor(10, nil)
	e.PutRune('日')
	e.PutRune('a')
	e.Home()
	e.PutRune('本')
	if !reflect.DeepEqual(e.textWidth, []int{0, 2, 4, 5}) {
		t.Errorf("expected textWidth to be %v, got %v", []int{0, 2, 4, 5}, e.textWidth)
	}
}

func TestHistory(t *testing.T) {
	e := newEditor(20, nil)
	for _, r := range "first" {
		e.PutRune(r)
	}
	if content := e.Flush(); content != "first" {
		t.Errorf("expected %q, got %q", "first", content)
	}
	for _, r := range "draft" {
		e.PutRune(r)
	}

	e.Up()
	if string(e.text()) != "first" {
		t.Errorf("expected %q, got %q", "first", string(e.text()))
	}
	if e.cursorIdx != len("first") {
		t.Errorf("expected cursor at the end, got %d", e.cursorIdx)
	}
	e.Down()
	if string(e.text()) != "draft" {
		t.Errorf("expected %q, got %q", "draft", string(e.text()))
	}
}

func TestAutoComplete(t *testing.T) {
	e := newEditor(20, func(cursorIdx int, text []rune) []Completion {
		return []Completion{
			{Text: []rune("alice: "), CursorIdx: 7},
			{Text: []rune("alex: "), CursorIdx: 6},
		}
	})
	e.PutRune('a')
	e.PutRune('l')

	if !e.AutoComplete() || string(e.text()) != "alice: " {
		t.Errorf("expected %q, got %q", "alice: ", string(e.text()))
	}
	if !e.AutoComplete() || string(e.text()) != "alex: " {
		t.Errorf("expected %q, got %q", "alex: ", string(e.text()))
	}
	if e.cursorIdx != 6 {
		t.Errorf("expected cursorIdx to be 6, got %d", e.cursorIdx)
	}

	none := newEditor(20, nil)
	if none.AutoComplete() {
		t.Errorf("expected no completion without a completer")
	}
}
