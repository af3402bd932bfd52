package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func assertIRCString(t *testing.T, input string, expected StyledString) {
	t.Helper()
	actual := IRCString(input)
	if actual.string != expected.string {
		t.Errorf("%q: expected string %q, got %q", input, expected.string, actual.string)
	}
	if len(actual.styles) != len(expected.styles) {
		t.Errorf("%q: expected %d styles, got %d", input, len(expected.styles), len(actual.styles))
		return
	}
	for i := range actual.styles {
		if actual.styles[i] != expected.styles[i] {
			t.Errorf("%q: style #%d expected to be %+v, got %+v", input, i, expected.styles[i], actual.styles[i])
		}
	}
}

func TestIRCString(t *testing.T) {
	assertIRCString(t, "", StyledString{
		string: "",
		styles: nil,
	})

	assertIRCString(t, "hello", StyledString{
		string: "hello",
		styles: nil,
	})
	assertIRCString(t, "\x02hello", StyledString{
		string: "hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Bold(true)},
		},
	})
	assertIRCString(t, "\x035hello", StyledString{
		string: "hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown)},
		},
	})
	assertIRCString(t, "\x0305hello", StyledString{
		string: "hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown)},
		},
	})
	assertIRCString(t, "\x0305,0hello", StyledString{
		string: "hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown).Background(tcell.ColorWhite)},
		},
	})
	assertIRCString(t, "\x035,00hello", StyledString{
		string: "hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown).Background(tcell.ColorWhite)},
		},
	})
	assertIRCString(t, "\x0305,00hello", StyledString{
		string: "hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown).Background(tcell.ColorWhite)},
		},
	})

	assertIRCString(t, "\x035,hello", StyledString{
		string: ",hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown)},
		},
	})
	assertIRCString(t, "\x0305,hello", StyledString{
		string: ",hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown)},
		},
	})
	assertIRCString(t, "\x03050hello", StyledString{
		string: "0hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown)},
		},
	})
	assertIRCString(t, "\x0305,000hello", StyledString{
		string: "0hello",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Foreground(tcell.ColorBrown).Background(tcell.ColorWhite)},
		},
	})

	assertIRCString(t, "\x02bold\x02 plain", StyledString{
		string: "bold plain",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Bold(true)},
			{Start: 4, Style: tcell.StyleDefault},
		},
	})
	assertIRCString(t, "\x02\x1dboth\x0f", StyledString{
		string: "both",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Bold(true).Italic(true)},
		},
	})
}

func TestIRCStringLinks(t *testing.T) {
	assertIRCString(t, "see https://example.org/x now", StyledString{
		string: "see https://example.org/x now",
		styles: []rangedStyle{
			{Start: 4, Style: tcell.StyleDefault.Underline(true)},
			{Start: 25, Style: tcell.StyleDefault},
		},
	})
	assertIRCString(t, "\x02https://example.org", StyledString{
		string: "https://example.org",
		styles: []rangedStyle{
			{Start: 0, Style: tcell.StyleDefault.Bold(true).Underline(true)},
		},
	})
}

func TestStringWidth(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"", 0},
		{"hello", 5},
		{"\x0305,00hello", 5},
		{"\x035,hi", 3},
		{"\x02日本\x02", 4},
	}
	for _, test := range tests {
		if actual := StringWidth(test.input); actual != test.expected {
			t.Errorf("%q: expected width %d, got %d", test.input, test.expected, actual)
		}
	}
}

func TestStyledConcat(t *testing.T) {
	bold := tcell.StyleDefault.Bold(true)
	s := Styled("ab", bold).Concat(PlainString("cd")).Concat(Styled("ef", bold))
	expected := StyledString{
		string: "abcdef",
		styles: []rangedStyle{
			{Start: 0, Style: bold},
			{Start: 2, Style: tcell.StyleDefault},
			{Start: 4, Style: bold},
		},
	}
	if s.string != expected.string || len(s.styles) != len(expected.styles) {
		t.Fatalf("expected %+v, got %+v", expected, s)
	}
	for i := range s.styles {
		if s.styles[i] != expected.styles[i] {
			t.Errorf("style #%d: expected %+v, got %+v", i, expected.styles[i], s.styles[i])
		}
	}
}

func TestIdentColor(t *testing.T) {
	if IdentColor("alice") != IdentColor("alice") {
		t.Errorf("expected the same name to get the same color")
	}
	for _, name := range []string{"alice", "bob", "#go", "", "irc.example.org"} {
		if IdentColor(name) == tcell.ColorBlack {
			t.Errorf("%q: expected a readable color, got black", name)
		}
	}
}
