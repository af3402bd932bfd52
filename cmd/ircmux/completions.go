package main

import (
	"sort"
	"strings"

	"git.sr.ht/~taiite/ircmux/ui"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

func (app *App) completions(cursorIdx int, text []rune) []ui.Completion {
	var cs []ui.Completion
	if len(text) == 0 {
		return cs
	}
	buffer := app.win.CurrentBuffer()
	cs = app.completionsCommands(cs, cursorIdx, text)
	cs = app.completionsTarget(cs, cursorIdx, text, "/msg ", app.knownNicks(buffer))
	cs = app.completionsTarget(cs, cursorIdx, text, "/whois ", app.knownNicks(buffer))
	cs = app.completionsTarget(cs, cursorIdx, text, "/buffer ", app.bufferNames())
	if len(cs) == 0 {
		cs = app.completionsChannelMembers(cs, cursorIdx, text, buffer)
	}
	return cs
}

// completionsCommands completes the command name under the cursor, best
// fuzzy matches first.
func (app *App) completionsCommands(cs []ui.Completion, cursorIdx int, text []rune) []ui.Completion {
	if text[0] != '/' {
		return cs
	}
	for i := 1; i < cursorIdx; i++ {
		if text[i] == ' ' {
			return cs
		}
	}
	word := string(text[1:cursorIdx])
	if word == "" {
		return cs
	}

	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, strings.ToLower(name))
	}
	sort.Strings(names)
	ranks := fuzzy.RankFindNormalizedFold(word, names)
	sort.Stable(ranks)
	for _, rank := range ranks {
		cs = append(cs, replaceWord(text, 1, cursorIdx, []rune(names[rank.OriginalIndex]+" ")))
	}
	return cs
}

// completionsTarget completes the first argument of the command prefix
// with one of candidates.
func (app *App) completionsTarget(cs []ui.Completion, cursorIdx int, text []rune, prefix string, candidates []string) []ui.Completion {
	p := []rune(prefix)
	if !hasPrefix(text, p) || cursorIdx < len(p) {
		return cs
	}
	for i := len(p); i < cursorIdx; i++ {
		if text[i] == ' ' {
			return cs
		}
	}
	word := string(text[len(p):cursorIdx])
	if word == "" {
		return cs
	}
	ranks := fuzzy.RankFindNormalizedFold(word, candidates)
	sort.Stable(ranks)
	for _, rank := range ranks {
		cs = append(cs, replaceWord(text, len(p), cursorIdx, []rune(rank.Target+" ")))
	}
	return cs
}

func (app *App) completionsChannelMembers(cs []ui.Completion, cursorIdx int, text []rune, buffer string) []ui.Completion {
	var start int
	for start = cursorIdx - 1; 0 <= start; start-- {
		if text[start] == ' ' {
			break
		}
	}
	start++
	word := strings.ToLower(string(text[start:cursorIdx]))
	if word == "" {
		return cs
	}
	ch, err := app.currentChannel(buffer)
	if err != nil {
		return cs
	}
	for _, member := range ch.members {
		if !strings.HasPrefix(strings.ToLower(member.Nick), word) {
			continue
		}
		nickComp := []rune(member.Nick)
		if start == 0 {
			nickComp = append(nickComp, ':')
		}
		nickComp = append(nickComp, ' ')
		cs = append(cs, replaceWord(text, start, cursorIdx, nickComp))
	}
	return cs
}

// knownNicks returns the members of every channel of the connection of
// buffer.
func (app *App) knownNicks(buffer string) []string {
	c, err := app.currentConn(buffer)
	if err != nil {
		return nil
	}
	seen := map[string]bool{}
	var nicks []string
	for _, ch := range c.channels {
		for _, member := range ch.members {
			key := strings.ToLower(member.Nick)
			if !seen[key] {
				seen[key] = true
				nicks = append(nicks, member.Nick)
			}
		}
	}
	sort.Strings(nicks)
	return nicks
}

func (app *App) bufferNames() []string {
	var names []string
	for _, c := range app.conns {
		names = append(names, c.buffer())
		for _, ch := range c.channels {
			names = append(names, bufferName(c.id, ch.name))
		}
	}
	sort.Strings(names)
	return names
}

// replaceWord returns text where the runes between start and end are
// replaced by word, with the cursor right after word.
func replaceWord(text []rune, start, end int, word []rune) ui.Completion {
	c := make([]rune, 0, len(text)-(end-start)+len(word))
	c = append(c, text[:start]...)
	c = append(c, word...)
	c = append(c, text[end:]...)
	return ui.Completion{
		Text:      c,
		CursorIdx: start + len(word),
	}
}

func hasPrefix(s, prefix []rune) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
