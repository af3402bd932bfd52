package main

import (
	"fmt"
	"sort"
	"strings"

	"git.sr.ht/~taiite/ircmux"
	"git.sr.ht/~taiite/ircmux/ui"
	"github.com/gdamore/tcell/v2"
)

type command struct {
	AllowHome bool
	MinArgs   int
	MaxArgs   int
	Usage     string
	Desc      string
	Handle    func(app *App, buffer string, args []string) error
}

type commandSet map[string]*command

var commands commandSet

func init() {
	commands = commandSet{
		"HELP": {
			AllowHome: true,
			MaxArgs:   1,
			Usage:     "[command]",
			Desc:      "show the list of commands, or how to use the given one",
			Handle:    commandDoHelp,
		},
		"CONNECT": {
			AllowHome: true,
			MinArgs:   1,
			MaxArgs:   2,
			Usage:     "<server> [nick]",
			Desc:      "open a new connection",
			Handle:    commandDoConnect,
		},
		"DISCONNECT": {
			AllowHome: true,
			MaxArgs:   1,
			Usage:     "[reason]",
			Desc:      "close the connection of the current buffer",
			Handle:    commandDoDisconnect,
		},
		"JOIN": {
			AllowHome: true,
			MinArgs:   1,
			MaxArgs:   1,
			Usage:     "<channel>",
			Desc:      "join a channel",
			Handle:    commandDoJoin,
		},
		"PART": {
			AllowHome: true,
			MaxArgs:   2,
			Usage:     "[channel] [reason]",
			Desc:      "part a channel",
			Handle:    commandDoPart,
		},
		"MSG": {
			AllowHome: true,
			MinArgs:   2,
			MaxArgs:   2,
			Usage:     "<target> <message>",
			Desc:      "send a message to the given target",
			Handle:    commandDoMsg,
		},
		"ME": {
			AllowHome: true,
			MinArgs:   1,
			MaxArgs:   1,
			Usage:     "<message>",
			Desc:      "send an action (reply to last query if sent from home)",
			Handle:    commandDoMe,
		},
		"REPLY": {
			AllowHome: true,
			MinArgs:   1,
			MaxArgs:   1,
			Usage:     "<message>",
			Desc:      "reply to the last query",
			Handle:    commandDoReply,
		},
		"WHOIS": {
			AllowHome: true,
			MinArgs:   1,
			MaxArgs:   1,
			Usage:     "<nick>",
			Desc:      "show information about a user",
			Handle:    commandDoWhois,
		},
		"LIST": {
			AllowHome: true,
			Desc:      "list the channels of the server",
			Handle:    commandDoList,
		},
		"NAMES": {
			Desc:   "show the member list of the current channel",
			Handle: commandDoNames,
		},
		"TOPIC": {
			Desc:   "show the topic of the current channel",
			Handle: commandDoTopic,
		},
		"BUFFER": {
			AllowHome: true,
			MinArgs:   1,
			MaxArgs:   1,
			Usage:     "<name>",
			Desc:      "switch to the buffer containing a substring",
			Handle:    commandDoBuffer,
		},
		"QUIT": {
			AllowHome: true,
			MaxArgs:   1,
			Usage:     "[reason]",
			Desc:      "close every connection and quit",
			Handle:    commandDoQuit,
		},
	}
}

func isChannel(name string) bool {
	return name != "" && strings.ContainsRune("#&+!", rune(name[0]))
}

func noCommand(app *App, buffer, content string) error {
	target := app.bufferTarget(buffer)
	if target == "" {
		return fmt.Errorf("can't send message to this buffer")
	}
	c, err := app.currentConn(buffer)
	if err != nil {
		return err
	}
	app.submit(ircmux.Say{Connection: c.id, Target: target, Message: content})
	return nil
}

func commandDoHelp(app *App, buffer string, args []string) error {
	var names []string
	for name, cmd := range commands {
		if len(args) != 0 && !strings.Contains(name, strings.ToUpper(args[0])) {
			continue
		}
		if cmd.Desc != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	if len(args) == 0 {
		app.addLineNow(buffer, ui.Line{Head: "--", Body: ui.PlainString("Available commands:")})
	} else {
		app.addLineNow(buffer, ui.Line{
			Head: "--",
			Body: ui.PlainString(fmt.Sprintf("Commands that match %q:", strings.ToUpper(args[0]))),
		})
	}
	if len(names) == 0 && len(args) != 0 {
		app.addLineNow(buffer, ui.Line{Body: ui.PlainString(fmt.Sprintf("  no command matches %q", args[0]))})
		return nil
	}
	for _, name := range names {
		cmd := commands[name]
		var usage ui.StyledStringBuilder
		usage.Grow(len(name) + 3 + len(cmd.Usage))
		usage.WriteString("  ")
		usage.SetStyle(tcell.StyleDefault.Bold(true))
		usage.WriteString(name)
		usage.SetStyle(tcell.StyleDefault)
		usage.WriteByte(' ')
		usage.WriteString(cmd.Usage)
		app.addLineNow(buffer, ui.Line{Body: usage.StyledString()})
		app.addLineNow(buffer, ui.Line{Body: ui.PlainString("    " + cmd.Desc)})
	}
	return nil
}

func commandDoConnect(app *App, buffer string, args []string) error {
	nick := app.cfg.Nick
	if len(args) == 2 {
		nick = args[1]
	}
	if nick == "" {
		return fmt.Errorf("no nickname given and no default nickname configured")
	}
	if i := strings.IndexAny(nick, " :@!*?"); i >= 0 {
		return fmt.Errorf("illegal char %q in nickname", nick[i])
	}
	app.submit(ircmux.Connect{Server: args[0], Nick: nick})
	return nil
}

func commandDoDisconnect(app *App, buffer string, args []string) error {
	c, err := app.currentConn(buffer)
	if err != nil {
		return err
	}
	reason := app.quitMessage
	if len(args) != 0 {
		reason = args[0]
	}
	app.submit(ircmux.Disconnect{Connection: c.id, Message: reason})
	return nil
}

func commandDoJoin(app *App, buffer string, args []string) error {
	c, err := app.currentConn(buffer)
	if err != nil {
		return err
	}
	app.submit(ircmux.Join{Connection: c.id, Channel: args[0]})
	return nil
}

func commandDoPart(app *App, buffer string, args []string) error {
	c, err := app.currentConn(buffer)
	if err != nil {
		return err
	}
	channel := app.bufferTarget(buffer)
	reason := ""
	if len(args) != 0 {
		if isChannel(args[0]) {
			channel = args[0]
			if len(args) == 2 {
				reason = args[1]
			}
		} else {
			reason = strings.Join(args, " ")
		}
	}
	if !isChannel(channel) {
		return fmt.Errorf("cannot part this buffer")
	}
	app.submit(ircmux.Part{Connection: c.id, Channel: channel, Message: reason})
	return nil
}

func commandDoMsg(app *App, buffer string, args []string) error {
	c, err := app.currentConn(buffer)
	if err != nil {
		return err
	}
	app.submit(ircmux.Say{Connection: c.id, Target: args[0], Message: args[1]})
	return nil
}

func commandDoMe(app *App, buffer string, args []string) error {
	if app.bufferTarget(buffer) == "" {
		buffer = app.lastQuery
	}
	return noCommand(app, buffer, fmt.Sprintf("\x01ACTION %s\x01", args[0]))
}

func commandDoReply(app *App, buffer string, args []string) error {
	if app.lastQuery == "" {
		return fmt.Errorf("no one to reply to")
	}
	return noCommand(app, app.lastQuery, args[0])
}

func commandDoWhois(app *App, buffer string, args []string) error {
	c, err := app.currentConn(buffer)
	if err != nil {
		return err
	}
	app.submit(ircmux.Whois{Connection: c.id, Nick: args[0]})
	return nil
}

func commandDoList(app *App, buffer string, args []string) error {
	c, err := app.currentConn(buffer)
	if err != nil {
		return err
	}
	app.submit(ircmux.List{Connection: c.id})
	return nil
}

func (app *App) currentChannel(buffer string) (*channelView, error) {
	c, err := app.currentConn(buffer)
	if err != nil {
		return nil, err
	}
	ch, ok := c.channels[strings.ToLower(app.bufferTarget(buffer))]
	if !ok {
		return nil, fmt.Errorf("not a channel")
	}
	return ch, nil
}

func commandDoNames(app *App, buffer string, args []string) error {
	ch, err := app.currentChannel(buffer)
	if err != nil {
		return err
	}
	var sb ui.StyledStringBuilder
	sb.SetStyle(grey)
	sb.WriteString("Names:")
	for _, member := range ch.members {
		sb.WriteByte(' ')
		if member.Mode != "" {
			sb.SetStyle(tcell.StyleDefault.Foreground(tcell.ColorGreen))
			sb.WriteString(member.Mode)
			sb.SetStyle(grey)
		}
		sb.WriteString(member.Nick)
	}
	app.addLineNow(buffer, ui.Line{Head: "--", Body: sb.StyledString()})
	return nil
}

func commandDoTopic(app *App, buffer string, args []string) error {
	ch, err := app.currentChannel(buffer)
	if err != nil {
		return err
	}
	app.addLineNow(buffer, ui.Line{
		Head: "--",
		Body: ui.Styled(fmt.Sprintf("Topic: %s", ch.topic), grey),
	})
	return nil
}

func commandDoBuffer(app *App, buffer string, args []string) error {
	name := args[0]
	if !app.win.JumpBuffer(name) {
		return fmt.Errorf("none of the buffers match %q", name)
	}
	return nil
}

func commandDoQuit(app *App, buffer string, args []string) error {
	if len(args) != 0 {
		app.quitMessage = args[0]
	}
	app.win.Exit()
	return nil
}

// fieldsN splits s around spaces into at most n fields. The last field
// holds the rest of s.
func fieldsN(s string, n int) []string {
	s = strings.TrimSpace(s)
	if s == "" || n == 0 {
		return nil
	}
	if n == 1 {
		return []string{s}
	}
	n--
	var a []string
	i := 0
	fieldStart := 0
	for i < len(s) {
		if s[i] != ' ' {
			i++
			continue
		}
		a = append(a, s[fieldStart:i])
		for i < len(s) && s[i] == ' ' {
			i++
		}
		fieldStart = i
		if n <= len(a) {
			return append(a, s[fieldStart:])
		}
	}
	if fieldStart < len(s) {
		a = append(a, s[fieldStart:])
	}
	return a
}

func parseCommand(s string) (command, args string, isCommand bool) {
	if s[0] != '/' {
		return "", s, false
	}
	if len(s) > 1 && s[1] == '/' {
		// Input starts with two slashes.
		return "", s[1:], false
	}

	i := strings.IndexByte(s, ' ')
	if i < 0 {
		i = len(s)
	}

	isCommand = true
	command = strings.ToUpper(s[1:i])
	args = strings.TrimLeft(s[i:], " ")
	return
}

// findCommand returns the only command whose name starts with prefix.
func findCommand(prefix string) (string, *command, error) {
	if cmd, ok := commands[prefix]; ok {
		return prefix, cmd, nil
	}
	var chosen string
	for name := range commands {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		if chosen != "" {
			return "", nil, fmt.Errorf("ambiguous command %q (could mean %v or %v)", prefix, chosen, name)
		}
		chosen = name
	}
	if chosen == "" {
		return "", nil, fmt.Errorf("command %q doesn't exist", prefix)
	}
	return chosen, commands[chosen], nil
}

func (app *App) handleInput(buffer, content string) error {
	if content == "" {
		return nil
	}

	cmdName, rawArgs, isCommand := parseCommand(content)
	if !isCommand {
		return noCommand(app, buffer, rawArgs)
	}
	if cmdName == "" {
		return fmt.Errorf("lone slash at the beginning")
	}

	cmdName, cmd, err := findCommand(cmdName)
	if err != nil {
		return err
	}

	var args []string
	if rawArgs != "" && cmd.MaxArgs != 0 {
		args = fieldsN(rawArgs, cmd.MaxArgs)
	}

	if len(args) < cmd.MinArgs {
		return fmt.Errorf("usage: %s %s", cmdName, cmd.Usage)
	}
	if buffer == Home && !cmd.AllowHome {
		return fmt.Errorf("command %q cannot be executed from home", cmdName)
	}

	return cmd.Handle(app, buffer, args)
}
