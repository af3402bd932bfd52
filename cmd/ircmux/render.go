package main

import (
	"fmt"
	"sort"
	"strings"

	"git.sr.ht/~taiite/ircmux"
	"git.sr.ht/~taiite/ircmux/ui"
	"github.com/gdamore/tcell/v2"
)

var grey = tcell.StyleDefault.Foreground(tcell.ColorGrey)

func (app *App) handleMessage(m ircmux.Message) {
	if key, ok := m.(ircmux.KeyMessage); ok {
		app.handleKey(key)
		return
	}

	id, _ := ircmux.MessageConnection(m)
	if connecting, ok := m.(ircmux.ConnectingMessage); ok {
		app.conns[id] = &connView{
			id:       id,
			server:   connecting.Server,
			nick:     connecting.Nick,
			channels: map[string]*channelView{},
		}
		app.lastConn = id
	}
	c, ok := app.conns[id]
	if !ok {
		app.log.Warn().Int64("conn", int64(id)).Str("event", m.Kind()).Msg("message for unknown connection")
		return
	}

	switch m := m.(type) {
	case ircmux.ConnectingMessage:
		app.status(c.buffer(), "Connecting to %s as %s...", m.Server, m.Nick)
	case ircmux.RegisteredMessage:
		c.nick = m.Nick
		app.status(c.buffer(), "Connected to the server as %s", m.Nick)
	case ircmux.MotdMessage:
		for _, line := range strings.Split(strings.TrimRight(m.Motd, "\n"), "\n") {
			app.addLineNow(c.buffer(), ui.Line{
				Head: "MOTD",
				Body: ui.IRCString(line),
			})
		}
	case ircmux.JoinMessage:
		// Channel buffers open with their member list.
	case ircmux.NamesMessage:
		ch := app.channel(c, m.Channel)
		ch.members = append(ch.members[:0], m.Nicks...)
		sort.Slice(ch.members, func(i, j int) bool {
			return strings.ToLower(ch.members[i].Nick) < strings.ToLower(ch.members[j].Nick)
		})
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
		app.addLineNow(bufferName(id, ch.name), ui.Line{Head: "--", Body: sb.StyledString()})
	case ircmux.TopicMessage:
		ch := app.channel(c, m.Channel)
		ch.topic = m.Topic
		text := fmt.Sprintf("Topic: %s", m.Topic)
		if m.Nick != "" {
			text = fmt.Sprintf("%s changed the topic to: %s", m.Nick, m.Topic)
		}
		app.addLineNow(bufferName(id, ch.name), ui.Line{
			Head: "--",
			Body: ui.IRCString(text),
		})
	case ircmux.PartMessage:
		app.leave(c, m.Channel, m.Nick, fmt.Sprintf("\x0314-%s\x03 %s", m.Nick, m.Reason))
	case ircmux.KickMessage:
		app.leave(c, m.Channel, m.Nick, fmt.Sprintf("\x0314-%s\x03 kicked by %s: %s", m.Nick, m.By, m.Reason))
	case ircmux.QuitMessage:
		app.quit(c, m.Nick, m.Channels, fmt.Sprintf("\x0314-%s\x03 quit: %s", m.Nick, m.Reason))
	case ircmux.KillMessage:
		app.quit(c, m.Nick, m.Channels, fmt.Sprintf("\x0314-%s\x03 killed: %s", m.Nick, m.Reason))
	case ircmux.ChatMessage:
		app.chat(c, m.Nick, m.To, m.Text, false)
	case ircmux.ActionMessage:
		app.chat(c, m.From, m.To, m.Text, true)
	case ircmux.SelfMessage:
		buffer := bufferName(id, m.To)
		app.addLineNow(buffer, ui.Line{
			Head: c.nick,
			Body: ui.IRCString(m.Text),
		})
	case ircmux.NoticeMessage:
		buffer := c.buffer()
		if ch, ok := c.channels[strings.ToLower(m.To)]; ok {
			buffer = bufferName(id, ch.name)
		}
		head := m.Nick
		if head == "" {
			head = c.server
		}
		app.addLineNow(buffer, ui.Line{
			Head: "(" + head + ")",
			Body: ui.IRCString(m.Text),
		})
	case ircmux.NickMessage:
		if strings.EqualFold(m.OldNick, c.nick) {
			c.nick = m.NewNick
			app.status(c.buffer(), "You are now known as %s", m.NewNick)
		}
		for _, name := range m.Channels {
			ch := app.channel(c, name)
			for i := range ch.members {
				if strings.EqualFold(ch.members[i].Nick, m.OldNick) {
					ch.members[i].Nick = m.NewNick
				}
			}
			app.addLineNow(bufferName(id, ch.name), ui.Line{
				Head:      "--",
				Body:      ui.IRCString(fmt.Sprintf("\x0314%s→%s\x03", m.OldNick, m.NewNick)),
				Mergeable: true,
			})
		}
	case ircmux.InviteMessage:
		app.addLineNow(c.buffer(), ui.Line{
			Head:      "--",
			Body:      ui.PlainString(fmt.Sprintf("%s invites you to %s", m.From, m.Channel)),
			Highlight: true,
		})
	case ircmux.ModeMessage:
		sign := "-"
		if m.Added {
			sign = "+"
		}
		text := fmt.Sprintf("%s sets mode %s%s %s", m.By, sign, m.Mode, m.Argument)
		app.addLineNow(bufferName(id, m.Channel), ui.Line{
			Head: "--",
			Body: ui.Styled(strings.TrimSpace(text), grey),
		})
	case ircmux.WhoisMessage:
		buffer := app.win.CurrentBuffer()
		lines := []string{
			fmt.Sprintf("\x02%s\x02 is %s@%s (%s)", m.Nick, m.User, m.Host, m.RealName),
			fmt.Sprintf("\x02%s\x02 is on %s (%s)", m.Nick, m.Server, m.ServerInfo),
		}
		if m.Idle != "" {
			lines = append(lines, fmt.Sprintf("\x02%s\x02 has been idle for %ss", m.Nick, m.Idle))
		}
		if len(m.Channels) != 0 {
			lines = append(lines, fmt.Sprintf("\x02%s\x02 is on %s", m.Nick, strings.Join(m.Channels, " ")))
		}
		for _, line := range lines {
			app.addLineNow(buffer, ui.Line{Head: "WHOIS", Body: ui.IRCString(line)})
		}
	case ircmux.ErrorMessage:
		text := fmt.Sprintf("%s: %s", m.Command, strings.Join(m.Args, " "))
		app.addLineNow(c.buffer(), ui.Line{
			Head: "!!",
			Body: ui.Styled(text, tcell.StyleDefault.Foreground(tcell.ColorRed)),
		})
	case ircmux.DisconnectedMessage:
		app.status(c.buffer(), "Disconnected")
		delete(app.conns, id)
		if app.lastConn == id {
			app.lastConn = -1
		}
	}
}

func (app *App) status(buffer, format string, args ...interface{}) {
	app.addLineNow(buffer, ui.Line{
		Head: "--",
		Body: ui.Styled(fmt.Sprintf(format, args...), grey),
	})
}

// channel returns the view of name on c, creating it when needed.
func (app *App) channel(c *connView, name string) *channelView {
	key := strings.ToLower(name)
	ch, ok := c.channels[key]
	if !ok {
		ch = &channelView{name: name}
		c.channels[key] = ch
		app.win.AddBuffer(bufferName(c.id, name))
	}
	return ch
}

func (app *App) leave(c *connView, channel, nick, text string) {
	key := strings.ToLower(channel)
	ch, ok := c.channels[key]
	if !ok {
		return
	}
	if strings.EqualFold(nick, c.nick) {
		delete(c.channels, key)
		app.win.RemoveBuffer(bufferName(c.id, ch.name))
		return
	}
	ch.removeMember(nick)
	app.addLineNow(bufferName(c.id, ch.name), ui.Line{
		Head:      "--",
		Body:      ui.IRCString(text),
		Mergeable: true,
	})
}

func (app *App) quit(c *connView, nick string, channels []string, text string) {
	for _, name := range channels {
		ch, ok := c.channels[strings.ToLower(name)]
		if !ok {
			continue
		}
		ch.removeMember(nick)
		app.addLineNow(bufferName(c.id, ch.name), ui.Line{
			Head:      "--",
			Body:      ui.IRCString(text),
			Mergeable: true,
		})
	}
}

func (ch *channelView) removeMember(nick string) {
	for i := range ch.members {
		if strings.EqualFold(ch.members[i].Nick, nick) {
			ch.members = append(ch.members[:i], ch.members[i+1:]...)
			return
		}
	}
}

func (app *App) chat(c *connView, from, to, text string, action bool) {
	target := to
	if strings.EqualFold(to, c.nick) {
		target = from
		app.lastQuery = bufferName(c.id, from)
	}
	line := ui.Line{
		Head:      from,
		Body:      ui.IRCString(text),
		Highlight: app.isHighlight(c, text),
	}
	if action {
		line.Head = "*"
		line.Body = ui.IRCString(fmt.Sprintf("\x02%s\x02 %s", from, text))
	}
	app.addLineNow(bufferName(c.id, target), line)
}
