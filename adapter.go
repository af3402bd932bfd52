package ircmux

import (
	"git.sr.ht/~taiite/ircmux/irc"
)

// normalizer turns a protocol event into an outward message. It never
// fails: fields it cannot read are left to their defaults.
type normalizer func(id ConnID, ev irc.Event) Message

// normalizers holds one entry per irc.EventKind.
var normalizers = map[irc.EventKind]normalizer{
	irc.KindRegistered: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.RegisteredEvent)
		return RegisteredMessage{ConnectionID: id, Nick: e.Nick, Server: e.Server}
	},
	irc.KindMotd: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.MotdEvent)
		return MotdMessage{ConnectionID: id, Motd: e.Text}
	},
	irc.KindNames: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.NamesEvent)
		nicks := make([]Member, 0, len(e.Members))
		for _, m := range e.Members {
			nicks = append(nicks, Member{Nick: m.Nick, Mode: m.Mode})
		}
		return NamesMessage{ConnectionID: id, Channel: e.Channel, Nicks: nicks}
	},
	irc.KindTopic: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.TopicEvent)
		return TopicMessage{ConnectionID: id, Channel: e.Channel, Topic: e.Topic, Nick: e.Nick}
	},
	irc.KindJoin: func(id ConnID, ev irc.Event) Message {
		return JoinMessage{ConnectionID: id}
	},
	irc.KindPart: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.PartEvent)
		return PartMessage{ConnectionID: id, Channel: e.Channel, Nick: e.Nick, Reason: e.Reason}
	},
	irc.KindQuit: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.QuitEvent)
		return QuitMessage{ConnectionID: id, Nick: e.Nick, Reason: e.Reason, Channels: copyStrings(e.Channels)}
	},
	irc.KindKick: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.KickEvent)
		return KickMessage{ConnectionID: id, Channel: e.Channel, Nick: e.Nick, By: e.By, Reason: e.Reason}
	},
	irc.KindKill: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.KillEvent)
		return KillMessage{ConnectionID: id, Nick: e.Nick, Reason: e.Reason, Channels: copyStrings(e.Channels)}
	},
	irc.KindMessage: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.MessageEvent)
		return ChatMessage{ConnectionID: id, Nick: e.Nick, To: e.Target, Text: e.Text}
	},
	irc.KindSelfMessage: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.SelfMessageEvent)
		return SelfMessage{ConnectionID: id, To: e.Target, Text: e.Text}
	},
	irc.KindNotice: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.NoticeEvent)
		return NoticeMessage{ConnectionID: id, Nick: e.Nick, To: e.Target, Text: e.Text}
	},
	irc.KindNick: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.NickEvent)
		return NickMessage{ConnectionID: id, OldNick: e.FormerNick, NewNick: e.Nick, Channels: copyStrings(e.Channels)}
	},
	irc.KindInvite: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.InviteEvent)
		return InviteMessage{ConnectionID: id, Channel: e.Channel, From: e.From}
	},
	irc.KindModeAdded: func(id ConnID, ev irc.Event) Message {
		return modeMessage(id, ev, true)
	},
	irc.KindModeRemoved: func(id ConnID, ev irc.Event) Message {
		return modeMessage(id, ev, false)
	},
	irc.KindWhois: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.WhoisEvent)
		return WhoisMessage{
			ConnectionID: id,
			Nick:         e.Nick,
			User:         e.User,
			Host:         e.Host,
			RealName:     e.RealName,
			Server:       e.Server,
			ServerInfo:   e.ServerInfo,
			Idle:         e.Idle,
			Channels:     copyStrings(e.Channels),
		}
	},
	irc.KindError: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.ErrorEvent)
		return ErrorMessage{
			ConnectionID: id,
			Prefix:       e.Prefix,
			Server:       e.Server,
			Command:      e.Command,
			RawCommand:   e.RawCommand,
			CommandType:  e.CommandType,
			Args:         copyStrings(e.Args),
		}
	},
	irc.KindAction: func(id ConnID, ev irc.Event) Message {
		e, _ := ev.(irc.ActionEvent)
		return ActionMessage{ConnectionID: id, From: e.From, To: e.Target, Text: e.Text}
	},
}

func modeMessage(id ConnID, ev irc.Event, added bool) Message {
	e, _ := ev.(irc.ModeEvent)
	return ModeMessage{
		ConnectionID: id,
		Added:        added,
		Channel:      e.Channel,
		By:           e.By,
		Mode:         e.Mode,
		Argument:     e.Argument,
	}
}

// copyStrings copies s, turning nil into an empty slice.
func copyStrings(s []string) []string {
	c := make([]string, len(s))
	copy(c, s)
	return c
}

// BindAdapter forwards every event of src to emit, normalized and tagged
// with id.
func BindAdapter(id ConnID, src EventSource, emit func(Message)) {
	for _, kind := range irc.Kinds {
		normalize := normalizers[kind]
		src.On(kind, func(ev irc.Event) {
			emit(normalize(id, ev))
		})
	}
}
