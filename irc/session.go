package irc

import (
	"errors"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ergochat/irc-go/ircmsg"
)

var (
	errNotEnoughParams = errors.New("not enough params")
	errNoPrefix        = errors.New("missing prefix")
)

// minParams is the number of parameters a command needs to be handled.
var minParams = map[string]int{
	rplWelcome:       1,
	rplIsupport:      2,
	rplMotdstart:     2,
	rplMotd:          2,
	rplEndofmotd:     2,
	rplNamreply:      4,
	rplEndofnames:    2,
	rplTopic:         3,
	rplTopicwhotime:  3,
	rplWhoisuser:     6,
	rplWhoisserver:   4,
	rplWhoisoperator: 2,
	rplWhoisidle:     3,
	rplWhoischannels: 3,
	rplWhoisaccount:  3,
	rplEndofwhois:    2,
	errNosuchnick:    2,
	"JOIN":           1,
	"PART":           1,
	"KICK":           2,
	"KILL":           1,
	"NICK":           1,
	"TOPIC":          2,
	"PRIVMSG":        2,
	"NOTICE":         2,
	"INVITE":         2,
	"MODE":           2,
}

// needsPrefix lists the commands that are meaningless without a source.
var needsPrefix = map[string]struct{}{
	"JOIN":  {},
	"PART":  {},
	"QUIT":  {},
	"NICK":  {},
	"KICK":  {},
	"TOPIC": {},
}

func validate(msg *ircmsg.Message) error {
	if n, ok := minParams[msg.Command]; ok && len(msg.Params) < n {
		return errNotEnoughParams
	}
	if _, ok := needsPrefix[msg.Command]; ok && msg.Source == "" {
		return errNoPrefix
	}
	return nil
}

// Channel is a joined channel.
type Channel struct {
	Name    string             // the name of the channel.
	Topic   string             // the topic of the channel, or "" if absent.
	Members map[string]*Member // members keyed by casemapped nickname.
}

// SessionParams defines the identity of a session.
type SessionParams struct {
	Server   string
	Nickname string
	Username string
}

// Session tracks the state of one IRC connection and turns incoming
// messages into Events. It does no I/O and is not safe for concurrent use.
type Session struct {
	server string
	nick   string
	nickCf string
	user   string

	// ISUPPORT features
	casemap       func(string) string
	chantypes     string
	linelen       int
	prefixSymbols string
	prefixModes   string
	chanmodes     [4]string

	motd     strings.Builder
	channels map[string]*Channel    // joined channels.
	names    map[string][]Member    // NAMES replies being received.
	whois    map[string]*WhoisEvent // WHOIS replies being received.
	whoisEnd map[string]struct{}    // WHOIS answered early by ERR_NOSUCHNICK.
}

func NewSession(params SessionParams) *Session {
	return &Session{
		server:        params.Server,
		nick:          params.Nickname,
		nickCf:        CasemapRFC1459(params.Nickname),
		user:          params.Username,
		casemap:       CasemapRFC1459,
		chantypes:     "#&",
		linelen:       512,
		prefixSymbols: "@+",
		prefixModes:   "ov",
		chanmodes:     [4]string{"beI", "k", "l", "imnpst"},
		channels:      map[string]*Channel{},
		names:         map[string][]Member{},
		whois:         map[string]*WhoisEvent{},
		whoisEnd:      map[string]struct{}{},
	}
}

func (s *Session) Server() string {
	return s.server
}

func (s *Session) Nick() string {
	return s.nick
}

func (s *Session) IsMe(nick string) bool {
	return s.nickCf == s.casemap(nick)
}

func (s *Session) IsChannel(name string) bool {
	return strings.IndexAny(name, s.chantypes) == 0
}

func (s *Session) Casemap(name string) string {
	return s.casemap(name)
}

// Channels returns the names of the joined channels, sorted.
func (s *Session) Channels() []string {
	channels := make([]string, 0, len(s.channels))
	for _, c := range s.channels {
		channels = append(channels, c.Name)
	}
	sort.Strings(channels)
	return channels
}

// Names returns the members of the given channel sorted by nickname, or nil
// if the channel is not joined.
func (s *Session) Names(channel string) []Member {
	c, ok := s.channels[s.casemap(channel)]
	if !ok {
		return nil
	}
	names := make([]Member, 0, len(c.Members))
	for _, m := range c.Members {
		names = append(names, *m)
	}
	sort.Slice(names, func(i, j int) bool {
		return s.casemap(names[i].Nick) < s.casemap(names[j].Nick)
	})
	return names
}

func (s *Session) Topic(channel string) string {
	if c, ok := s.channels[s.casemap(channel)]; ok {
		return c.Topic
	}
	return ""
}

// MessageBudget is the number of bytes of text that fit in one PRIVMSG to
// target. It is never less than the size of one rune.
func (s *Session) MessageBudget(target string) int {
	budget := s.linelen -
		len(":!@ PRIVMSG  :\r\n") -
		len(s.nick) -
		len(s.user) -
		len("255.255.255.255") -
		len(target)
	return max(budget, utf8.UTFMax)
}

// Reset forgets the channels and the pending replies of a connection that
// was lost. Registration and ISUPPORT values are learned again on the next
// connection.
func (s *Session) Reset() {
	s.motd.Reset()
	s.channels = map[string]*Channel{}
	s.names = map[string][]Member{}
	s.whois = map[string]*WhoisEvent{}
	s.whoisEnd = map[string]struct{}{}
}

// ExpectWhois records that a WHOIS query for nick has been sent.
func (s *Session) ExpectWhois(nick string) {
	nickCf := s.casemap(nick)
	delete(s.whoisEnd, nickCf)
	s.whois[nickCf] = &WhoisEvent{Nick: nick}
}

// HandleMessage updates the session state with msg and returns the events
// it produced, in order. Malformed messages produce no event.
func (s *Session) HandleMessage(msg ircmsg.Message) []Event {
	if err := validate(&msg); err != nil {
		return nil
	}

	switch msg.Command {
	case rplWelcome:
		s.setNick(msg.Params[0])
		return []Event{RegisteredEvent{Nick: s.nick, Server: s.server}}
	case rplIsupport:
		s.updateFeatures(msg.Params[1 : len(msg.Params)-1])
	case rplMotdstart:
		s.motd.Reset()
		s.motd.WriteString(msg.Params[1])
		s.motd.WriteByte('\n')
	case rplMotd:
		s.motd.WriteString(msg.Params[1])
		s.motd.WriteByte('\n')
	case rplEndofmotd:
		s.motd.WriteString(msg.Params[1])
		text := s.motd.String()
		s.motd.Reset()
		return []Event{MotdEvent{Text: text}}
	case rplNamreply:
		channelCf := s.casemap(msg.Params[2])
		for _, m := range ParseNameReply(msg.Params[3], s.prefixSymbols) {
			s.names[channelCf] = append(s.names[channelCf], m)
			if c, ok := s.channels[channelCf]; ok {
				m := m
				c.Members[s.casemap(m.Nick)] = &m
			}
		}
	case rplEndofnames:
		channel := msg.Params[1]
		channelCf := s.casemap(channel)
		if c, ok := s.channels[channelCf]; ok {
			channel = c.Name
		}
		members := s.names[channelCf]
		delete(s.names, channelCf)
		return []Event{NamesEvent{Channel: channel, Members: members}}
	case rplTopic:
		if c, ok := s.channels[s.casemap(msg.Params[1])]; ok {
			c.Topic = msg.Params[2]
		}
	case rplTopicwhotime:
		channel := msg.Params[1]
		topic := ""
		if c, ok := s.channels[s.casemap(channel)]; ok {
			channel = c.Name
			topic = c.Topic
		}
		nick, _, _ := FullMask(msg.Params[2])
		return []Event{TopicEvent{Channel: channel, Topic: topic, Nick: nick}}
	case "TOPIC":
		channel := msg.Params[0]
		if c, ok := s.channels[s.casemap(channel)]; ok {
			c.Topic = msg.Params[1]
			channel = c.Name
		}
		return []Event{TopicEvent{Channel: channel, Topic: msg.Params[1], Nick: SourceNick(msg.Source)}}
	case "JOIN":
		nick, user, host := FullMask(msg.Source)
		channel := msg.Params[0]
		channelCf := s.casemap(channel)
		if s.IsMe(nick) {
			s.channels[channelCf] = &Channel{
				Name:    channel,
				Members: map[string]*Member{},
			}
		}
		if c, ok := s.channels[channelCf]; ok {
			c.Members[s.casemap(nick)] = &Member{Nick: nick, User: user, Host: host}
			channel = c.Name
		}
		return []Event{JoinEvent{Channel: channel, Nick: nick}}
	case "PART":
		nick := SourceNick(msg.Source)
		ev := PartEvent{Channel: msg.Params[0], Nick: nick}
		if 1 < len(msg.Params) {
			ev.Reason = msg.Params[1]
		}
		channelCf := s.casemap(msg.Params[0])
		if c, ok := s.channels[channelCf]; ok {
			ev.Channel = c.Name
			if s.IsMe(nick) {
				delete(s.channels, channelCf)
			} else {
				delete(c.Members, s.casemap(nick))
			}
		}
		return []Event{ev}
	case "KICK":
		ev := KickEvent{
			Channel: msg.Params[0],
			Nick:    msg.Params[1],
			By:      SourceNick(msg.Source),
		}
		if 2 < len(msg.Params) {
			ev.Reason = msg.Params[2]
		}
		channelCf := s.casemap(msg.Params[0])
		if c, ok := s.channels[channelCf]; ok {
			ev.Channel = c.Name
			if s.IsMe(ev.Nick) {
				delete(s.channels, channelCf)
			} else {
				delete(c.Members, s.casemap(ev.Nick))
			}
		}
		return []Event{ev}
	case "QUIT":
		nick := SourceNick(msg.Source)
		if s.IsMe(nick) {
			return nil
		}
		ev := QuitEvent{Nick: nick, Channels: s.forget(nick)}
		if 0 < len(msg.Params) {
			ev.Reason = msg.Params[0]
		}
		return []Event{ev}
	case "KILL":
		nick := msg.Params[0]
		ev := KillEvent{Nick: nick, Channels: s.forget(nick)}
		if 1 < len(msg.Params) {
			ev.Reason = msg.Params[1]
		}
		if s.IsMe(nick) {
			s.channels = map[string]*Channel{}
		}
		return []Event{ev}
	case "NICK":
		formerNick := SourceNick(msg.Source)
		nick := msg.Params[0]
		formerCf := s.casemap(formerNick)
		var channels []string
		for _, c := range s.channels {
			if m, ok := c.Members[formerCf]; ok {
				delete(c.Members, formerCf)
				m.Nick = nick
				c.Members[s.casemap(nick)] = m
				channels = append(channels, c.Name)
			}
		}
		sort.Strings(channels)
		if s.IsMe(formerNick) {
			s.setNick(nick)
		}
		return []Event{NickEvent{FormerNick: formerNick, Nick: nick, Channels: channels}}
	case "PRIVMSG":
		nick := SourceNick(msg.Source)
		target, text := msg.Params[0], msg.Params[1]
		if cmd, rest, ok := ParseCTCP(text); ok {
			if cmd == "ACTION" {
				return []Event{ActionEvent{From: nick, Target: target, Text: rest}}
			}
			return nil
		}
		return []Event{MessageEvent{Nick: nick, Target: target, Text: text}}
	case "NOTICE":
		if _, _, ok := ParseCTCP(msg.Params[1]); ok {
			return nil
		}
		return []Event{NoticeEvent{
			Nick:   SourceNick(msg.Source),
			Target: msg.Params[0],
			Text:   msg.Params[1],
		}}
	case "INVITE":
		return []Event{InviteEvent{Channel: msg.Params[1], From: SourceNick(msg.Source)}}
	case "MODE":
		if !s.IsChannel(msg.Params[0]) {
			return nil
		}
		return s.handleChannelMode(SourceNick(msg.Source), msg.Params[0], msg.Params[1], msg.Params[2:])
	case rplWhoisuser:
		w := s.pendingWhois(msg.Params[1])
		w.Nick = msg.Params[1]
		w.User = msg.Params[2]
		w.Host = msg.Params[3]
		w.RealName = msg.Params[5]
	case rplWhoisserver:
		w := s.pendingWhois(msg.Params[1])
		w.Server = msg.Params[2]
		w.ServerInfo = msg.Params[3]
	case rplWhoisoperator:
		s.pendingWhois(msg.Params[1]).Operator = true
	case rplWhoisidle:
		w := s.pendingWhois(msg.Params[1])
		w.Idle = msg.Params[2]
		if 4 < len(msg.Params) {
			w.SignOn = msg.Params[3]
		}
	case rplWhoischannels:
		w := s.pendingWhois(msg.Params[1])
		w.Channels = append(w.Channels, strings.Fields(msg.Params[2])...)
	case rplWhoisaccount:
		s.pendingWhois(msg.Params[1]).Account = msg.Params[2]
	case rplEndofwhois:
		nickCf := s.casemap(msg.Params[1])
		if _, ok := s.whoisEnd[nickCf]; ok {
			delete(s.whoisEnd, nickCf)
			return nil
		}
		w := s.pendingWhois(msg.Params[1])
		delete(s.whois, nickCf)
		return []Event{*w}
	case "ERROR":
		return []Event{s.newErrorEvent(msg)}
	default:
		if ReplyType(msg.Command) == ReplyError {
			var evts []Event
			if msg.Command == errNosuchnick {
				nickCf := s.casemap(msg.Params[1])
				if w, ok := s.whois[nickCf]; ok {
					delete(s.whois, nickCf)
					s.whoisEnd[nickCf] = struct{}{}
					evts = append(evts, *w)
				}
			}
			return append(evts, s.newErrorEvent(msg))
		}
	}
	return nil
}

func (s *Session) setNick(nick string) {
	s.nick = nick
	s.nickCf = s.casemap(nick)
}

func (s *Session) pendingWhois(nick string) *WhoisEvent {
	nickCf := s.casemap(nick)
	w, ok := s.whois[nickCf]
	if !ok {
		w = &WhoisEvent{Nick: nick}
		s.whois[nickCf] = w
	}
	return w
}

// forget removes nick from every channel and returns the names of these
// channels, sorted.
func (s *Session) forget(nick string) (channels []string) {
	nickCf := s.casemap(nick)
	for _, c := range s.channels {
		if _, ok := c.Members[nickCf]; ok {
			delete(c.Members, nickCf)
			channels = append(channels, c.Name)
		}
	}
	sort.Strings(channels)
	return
}

func (s *Session) newErrorEvent(msg ircmsg.Message) ErrorEvent {
	ev := ErrorEvent{
		Prefix:      msg.Source,
		Command:     ReplyName(msg.Command),
		RawCommand:  msg.Command,
		CommandType: ReplyType(msg.Command),
		Args:        append([]string(nil), msg.Params...),
	}
	if IsServerSource(msg.Source) {
		ev.Server = msg.Source
	}
	return ev
}

func (s *Session) handleChannelMode(by, channel, modes string, args []string) (evts []Event) {
	c, known := s.channels[s.casemap(channel)]
	if known {
		channel = c.Name
	}

	add := true
	for _, r := range modes {
		switch r {
		case '+':
			add = true
			continue
		case '-':
			add = false
			continue
		}

		ev := ModeEvent{
			Add:     add,
			Channel: channel,
			By:      by,
			Mode:    string(r),
		}
		if s.takesArgument(r, add) && 0 < len(args) {
			ev.Argument = args[0]
			args = args[1:]
		}
		if i := strings.IndexRune(s.prefixModes, r); 0 <= i && known && i < len(s.prefixSymbols) {
			if m, ok := c.Members[s.casemap(ev.Argument)]; ok {
				m.Mode = s.updatePrefix(m.Mode, s.prefixSymbols[i], add)
			}
		}
		evts = append(evts, ev)
	}
	return
}

func (s *Session) takesArgument(mode rune, add bool) bool {
	switch {
	case strings.ContainsRune(s.prefixModes, mode):
		return true
	case strings.ContainsRune(s.chanmodes[0], mode):
		return true
	case strings.ContainsRune(s.chanmodes[1], mode):
		return true
	case strings.ContainsRune(s.chanmodes[2], mode):
		return add
	}
	return false
}

// updatePrefix adds or removes symbol from a membership prefix string,
// keeping the order given by PREFIX.
func (s *Session) updatePrefix(mode string, symbol byte, add bool) string {
	var sb strings.Builder
	for i := 0; i < len(s.prefixSymbols); i++ {
		sym := s.prefixSymbols[i]
		has := strings.IndexByte(mode, sym) >= 0
		if sym == symbol {
			has = add
		}
		if has {
			sb.WriteByte(sym)
		}
	}
	return sb.String()
}

func (s *Session) updateFeatures(features []string) {
	for _, f := range features {
		if f == "" || f == "-" || f == "=" || f == "-=" {
			continue
		}

		if strings.HasPrefix(f, "-") {
			// TODO support ISUPPORT negations
			continue
		}

		var value string
		kv := strings.SplitN(f, "=", 2)
		key := strings.ToUpper(kv[0])
		if len(kv) > 1 {
			value = kv[1]
		}

	Switch:
		switch key {
		case "CASEMAPPING":
			switch value {
			case "ascii":
				s.casemap = CasemapASCII
			default:
				s.casemap = CasemapRFC1459
			}
			s.nickCf = s.casemap(s.nick)
		case "CHANTYPES":
			s.chantypes = value
		case "CHANMODES":
			parts := strings.SplitN(value, ",", 4)
			for i := range s.chanmodes {
				s.chanmodes[i] = ""
				if i < len(parts) {
					s.chanmodes[i] = parts[i]
				}
			}
		case "LINELEN":
			linelen, err := strconv.Atoi(value)
			if err == nil && linelen != 0 {
				s.linelen = linelen
			}
		case "PREFIX":
			if value == "" {
				s.prefixModes = ""
				s.prefixSymbols = ""
			}
			if len(value)%2 != 0 {
				break Switch
			}
			for i := 0; i < len(value); i++ {
				if unicode.MaxASCII < value[i] {
					break Switch
				}
			}
			numPrefixes := len(value)/2 - 1
			s.prefixModes = value[1 : numPrefixes+1]
			s.prefixSymbols = value[numPrefixes+2:]
		}
	}
}
