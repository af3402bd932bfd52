package irc

// EventKind identifies the kind of an Event. The zero value is invalid.
type EventKind int

const (
	KindRegistered EventKind = iota + 1
	KindMotd
	KindNames
	KindTopic
	KindJoin
	KindPart
	KindQuit
	KindKick
	KindKill
	KindMessage
	KindSelfMessage
	KindNotice
	KindNick
	KindInvite
	KindModeAdded
	KindModeRemoved
	KindWhois
	KindError
	KindAction
)

// Kinds lists every event kind a Client may emit.
var Kinds = []EventKind{
	KindRegistered, KindMotd, KindNames, KindTopic, KindJoin, KindPart,
	KindQuit, KindKick, KindKill, KindMessage, KindSelfMessage, KindNotice,
	KindNick, KindInvite, KindModeAdded, KindModeRemoved, KindWhois,
	KindError, KindAction,
}

var kindNames = map[EventKind]string{
	KindRegistered:  "registered",
	KindMotd:        "motd",
	KindNames:       "names",
	KindTopic:       "topic",
	KindJoin:        "join",
	KindPart:        "part",
	KindQuit:        "quit",
	KindKick:        "kick",
	KindKill:        "kill",
	KindMessage:     "message",
	KindSelfMessage: "selfMessage",
	KindNotice:      "notice",
	KindNick:        "nick",
	KindInvite:      "invite",
	KindModeAdded:   "+mode",
	KindModeRemoved: "-mode",
	KindWhois:       "whois",
	KindError:       "error",
	KindAction:      "action",
}

func (k EventKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is a protocol event produced by a Session.
type Event interface {
	Kind() EventKind
}

type RegisteredEvent struct {
	Nick   string
	Server string
}

type MotdEvent struct {
	Text string
}

// NamesEvent is the member list of a channel, sent once the server has
// finished listing it.
type NamesEvent struct {
	Channel string
	Members []Member
}

type TopicEvent struct {
	Channel string
	Topic   string
	Nick    string
}

type JoinEvent struct {
	Channel string
	Nick    string
}

type PartEvent struct {
	Channel string
	Nick    string
	Reason  string
}

type QuitEvent struct {
	Nick     string
	Reason   string
	Channels []string
}

type KickEvent struct {
	Channel string
	Nick    string
	By      string
	Reason  string
}

type KillEvent struct {
	Nick     string
	Reason   string
	Channels []string
}

type MessageEvent struct {
	Nick   string
	Target string
	Text   string
}

// SelfMessageEvent is emitted for every line sent by Client.Say.
type SelfMessageEvent struct {
	Target string
	Text   string
}

type NoticeEvent struct {
	Nick   string // empty for server notices.
	Target string
	Text   string
}

type NickEvent struct {
	FormerNick string
	Nick       string
	Channels   []string
}

type InviteEvent struct {
	Channel string
	From    string
}

// ModeEvent is a single channel mode change. A MODE message carrying several
// changes results in several events.
type ModeEvent struct {
	Add      bool
	Channel  string
	By       string
	Mode     string
	Argument string
}

// WhoisEvent is the aggregated result of a WHOIS query.
type WhoisEvent struct {
	Nick       string
	User       string
	Host       string
	RealName   string
	Server     string
	ServerInfo string
	Idle       string
	SignOn     string
	Account    string
	Operator   bool
	Channels   []string
}

// ErrorEvent is a protocol-level error reported by the server, or a
// connection failure (Command "netError").
type ErrorEvent struct {
	Prefix      string
	Server      string
	Command     string
	RawCommand  string
	CommandType string
	Args        []string
}

type ActionEvent struct {
	From   string
	Target string
	Text   string
}

func (RegisteredEvent) Kind() EventKind  { return KindRegistered }
func (MotdEvent) Kind() EventKind        { return KindMotd }
func (NamesEvent) Kind() EventKind       { return KindNames }
func (TopicEvent) Kind() EventKind       { return KindTopic }
func (JoinEvent) Kind() EventKind        { return KindJoin }
func (PartEvent) Kind() EventKind        { return KindPart }
func (QuitEvent) Kind() EventKind        { return KindQuit }
func (KickEvent) Kind() EventKind        { return KindKick }
func (KillEvent) Kind() EventKind        { return KindKill }
func (MessageEvent) Kind() EventKind     { return KindMessage }
func (SelfMessageEvent) Kind() EventKind { return KindSelfMessage }
func (NoticeEvent) Kind() EventKind      { return KindNotice }
func (NickEvent) Kind() EventKind        { return KindNick }
func (InviteEvent) Kind() EventKind      { return KindInvite }
func (WhoisEvent) Kind() EventKind       { return KindWhois }
func (ErrorEvent) Kind() EventKind       { return KindError }
func (ActionEvent) Kind() EventKind      { return KindAction }

func (ev ModeEvent) Kind() EventKind {
	if ev.Add {
		return KindModeAdded
	}
	return KindModeRemoved
}
